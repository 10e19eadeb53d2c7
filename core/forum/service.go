package forum

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

// Collection holds one document per discussion post, keyed by post id.
const Collection = "communityPosts"

var (
	ErrNotFound = errors.New("post not found")
	ErrNotOwner = errors.New("not the post owner")
)

type (
	Repository interface {
		SavePost(ctx context.Context, p Post) error
		GetPost(ctx context.Context, id string) (Post, error)
		// QueryAllPosts returns posts ordered by creation time, newest first.
		QueryAllPosts(ctx context.Context) ([]Post, error)
		DeletePost(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ident core.Identity, np NewPost) (Post, error) {
	if ident.Anonymous() {
		return Post{}, ErrNotOwner
	}
	now := time.Now().UTC()
	p := Post{
		ID:          uuid.NewString(),
		Title:       np.Title,
		Content:     np.Content,
		Author:      ident.DisplayName(),
		AuthorEmail: ident.Email,
		Replies:     []Reply{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.repo.SavePost(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (svc *Service) List(ctx context.Context) ([]Post, error) {
	return svc.repo.QueryAllPosts(ctx)
}

func (svc *Service) Get(ctx context.Context, id string) (Post, error) {
	return svc.repo.GetPost(ctx, id)
}

// AddReply appends a reply to the post. Read-modify-write on the post
// document; last write wins on concurrent replies.
func (svc *Service) AddReply(ctx context.Context, ident core.Identity, postID string, nr NewReply) (Post, error) {
	if ident.Anonymous() {
		return Post{}, ErrNotOwner
	}
	p, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return Post{}, err
	}
	p.Replies = append(p.Replies, Reply{
		ID:          uuid.NewString(),
		Content:     nr.Content,
		Author:      ident.DisplayName(),
		AuthorEmail: ident.Email,
		CreatedAt:   time.Now().UTC(),
	})
	p.UpdatedAt = time.Now().UTC()
	if err = svc.repo.SavePost(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// Delete removes the post. Only the author may delete.
func (svc *Service) Delete(ctx context.Context, ident core.Identity, id string) error {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorEmail != ident.Email {
		return ErrNotOwner
	}
	return svc.repo.DeletePost(ctx, id)
}

type docRepository struct {
	store core.DocStore
}

var _ Repository = (*docRepository)(nil)

func NewRepository(store core.DocStore) Repository {
	return &docRepository{store: store}
}

func (repo *docRepository) SavePost(ctx context.Context, p Post) error {
	doc, err := core.ToDocument(p)
	if err != nil {
		return err
	}
	if err = repo.store.Set(ctx, Collection, p.ID, doc, false); err != nil {
		return core.NewStoreError(err, "saving post")
	}
	return nil
}

func (repo *docRepository) GetPost(ctx context.Context, id string) (Post, error) {
	doc, err := repo.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Post{}, ErrNotFound
		}
		return Post{}, core.NewStoreError(err, "getting post")
	}
	var p Post
	if err = doc.Decode(&p); err != nil {
		return Post{}, errors.Wrap(err, "decoding post")
	}
	p.ID = id
	return p, nil
}

func (repo *docRepository) QueryAllPosts(ctx context.Context) ([]Post, error) {
	docs, err := repo.store.Query(ctx, Collection, core.DocQuery{
		OrderBy: []core.DocOrder{{Field: "createdAt", Desc: true}},
	})
	if err != nil {
		return nil, core.NewStoreError(err, "querying posts")
	}
	posts := make([]Post, 0, len(docs))
	for _, kd := range docs {
		var p Post
		if err = kd.Doc.Decode(&p); err != nil {
			return nil, errors.Wrap(err, "decoding post")
		}
		p.ID = kd.Key
		posts = append(posts, p)
	}
	return posts, nil
}

func (repo *docRepository) DeletePost(ctx context.Context, id string) error {
	if err := repo.store.Delete(ctx, Collection, id); err != nil {
		return core.NewStoreError(err, "deleting post")
	}
	return nil
}
