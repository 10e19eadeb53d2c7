package community

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

// Collection holds one document per shared build, keyed by build id.
const Collection = "builds"

var (
	ErrNotFound = errors.New("build not found")
	// ErrNotOwner is returned when a user tries to modify another user's build.
	// Records are mutated only by the user they belong to.
	ErrNotOwner = errors.New("not the build owner")
)

type (
	Repository interface {
		SaveBuild(ctx context.Context, b Build) error
		GetBuild(ctx context.Context, id string) (Build, error)
		// QueryAllBuilds returns builds ordered by creation time, newest first.
		QueryAllBuilds(ctx context.Context) ([]Build, error)
		DeleteBuild(ctx context.Context, id string) error
	}

	Service struct {
		repo  Repository
		files core.FileStore
	}
)

func NewService(repo Repository, files core.FileStore) *Service {
	return &Service{repo: repo, files: files}
}

func (svc *Service) Create(ctx context.Context, ident core.Identity, form BuildForm, imagePath string) (Build, error) {
	if ident.Anonymous() {
		return Build{}, ErrNotOwner
	}
	now := time.Now().UTC()
	b := Build{
		ID:          uuid.NewString(),
		Title:       form.Title,
		Description: form.Description,
		Author:      ident.DisplayName(),
		AuthorEmail: ident.Email,
		Components:  form.Components(),
		ImagePath:   imagePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.repo.SaveBuild(ctx, b); err != nil {
		return Build{}, err
	}
	svc.resolveImage(&b)
	return b, nil
}

func (svc *Service) List(ctx context.Context) ([]Build, error) {
	builds, err := svc.repo.QueryAllBuilds(ctx)
	if err != nil {
		return nil, err
	}
	for i := range builds {
		svc.resolveImage(&builds[i])
	}
	return builds, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Build, error) {
	b, err := svc.repo.GetBuild(ctx, id)
	if err != nil {
		return Build{}, err
	}
	svc.resolveImage(&b)
	return b, nil
}

// Update replaces the build's form fields. Only the owner may update.
func (svc *Service) Update(ctx context.Context, ident core.Identity, id string, form BuildForm, imagePath string) (Build, error) {
	b, err := svc.repo.GetBuild(ctx, id)
	if err != nil {
		return Build{}, err
	}
	if b.AuthorEmail != ident.Email {
		return Build{}, ErrNotOwner
	}
	b.Title = form.Title
	b.Description = form.Description
	b.Components = form.Components()
	if imagePath != "" {
		b.ImagePath = imagePath
	}
	b.UpdatedAt = time.Now().UTC()
	if err = svc.repo.SaveBuild(ctx, b); err != nil {
		return Build{}, err
	}
	svc.resolveImage(&b)
	return b, nil
}

// Delete removes the build. Only the owner may delete.
func (svc *Service) Delete(ctx context.Context, ident core.Identity, id string) error {
	b, err := svc.repo.GetBuild(ctx, id)
	if err != nil {
		return err
	}
	if b.AuthorEmail != ident.Email {
		return ErrNotOwner
	}
	return svc.repo.DeleteBuild(ctx, id)
}

func (svc *Service) resolveImage(b *Build) {
	if b.ImagePath != "" && svc.files != nil {
		b.ImageURL = svc.files.URL(b.ImagePath)
	}
}

type docRepository struct {
	store core.DocStore
}

var _ Repository = (*docRepository)(nil)

func NewRepository(store core.DocStore) Repository {
	return &docRepository{store: store}
}

func (repo *docRepository) SaveBuild(ctx context.Context, b Build) error {
	doc, err := core.ToDocument(b)
	if err != nil {
		return err
	}
	delete(doc, "imageUrl") // derived from imagePath on read
	if err = repo.store.Set(ctx, Collection, b.ID, doc, false); err != nil {
		return core.NewStoreError(err, "saving build")
	}
	return nil
}

func (repo *docRepository) GetBuild(ctx context.Context, id string) (Build, error) {
	doc, err := repo.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Build{}, ErrNotFound
		}
		return Build{}, core.NewStoreError(err, "getting build")
	}
	var b Build
	if err = doc.Decode(&b); err != nil {
		return Build{}, errors.Wrap(err, "decoding build")
	}
	b.ID = id
	return b, nil
}

func (repo *docRepository) QueryAllBuilds(ctx context.Context) ([]Build, error) {
	docs, err := repo.store.Query(ctx, Collection, core.DocQuery{
		OrderBy: []core.DocOrder{{Field: "createdAt", Desc: true}},
	})
	if err != nil {
		return nil, core.NewStoreError(err, "querying builds")
	}
	builds := make([]Build, 0, len(docs))
	for _, kd := range docs {
		var b Build
		if err = kd.Doc.Decode(&b); err != nil {
			return nil, errors.Wrap(err, "decoding build")
		}
		b.ID = kd.Key
		builds = append(builds, b)
	}
	return builds, nil
}

func (repo *docRepository) DeleteBuild(ctx context.Context, id string) error {
	if err := repo.store.Delete(ctx, Collection, id); err != nil {
		return core.NewStoreError(err, "deleting build")
	}
	return nil
}
