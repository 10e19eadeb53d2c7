package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

// Collection holds one document per learning path, keyed by path id.
const Collection = "learningPaths"

type Repository interface {
	GetPath(ctx context.Context, id string) (LearningPath, error)
	QueryAllPaths(ctx context.Context) ([]LearningPath, error)
	SavePath(ctx context.Context, path LearningPath) error
}

type docRepository struct {
	store core.DocStore
}

var _ Repository = (*docRepository)(nil)

func NewRepository(store core.DocStore) Repository {
	return &docRepository{store: store}
}

func (repo *docRepository) GetPath(ctx context.Context, id string) (LearningPath, error) {
	doc, err := repo.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return LearningPath{}, ErrNotFound
		}
		return LearningPath{}, core.NewStoreError(err, "getting learning path")
	}
	var path LearningPath
	if err = doc.Decode(&path); err != nil {
		return LearningPath{}, errors.Wrap(err, "decoding learning path")
	}
	path.ID = id
	return path, nil
}

func (repo *docRepository) QueryAllPaths(ctx context.Context) ([]LearningPath, error) {
	docs, err := repo.store.Query(ctx, Collection, core.DocQuery{
		OrderBy: []core.DocOrder{{Field: "title"}},
	})
	if err != nil {
		return nil, core.NewStoreError(err, "querying learning paths")
	}
	paths := make([]LearningPath, 0, len(docs))
	for _, kd := range docs {
		var path LearningPath
		if err = kd.Doc.Decode(&path); err != nil {
			return nil, errors.Wrap(err, "decoding learning path")
		}
		path.ID = kd.Key
		paths = append(paths, path)
	}
	return paths, nil
}

func (repo *docRepository) SavePath(ctx context.Context, path LearningPath) error {
	doc, err := core.ToDocument(path)
	if err != nil {
		return err
	}
	if err = repo.store.Set(ctx, Collection, path.ID, doc, false); err != nil {
		return core.NewStoreError(err, "saving learning path")
	}
	return nil
}
