package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

type Repository interface {
	// GetRecord returns the user's progress record; a missing document reads
	// as an empty record.
	GetRecord(ctx context.Context, email string) (Record, error)
	// AddCompletedLesson adds the composite key to the completed set,
	// creating the record on first use.
	AddCompletedLesson(ctx context.Context, email, key string) error
	RemoveCompletedLesson(ctx context.Context, email, key string) error
	// AddIncorrectQuestion adds questionID to the per-path incorrect set.
	// Idempotent: duplicate adds are no-ops.
	AddIncorrectQuestion(ctx context.Context, email, pathID, questionID string) error
	// GetPathScore returns the per-path score record; found is false when the
	// path was never attempted.
	GetPathScore(ctx context.Context, email, pathID string) (score PathScore, found bool, err error)
	SavePathScore(ctx context.Context, email string, score PathScore) error
}

type docRepository struct {
	store core.DocStore
}

var _ Repository = (*docRepository)(nil)

func NewRepository(store core.DocStore) Repository {
	return &docRepository{store: store}
}

func (repo *docRepository) GetRecord(ctx context.Context, email string) (Record, error) {
	doc, err := repo.store.Get(ctx, ProgressCollection, docKey(email))
	if err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Record{}, nil
		}
		return Record{}, core.NewStoreError(err, "getting progress record")
	}
	var rec Record
	if err = doc.Decode(&rec); err != nil {
		return Record{}, errors.Wrap(err, "decoding progress record")
	}
	return rec, nil
}

func (repo *docRepository) AddCompletedLesson(ctx context.Context, email, key string) error {
	return repo.updateOrCreate(ctx, email,
		core.Document{
			"completedLessons": []string{key},
			"createdAt":        time.Now().UTC(),
			"lastUpdated":      time.Now().UTC(),
		},
		core.ArrayUnion("completedLessons", key),
	)
}

func (repo *docRepository) RemoveCompletedLesson(ctx context.Context, email, key string) error {
	err := repo.store.Update(ctx, ProgressCollection, docKey(email),
		core.ArrayRemove("completedLessons", key),
		core.SetField("lastUpdated", time.Now().UTC()),
	)
	if err != nil && errors.Cause(err) != core.ErrDocNotFound {
		return core.NewStoreError(err, "removing completed lesson")
	}
	return nil
}

func (repo *docRepository) AddIncorrectQuestion(ctx context.Context, email, pathID, questionID string) error {
	return repo.updateOrCreate(ctx, email,
		core.Document{
			"incorrectlyAnsweredQuestions": map[string]interface{}{pathID: []string{questionID}},
			"createdAt":                    time.Now().UTC(),
			"lastUpdated":                  time.Now().UTC(),
		},
		core.ArrayUnion("incorrectlyAnsweredQuestions."+pathID, questionID),
	)
}

// updateOrCreate applies the partial update to the user's progress document,
// creating it with the given initial content when absent. Read-then-write
// without CAS: two concurrent writers for the same user race and the last
// write wins (accepted, single-user-per-record access pattern).
func (repo *docRepository) updateOrCreate(ctx context.Context, email string, initial core.Document, update core.FieldUpdate) error {
	key := docKey(email)
	err := repo.store.Update(ctx, ProgressCollection, key,
		update,
		core.SetField("lastUpdated", time.Now().UTC()),
	)
	if err == nil {
		return nil
	}
	if errors.Cause(err) != core.ErrDocNotFound {
		return core.NewStoreError(err, "updating progress record")
	}
	if err = repo.store.Set(ctx, ProgressCollection, key, initial, false); err != nil {
		return core.NewStoreError(err, "creating progress record")
	}
	return nil
}

func (repo *docRepository) GetPathScore(ctx context.Context, email, pathID string) (PathScore, bool, error) {
	doc, err := repo.store.Get(ctx, PathScoresCollection, pathScoreKey(email, pathID))
	if err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return PathScore{}, false, nil
		}
		return PathScore{}, false, core.NewStoreError(err, "getting path score")
	}
	var score PathScore
	if err = doc.Decode(&score); err != nil {
		return PathScore{}, false, errors.Wrap(err, "decoding path score")
	}
	return score, true, nil
}

func (repo *docRepository) SavePathScore(ctx context.Context, email string, score PathScore) error {
	doc, err := core.ToDocument(score)
	if err != nil {
		return err
	}
	if err = repo.store.Set(ctx, PathScoresCollection, pathScoreKey(email, score.PathID), doc, true); err != nil {
		return core.NewStoreError(err, "saving path score")
	}
	return nil
}
