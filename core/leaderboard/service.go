package leaderboard

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

type (
	Repository interface {
		SaveEntry(ctx context.Context, e Entry) error
		// QueryEntries returns all entries ordered by score desc, then
		// lastUpdatedAt desc.
		QueryEntries(ctx context.Context) ([]Entry, error)
	}

	// Cache is a ranking cache and live-update channel (backed by redis).
	// All cache operations are best-effort: the document store stays the
	// source of truth.
	Cache interface {
		Add(ctx context.Context, e Entry) error
		Top(ctx context.Context, n int) ([]Entry, error)
		Publish(ctx context.Context, e Entry) error
		Subscribe(ctx context.Context) (<-chan Entry, error)
	}

	Service struct {
		repo   Repository
		cache  Cache // optional
		logger core.Logger
	}
)

func NewService(repo Repository, cache Cache, logger core.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Upsert rewrites the user's leaderboard entry and fans the update out to
// live subscribers. Cache failures are logged, never surfaced: a stale cache
// is corrected on the next write, the stored entry is what matters.
func (svc *Service) Upsert(ctx context.Context, e Entry) error {
	if err := svc.repo.SaveEntry(ctx, e); err != nil {
		return err
	}
	if svc.cache != nil {
		if err := svc.cache.Add(ctx, e); err != nil {
			svc.logger.Warn("caching leaderboard entry: " + err.Error())
		}
		if err := svc.cache.Publish(ctx, e); err != nil {
			svc.logger.Warn("publishing leaderboard update: " + err.Error())
		}
	}
	return nil
}

// List returns the leaderboard ordered by score desc then recency, with ranks
// assigned from the sorted order.
func (svc *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := svc.repo.QueryEntries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Subscribe returns a channel of live entry updates. Requires a cache.
func (svc *Service) Subscribe(ctx context.Context) (<-chan Entry, error) {
	if svc.cache == nil {
		return nil, errors.New("live leaderboard updates are not configured")
	}
	return svc.cache.Subscribe(ctx)
}

type docRepository struct {
	store core.DocStore
}

var _ Repository = (*docRepository)(nil)

func NewRepository(store core.DocStore) Repository {
	return &docRepository{store: store}
}

func (repo *docRepository) SaveEntry(ctx context.Context, e Entry) error {
	doc, err := core.ToDocument(e)
	if err != nil {
		return err
	}
	delete(doc, "rank") // derived, not stored
	key := strings.ReplaceAll(e.ID, "/", "_")
	if err = repo.store.Set(ctx, Collection, key, doc, true); err != nil {
		return core.NewStoreError(err, "saving leaderboard entry")
	}
	return nil
}

func (repo *docRepository) QueryEntries(ctx context.Context) ([]Entry, error) {
	docs, err := repo.store.Query(ctx, Collection, core.DocQuery{
		OrderBy: []core.DocOrder{
			{Field: "score", Desc: true},
			{Field: "lastUpdatedAt", Desc: true},
		},
	})
	if err != nil {
		return nil, core.NewStoreError(err, "querying leaderboard")
	}
	entries := make([]Entry, 0, len(docs))
	for _, kd := range docs {
		var e Entry
		if err = kd.Doc.Decode(&e); err != nil {
			return nil, errors.Wrap(err, "decoding leaderboard entry")
		}
		entries = append(entries, e)
	}
	return entries, nil
}
