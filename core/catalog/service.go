package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/pcacademy/backend/core"
)

var ErrNotFound = errors.New("learning path not found")

// Service serves the curriculum. Reads go through a small in-process cache
// since curriculum content changes rarely; concurrent cache misses are
// collapsed with singleflight.
type Service struct {
	repo     Repository
	files    core.FileStore
	logger   core.Logger
	cacheTTL time.Duration

	sf       singleflight.Group
	mu       sync.RWMutex
	cached   []LearningPath
	cachedAt time.Time
}

func NewService(repo Repository, files core.FileStore, logger core.Logger, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{repo: repo, files: files, logger: logger, cacheTTL: cacheTTL}
}

// All returns every learning path, ordered by title.
func (svc *Service) All(ctx context.Context) ([]LearningPath, error) {
	svc.mu.RLock()
	if svc.cached != nil && time.Since(svc.cachedAt) < svc.cacheTTL {
		paths := svc.cached
		svc.mu.RUnlock()
		return paths, nil
	}
	svc.mu.RUnlock()

	res, err, _ := svc.sf.Do("all", func() (interface{}, error) {
		paths, err := svc.repo.QueryAllPaths(ctx)
		if err != nil {
			return nil, err
		}
		for i := range paths {
			svc.resolveImage(&paths[i])
		}
		svc.mu.Lock()
		svc.cached = paths
		svc.cachedAt = time.Now()
		svc.mu.Unlock()
		return paths, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]LearningPath), nil
}

// Get returns a single learning path or ErrNotFound.
func (svc *Service) Get(ctx context.Context, id string) (LearningPath, error) {
	paths, err := svc.All(ctx)
	if err != nil {
		return LearningPath{}, err
	}
	for _, p := range paths {
		if p.ID == id {
			return p, nil
		}
	}
	return LearningPath{}, ErrNotFound
}

// QuizPathIDs returns the set of path ids carrying a non-empty quiz — the
// paths eligible to contribute to the leaderboard total.
func (svc *Service) QuizPathIDs(ctx context.Context) (map[string]bool, error) {
	paths, err := svc.All(ctx)
	if err != nil {
		return nil, err
	}
	eligible := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p.HasQuiz() {
			eligible[p.ID] = true
		}
	}
	return eligible, nil
}

// Seed writes the given paths to the store, replacing existing documents with
// the same ids, and drops the cache. Empty modules are tolerated but warned
// about: lessons after an empty-module gap can never unlock.
func (svc *Service) Seed(ctx context.Context, paths []LearningPath) error {
	for _, p := range paths {
		if p.ID == "" {
			return core.NewValidationError(errors.New("learning path id is required"))
		}
		for _, m := range p.Modules {
			if len(m.Lessons) == 0 && svc.logger != nil {
				svc.logger.Warn("module " + m.ID + " of path " + p.ID + " has no lessons; subsequent lessons will stay locked")
			}
		}
		if err := svc.repo.SavePath(ctx, p); err != nil {
			return err
		}
	}
	svc.Invalidate()
	return nil
}

// Invalidate drops the in-process cache.
func (svc *Service) Invalidate() {
	svc.mu.Lock()
	svc.cached = nil
	svc.mu.Unlock()
}

func (svc *Service) resolveImage(p *LearningPath) {
	if p.ImagePath != "" && p.ImageURL == "" && svc.files != nil {
		p.ImageURL = svc.files.URL(p.ImagePath)
	}
}
