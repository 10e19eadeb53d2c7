package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/leaderboard"
)

var (
	// ErrNotAuthenticated is returned by write operations invoked without an
	// identity. Reads short-circuit to empty results instead.
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrNoQuiz = errors.New("learning path has no quiz")
)

type (
	// Catalog is the slice of the curriculum service the progress service needs.
	Catalog interface {
		Get(ctx context.Context, id string) (catalog.LearningPath, error)
		QuizPathIDs(ctx context.Context) (map[string]bool, error)
	}

	// Board rewrites the denormalized leaderboard entry.
	Board interface {
		Upsert(ctx context.Context, e leaderboard.Entry) error
	}

	Service struct {
		repo              Repository
		paths             Catalog
		board             Board
		pointsPerQuestion int
	}

	// SubmitResult is the outcome of a quiz submission.
	SubmitResult struct {
		Score                int      `json:"score"`
		TotalPossible        int      `json:"total_possible"`
		IncorrectQuestionIDs []string `json:"incorrect_question_ids"`
		// Persisted is false for anonymous submissions: the score is returned
		// but nothing is recorded.
		Persisted        bool `json:"persisted"`
		NewHighest       int  `json:"new_highest,omitempty"`
		LeaderboardTotal int  `json:"leaderboard_total,omitempty"`
	}
)

func NewService(repo Repository, paths Catalog, board Board, pointsPerQuestion int) *Service {
	if pointsPerQuestion <= 0 {
		pointsPerQuestion = 10
	}
	return &Service{repo: repo, paths: paths, board: board, pointsPerQuestion: pointsPerQuestion}
}

// IsLessonCompleted reports membership of the lesson in the user's completed
// set. Anonymous callers and missing records read as not completed.
func (svc *Service) IsLessonCompleted(ctx context.Context, ident core.Identity, pathID, moduleID, lessonID string) (bool, error) {
	if ident.Anonymous() {
		return false, nil
	}
	rec, err := svc.repo.GetRecord(ctx, ident.Email)
	if err != nil {
		return false, err
	}
	return rec.Completed(LessonKey(pathID, moduleID, lessonID)), nil
}

// ToggleLessonCompletion flips the lesson's membership in the completed set,
// creating the record on first use, and returns the new state (true = now
// completed). Completion is reversible by design.
func (svc *Service) ToggleLessonCompletion(ctx context.Context, ident core.Identity, pathID, moduleID, lessonID string) (bool, error) {
	if ident.Anonymous() {
		return false, ErrNotAuthenticated
	}
	key := LessonKey(pathID, moduleID, lessonID)
	rec, err := svc.repo.GetRecord(ctx, ident.Email)
	if err != nil {
		return false, err
	}
	if rec.Completed(key) {
		if err = svc.repo.RemoveCompletedLesson(ctx, ident.Email, key); err != nil {
			return false, err
		}
		return false, nil
	}
	if err = svc.repo.AddCompletedLesson(ctx, ident.Email, key); err != nil {
		return false, err
	}
	return true, nil
}

// CompletedLessonIDsForPath projects the user's completed set down to the
// lesson ids of the given path — the input the unlock policy consumes.
func (svc *Service) CompletedLessonIDsForPath(ctx context.Context, ident core.Identity, pathID string) (map[string]bool, error) {
	if ident.Anonymous() {
		return map[string]bool{}, nil
	}
	rec, err := svc.repo.GetRecord(ctx, ident.Email)
	if err != nil {
		return nil, err
	}
	return rec.CompletedLessonIDsForPath(pathID), nil
}

// CompletedCountForPath counts the user's completed lessons within the path.
// Completion keys referencing lessons that no longer exist in the curriculum
// are dropped silently.
func (svc *Service) CompletedCountForPath(ctx context.Context, ident core.Identity, pathID string) (int, error) {
	ids, err := svc.CompletedLessonIDsForPath(ctx, ident, pathID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	path, err := svc.paths.Get(ctx, pathID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrNotFound {
			return 0, nil // whole path removed from the curriculum
		}
		return 0, err
	}
	known := path.LessonIDSet()
	var count int
	for id := range ids {
		if known[id] {
			count++
		}
	}
	return count, nil
}

// RecordIncorrectAnswer adds the question to the user's per-path incorrect
// set. Idempotent; a no-op for anonymous callers.
func (svc *Service) RecordIncorrectAnswer(ctx context.Context, ident core.Identity, pathID, questionID string) error {
	if ident.Anonymous() {
		return nil
	}
	return svc.repo.AddIncorrectQuestion(ctx, ident.Email, pathID, questionID)
}

// IncorrectlyAnsweredQuestions returns the full pathID -> questionIDs mapping
// for building the review view.
func (svc *Service) IncorrectlyAnsweredQuestions(ctx context.Context, ident core.Identity) (map[string][]string, error) {
	if ident.Anonymous() {
		return map[string][]string{}, nil
	}
	rec, err := svc.repo.GetRecord(ctx, ident.Email)
	if err != nil {
		return nil, err
	}
	if rec.IncorrectlyAnsweredQuestions == nil {
		return map[string][]string{}, nil
	}
	return rec.IncorrectlyAnsweredQuestions, nil
}

// HighestScoreForPath returns the user's best quiz result for the path;
// found is false when the path was never attempted.
func (svc *Service) HighestScoreForPath(ctx context.Context, ident core.Identity, pathID string) (int, bool, error) {
	if ident.Anonymous() {
		return 0, false, nil
	}
	score, found, err := svc.repo.GetPathScore(ctx, ident.Email, pathID)
	if err != nil {
		return 0, false, err
	}
	return score.HighestScore, found, nil
}

// RecordQuizAttempt folds a new attempt into the per-path score record:
// highestScore = max(existing, score). TotalPossibleScore and the last-attempt
// timestamp are always rewritten. Returns the new highest.
func (svc *Service) RecordQuizAttempt(ctx context.Context, ident core.Identity, pathID string, score, totalPossible int) (int, error) {
	if ident.Anonymous() {
		return 0, ErrNotAuthenticated
	}
	existing, _, err := svc.repo.GetPathScore(ctx, ident.Email, pathID)
	if err != nil {
		return 0, err
	}
	highest := score
	if existing.HighestScore > highest {
		highest = existing.HighestScore
	}
	rec := PathScore{
		UserEmail:          ident.Email,
		PathID:             pathID,
		HighestScore:       highest,
		TotalPossibleScore: totalPossible,
		LastAttempt:        time.Now().UTC(),
	}
	if err = svc.repo.SavePathScore(ctx, ident.Email, rec); err != nil {
		return 0, err
	}
	return highest, nil
}

// SubmitQuiz scores a submission against the path's quiz and, for
// authenticated users, records incorrect answers, folds the attempt into the
// per-path highest score, recomputes the cross-path leaderboard total from
// the per-path records and rewrites the user's leaderboard entry. Anonymous
// submissions are scored but not persisted.
func (svc *Service) SubmitQuiz(ctx context.Context, ident core.Identity, pathID string, answers map[string]string) (SubmitResult, error) {
	path, err := svc.paths.Get(ctx, pathID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !path.HasQuiz() {
		return SubmitResult{}, ErrNoQuiz
	}

	score, incorrect := ScoreQuiz(path.Quiz.Questions, answers, svc.pointsPerQuestion)
	res := SubmitResult{
		Score:                score,
		TotalPossible:        len(path.Quiz.Questions) * svc.pointsPerQuestion,
		IncorrectQuestionIDs: incorrect,
	}
	if ident.Anonymous() {
		return res, nil
	}

	for _, questionID := range incorrect {
		if err = svc.RecordIncorrectAnswer(ctx, ident, pathID, questionID); err != nil {
			return res, err
		}
	}

	res.NewHighest, err = svc.RecordQuizAttempt(ctx, ident, pathID, score, res.TotalPossible)
	if err != nil {
		return res, err
	}

	res.LeaderboardTotal, err = svc.syncLeaderboard(ctx, ident)
	if err != nil {
		return res, err
	}
	res.Persisted = true
	return res, nil
}

// syncLeaderboard recomputes the user's total from the source-of-truth
// per-path records and rewrites the denormalized leaderboard entry.
func (svc *Service) syncLeaderboard(ctx context.Context, ident core.Identity) (int, error) {
	eligible, err := svc.paths.QuizPathIDs(ctx)
	if err != nil {
		return 0, err
	}
	perPath := make(map[string]int, len(eligible))
	for pathID := range eligible {
		score, found, err := svc.repo.GetPathScore(ctx, ident.Email, pathID)
		if err != nil {
			return 0, err
		}
		if found {
			perPath[pathID] = score.HighestScore
		}
	}
	total := AggregateLeaderboardScore(perPath, eligible)

	err = svc.board.Upsert(ctx, leaderboard.Entry{
		ID:            ident.Email,
		DisplayName:   ident.DisplayName(),
		Score:         total,
		AvatarURL:     ident.AvatarURL,
		LastUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
