package progress

import (
	"strings"
	"time"
)

const (
	// ProgressCollection holds one document per user, keyed by sanitized email.
	ProgressCollection = "userProgress"
	// PathScoresCollection holds one document per (user, path) pair.
	PathScoresCollection = "userPathScores"
)

type (
	// Record is the per-user progress document.
	Record struct {
		// CompletedLessons is a set of composite lesson keys (see LessonKey).
		// The backing array is deduplicated on write.
		CompletedLessons []string `json:"completedLessons"`
		// IncorrectlyAnsweredQuestions maps path id to the set of question ids
		// answered incorrectly at least once. Accumulates; never auto-clears.
		IncorrectlyAnsweredQuestions map[string][]string `json:"incorrectlyAnsweredQuestions,omitempty"`
		CreatedAt                    time.Time           `json:"createdAt"`
		LastUpdated                  time.Time           `json:"lastUpdated"`
	}

	// PathScore is the per-user-per-path quiz score document.
	// HighestScore is monotonically non-decreasing across attempts.
	PathScore struct {
		UserEmail          string    `json:"userEmail"`
		PathID             string    `json:"pathId"`
		HighestScore       int       `json:"highestScore"`
		TotalPossibleScore int       `json:"totalPossibleScore"`
		LastAttempt        time.Time `json:"lastAttemptTimestamp"`
	}
)

// LessonKey builds the composite completion key for a lesson.
func LessonKey(pathID, moduleID, lessonID string) string {
	return pathID + "/" + moduleID + "/" + lessonID
}

// Completed reports membership of the composite key in the completed set.
func (r Record) Completed(key string) bool {
	for _, k := range r.CompletedLessons {
		if k == key {
			return true
		}
	}
	return false
}

// CompletedLessonIDsForPath projects the completed set down to the lesson id
// component of keys belonging to the given path.
func (r Record) CompletedLessonIDsForPath(pathID string) map[string]bool {
	prefix := pathID + "/"
	ids := make(map[string]bool)
	for _, k := range r.CompletedLessons {
		if strings.HasPrefix(k, prefix) {
			if parts := strings.SplitN(k, "/", 3); len(parts) == 3 {
				ids[parts[2]] = true
			}
		}
	}
	return ids
}

// docKey sanitizes an email address for use as a document id.
func docKey(email string) string {
	return strings.ReplaceAll(email, "/", "_")
}

// pathScoreKey builds the per-user-per-path score document id.
func pathScoreKey(email, pathID string) string {
	return docKey(email) + "_" + pathID
}
