package progress

import "github.com/pcacademy/backend/core/catalog"

// ScoreQuiz computes a quiz submission's score. Each question whose selected
// option matches the correct one contributes pointsPerQuestion; every other
// question's id — including unanswered ones — is collected into
// incorrectQuestionIDs. The total is order-independent.
func ScoreQuiz(questions []catalog.QuizQuestion, selected map[string]string, pointsPerQuestion int) (score int, incorrectQuestionIDs []string) {
	for _, q := range questions {
		if selected[q.ID] == q.CorrectOptionID {
			score += pointsPerQuestion
		} else {
			incorrectQuestionIDs = append(incorrectQuestionIDs, q.ID)
		}
	}
	return score, incorrectQuestionIDs
}

// AggregateLeaderboardScore sums the per-path highest scores over the eligible
// paths (those carrying a non-empty quiz). Missing entries contribute 0.
// The leaderboard total is a denormalized cache of this sum and is always
// recomputed in full from the per-path records, never incremented.
func AggregateLeaderboardScore(perPathHighest map[string]int, eligiblePaths map[string]bool) int {
	var total int
	for pathID := range eligiblePaths {
		total += perPathHighest[pathID]
	}
	return total
}
