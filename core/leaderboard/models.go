package leaderboard

import "time"

// Collection holds one document per user, keyed by sanitized email.
const Collection = "leaderboardData"

// Entry is a user's denormalized leaderboard row. Score is always
// recomputable from the user's per-path score records; it is refreshed
// synchronously on every quiz submission.
type Entry struct {
	ID            string    `json:"id"` // user email
	DisplayName   string    `json:"displayName"`
	Score         int       `json:"score"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	Rank          int       `json:"rank,omitempty"` // derived on read
}
