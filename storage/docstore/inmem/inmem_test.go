package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcacademy/backend/core"
)

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Get(ctx, "userProgress", "jane@example.com")
	assert.ErrorIs(t, err, core.ErrDocNotFound)

	doc := core.Document{"completedLessons": []string{"p1/m1/l1"}, "score": 10}
	require.NoError(t, store.Set(ctx, "userProgress", "jane@example.com", doc, false))

	got, err := store.Get(ctx, "userProgress", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1/m1/l1"}, got.Strings("completedLessons"))
	assert.Equal(t, 10, got.Int("score"))

	// returned documents are copies
	got["score"] = 99
	got2, err := store.Get(ctx, "userProgress", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 10, got2.Int("score"))
}

func TestStore_SetMerge(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Set(ctx, "users", "u1", core.Document{"name": "Jane", "email": "jane@example.com"}, false))
	require.NoError(t, store.Set(ctx, "users", "u1", core.Document{"name": "Jane D."}, true))

	got, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", got.String("name"))
	assert.Equal(t, "jane@example.com", got.String("email"))

	// non-merge replaces the whole document
	require.NoError(t, store.Set(ctx, "users", "u1", core.Document{"name": "Jane"}, false))
	got, err = store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "", got.String("email"))
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Update(ctx, "userProgress", "jane", core.SetField("lastUpdated", "now"))
	assert.ErrorIs(t, err, core.ErrDocNotFound)

	require.NoError(t, store.Set(ctx, "userProgress", "jane", core.Document{
		"completedLessons": []string{"p1/m1/l1"},
	}, false))

	// array union has set semantics
	require.NoError(t, store.Update(ctx, "userProgress", "jane",
		core.ArrayUnion("completedLessons", "p1/m1/l2", "p1/m1/l1")))
	got, err := store.Get(ctx, "userProgress", "jane")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1/m1/l1", "p1/m1/l2"}, got.Strings("completedLessons"))

	require.NoError(t, store.Update(ctx, "userProgress", "jane",
		core.ArrayRemove("completedLessons", "p1/m1/l1")))
	got, err = store.Get(ctx, "userProgress", "jane")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1/m1/l2"}, got.Strings("completedLessons"))

	// dot paths create intermediate maps
	require.NoError(t, store.Update(ctx, "userProgress", "jane",
		core.ArrayUnion("incorrectlyAnsweredQuestions.path-1", "q3")))
	got, err = store.Get(ctx, "userProgress", "jane")
	require.NoError(t, err)
	assert.Equal(t, []string{"q3"}, got.Strings("incorrectlyAnsweredQuestions.path-1"))
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	seed := []struct {
		key   string
		score int
		at    string
	}{
		{"alice", 50, "2026-01-02T10:00:00Z"},
		{"bob", 80, "2026-01-01T10:00:00Z"},
		{"carol", 50, "2026-01-01T10:00:00Z"},
	}
	for _, s := range seed {
		require.NoError(t, store.Set(ctx, "leaderboardData", s.key, core.Document{
			"score":         s.score,
			"lastUpdatedAt": s.at,
		}, false))
	}

	docs, err := store.Query(ctx, "leaderboardData", core.DocQuery{
		OrderBy: []core.DocOrder{
			{Field: "score", Desc: true},
			{Field: "lastUpdatedAt", Desc: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "bob", docs[0].Key)
	assert.Equal(t, "alice", docs[1].Key) // newer timestamp wins the tie
	assert.Equal(t, "carol", docs[2].Key)

	docs, err = store.Query(ctx, "leaderboardData", core.DocQuery{
		Filters: []core.DocFilter{{Field: "score", Value: 50}},
	})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = store.Query(ctx, "leaderboardData", core.DocQuery{
		OrderBy: []core.DocOrder{{Field: "score", Desc: true}},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "bob", docs[0].Key)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Set(ctx, "builds", "b1", core.Document{"title": "Budget build"}, false))
	require.NoError(t, store.Delete(ctx, "builds", "b1"))
	_, err := store.Get(ctx, "builds", "b1")
	assert.ErrorIs(t, err, core.ErrDocNotFound)

	// deleting a missing key is a no-op
	require.NoError(t, store.Delete(ctx, "builds", "b1"))
}
