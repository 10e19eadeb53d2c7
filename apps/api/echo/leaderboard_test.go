package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/pcacademy/backend/core/leaderboard"
)

func Test_leaderboardApi_list(t *testing.T) {
	env := setup(t)

	seed := []leaderboard.Entry{
		{ID: "amy@example.com", DisplayName: "Amy", Score: 90, LastUpdatedAt: time.Now().UTC()},
		{ID: "bob@example.com", DisplayName: "Bob", Score: 120, LastUpdatedAt: time.Now().UTC()},
		{ID: "cat@example.com", DisplayName: "Cat", Score: 90, LastUpdatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	for _, e := range seed {
		if err := env.brdSvc.Upsert(context.Background(), e); err != nil {
			t.Fatalf("seeding leaderboard: %v", err)
		}
	}

	req, rec := newRequest(http.MethodGet, "/v1/leaderboard")
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}

	var got []leaderboard.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling entries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(entries) = %d; want 3", len(got))
	}
	// score desc, most recent update breaking the 90-point tie
	wantOrder := []string{"bob@example.com", "amy@example.com", "cat@example.com"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("entries[%d] = %s; want %s", i, got[i].ID, want)
		}
		if got[i].Rank != i+1 {
			t.Errorf("entries[%d].Rank = %d; want %d", i, got[i].Rank, i+1)
		}
	}

	// limit trims the tail
	req, rec = newRequest(http.MethodGet, "/v1/leaderboard?limit=1")
	env.app.ServeHTTP(rec, req)
	got = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling limited entries: %v", err)
	}
	if len(got) != 1 || got[0].ID != "bob@example.com" {
		t.Errorf("limited entries = %+v; want just bob", got)
	}
}

func Test_leaderboardApi_list_empty(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/leaderboard")
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	var got []leaderboard.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling entries: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(entries) = %d; want 0", len(got))
	}
}
