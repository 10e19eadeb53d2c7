package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
)

func Test_catalogApi_list(t *testing.T) {
	env := setup(t)
	env.seedPath(t)

	req, rec := newRequest(http.MethodGet, "/v1/paths")
	env.app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	var got []PathSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling path summaries: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(paths) = %d; want 1", len(got))
	}
	if got[0].LessonCount != 3 || !got[0].HasQuiz || got[0].CompletedCount != 0 {
		t.Errorf("unexpected summary: %+v", got[0])
	}
}

func Test_catalogApi_retrieve_unlockStates(t *testing.T) {
	env := setup(t)
	p := env.seedPath(t)
	usr := env.createUser(t, "Jane", "jane@example.com")
	token := getToken(t, usr)

	fetch := func(token string) PathDetail {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/paths/"+p.ID, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var got PathDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshaling path detail: %v", err)
		}
		return got
	}

	// anonymous: no identity means no progress tracking, nothing is gated
	got := fetch("")
	for mi, m := range got.Modules {
		for li, l := range m.Lessons {
			if !l.Unlocked {
				t.Errorf("modules[%d].lessons[%d] should be unlocked anonymously", mi, li)
			}
			if l.Completed {
				t.Errorf("modules[%d].lessons[%d] should not be completed anonymously", mi, li)
			}
		}
	}

	// fresh user: only the very first lesson is unlocked
	got = fetch(token)
	if !got.Modules[0].Lessons[0].Unlocked {
		t.Error("first lesson should be unlocked")
	}
	if got.Modules[0].Lessons[1].Unlocked || got.Modules[1].Lessons[0].Unlocked {
		t.Error("later lessons should be locked before any completion")
	}

	// completing l1 unlocks l2; completing l2 unlocks m2/l3 across the module gap
	for _, lesson := range []string{"l1", "l2"} {
		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/"+p.ID+"/lessons/m1/"+lesson+"/toggle", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle(%s) code = %v; want %v", lesson, rec.Code, http.StatusOK)
		}
	}
	got = fetch(token)
	if !got.Modules[0].Lessons[1].Unlocked {
		t.Error("second lesson should unlock after completing the first")
	}
	if !got.Modules[1].Lessons[0].Unlocked {
		t.Error("first lesson of next module should unlock after the prior module is done")
	}
	if !got.Modules[0].Lessons[0].Completed || !got.Modules[0].Lessons[1].Completed {
		t.Error("completed lessons should be flagged")
	}
}

func Test_catalogApi_lesson_locked(t *testing.T) {
	env := setup(t)
	p := env.seedPath(t)
	usr := env.createUser(t, "Jane", "jane@example.com")
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name:     "first lesson is open anonymously",
			method:   http.MethodGet,
			path:     "/v1/paths/" + p.ID + "/lessons/m1/l1",
			wantCode: http.StatusOK,
		},
		{
			name:     "second lesson is open anonymously",
			method:   http.MethodGet,
			path:     "/v1/paths/" + p.ID + "/lessons/m1/l2",
			wantCode: http.StatusOK,
		},
		{
			name:     "last lesson is open anonymously",
			method:   http.MethodGet,
			path:     "/v1/paths/" + p.ID + "/lessons/m2/l3",
			wantCode: http.StatusOK,
		},
		{
			name:     "second lesson is locked before completing the first",
			method:   http.MethodGet,
			path:     "/v1/paths/" + p.ID + "/lessons/m1/l2",
			token:    token,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unknown lesson",
			method:   http.MethodGet,
			path:     "/v1/paths/" + p.ID + "/lessons/m1/nope",
			token:    token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown path",
			method:   http.MethodGet,
			path:     "/v1/paths/nope/lessons/m1/l1",
			token:    token,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// completing l1 opens l2
	req, rec := newAuthRequest(http.MethodPost, "/v1/paths/"+p.ID+"/lessons/m1/l1/toggle", token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle code = %v; want %v", rec.Code, http.StatusOK)
	}
	req, rec = newAuthRequest(http.MethodGet, "/v1/paths/"+p.ID+"/lessons/m1/l2", token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("lesson after completion code = %v; want %v", rec.Code, http.StatusOK)
	}
}

func Test_progressApi_toggle(t *testing.T) {
	env := setup(t)
	p := env.seedPath(t)
	usr := env.createUser(t, "Jane", "jane@example.com")
	token := getToken(t, usr)

	toggle := func() ToggleResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/"+p.ID+"/lessons/m1/l1/toggle", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle code = %v; want %v", rec.Code, http.StatusOK)
		}
		var resp ToggleResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshaling ToggleResponse: %v", err)
		}
		return resp
	}

	if resp := toggle(); !resp.Completed {
		t.Error("first toggle should complete the lesson")
	}
	if resp := toggle(); resp.Completed {
		t.Error("second toggle should un-complete the lesson")
	}

	// anonymous toggles are rejected
	req, rec := newRequest(http.MethodPost, "/v1/paths/"+p.ID+"/lessons/m1/l1/toggle")
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous toggle code = %v; want %v", rec.Code, http.StatusUnauthorized)
	}
}
