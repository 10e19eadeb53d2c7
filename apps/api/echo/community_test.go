package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pcacademy/backend/core/community"
	llmsvc "github.com/pcacademy/backend/services/llm"
)

const buildBody = `{
	"title": "Quiet office build",
	"description": "Low power, no GPU.",
	"cpu": "Ryzen 5 8600G",
	"motherboard": "B650M",
	"ram": "32GB DDR5-6000",
	"storage": "1TB NVMe",
	"psu": "550W Gold"
}`

func Test_communityApi_crud(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "Jane", "jane@example.com")
	token := getToken(t, usr)

	// anonymous create is rejected
	req, rec := newRequest(http.MethodPost, "/v1/builds", []byte(buildBody))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create code = %v; want %v", rec.Code, http.StatusUnauthorized)
	}

	// missing required slots fail validation
	req, rec = newAuthRequest(http.MethodPost, "/v1/builds", token, []byte(`{"title":"x"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid create code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/builds", token, []byte(buildBody))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var b community.Build
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("unmarshaling Build: %v", err)
	}
	if b.ID == "" || b.Author != "Jane" || b.AuthorEmail != "jane@example.com" {
		t.Errorf("unexpected build: %+v", b)
	}
	if len(b.Components) != 5 {
		t.Errorf("len(components) = %d; want 5 (empty slots skipped)", len(b.Components))
	}

	// visible on the public board
	req, rec = newRequest(http.MethodGet, "/v1/builds")
	env.app.ServeHTTP(rec, req)
	var list []community.Build
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshaling build list: %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("list = %+v; want the created build", list)
	}

	// another user cannot modify or delete it
	other := env.createUser(t, "Eve", "eve@example.com")
	otherToken := getToken(t, other)
	req, rec = newAuthRequest(http.MethodPut, "/v1/builds/"+b.ID, otherToken, []byte(buildBody))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign update code = %v; want %v", rec.Code, http.StatusForbidden)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/builds/"+b.ID, otherToken)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign delete code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// the owner can
	req, rec = newAuthRequest(http.MethodDelete, "/v1/builds/"+b.ID, token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	req, rec = newRequest(http.MethodGet, "/v1/builds/"+b.ID)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted build retrieve code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}

var buildFormFields = map[string]string{
	"title":       "Quiet office build",
	"cpu":         "Ryzen 5 8600G",
	"motherboard": "B650M",
	"ram":         "32GB DDR5-6000",
	"storage":     "1TB NVMe",
	"psu":         "550W Gold",
}

func newBuildFormRequest(t *testing.T, method, path, token, photoName string, photo []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, value := range buildFormFields {
		if err := w.WriteField(field, value); err != nil {
			t.Fatalf("writing form field %q: %v", field, err)
		}
	}
	fw, err := w.CreateFormFile("image", photoName)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err = fw.Write(photo); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_communityApi_update_photoOwnership(t *testing.T) {
	env := setup(t)
	owner := env.createUser(t, "Jane", "jane@example.com")
	ownerToken := getToken(t, owner)

	photo := []byte("jane's photo bytes")
	req, rec := newBuildFormRequest(t, http.MethodPost, "/v1/builds", ownerToken, "build.jpg", photo)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var b community.Build
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("unmarshaling Build: %v", err)
	}
	if b.ImagePath == "" || b.ImageURL == "" {
		t.Fatalf("build should carry the uploaded photo; got %+v", b)
	}
	if got := env.files.saved[b.ImagePath]; !bytes.Equal(got, photo) {
		t.Fatalf("stored photo = %q; want %q", got, photo)
	}

	// a foreign update is refused before anything reaches the file store
	other := env.createUser(t, "Eve", "eve@example.com")
	req, rec = newBuildFormRequest(t, http.MethodPut, "/v1/builds/"+b.ID, getToken(t, other), "build.jpg", []byte("eve's bytes"))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update code = %v; want %v", rec.Code, http.StatusForbidden)
	}
	if len(env.files.saved) != 1 {
		t.Errorf("file store keys = %d; want 1 (no foreign writes)", len(env.files.saved))
	}
	if got := env.files.saved[b.ImagePath]; !bytes.Equal(got, photo) {
		t.Errorf("stored photo = %q; want it untouched", got)
	}

	// the owner can replace their own photo
	req, rec = newBuildFormRequest(t, http.MethodPut, "/v1/builds/"+b.ID, ownerToken, "better.jpg", []byte("jane's new photo"))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated community.Build
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshaling Build: %v", err)
	}
	if got := env.files.saved[updated.ImagePath]; !bytes.Equal(got, []byte("jane's new photo")) {
		t.Errorf("stored photo = %q; want the replacement", got)
	}
}

func Test_communityApi_analyze(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "Jane", "jane@example.com")
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/builds", token, []byte(buildBody))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %v; want %v", rec.Code, http.StatusCreated)
	}
	var b community.Build
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("unmarshaling Build: %v", err)
	}

	env.provider.Enqueue(llmsvc.MockResponse{
		Content: json.RawMessage(`{"isPcRelated":true,"analysis":"Balanced office build; the integrated GPU is fine for this use."}`),
	})

	req, rec = newAuthRequest(http.MethodPost, "/v1/builds/"+b.ID+"/analyze", token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var analysis map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("unmarshaling analysis: %v", err)
	}
	if analysis["isPcRelated"] != true {
		t.Errorf("analysis = %v; want isPcRelated true", analysis)
	}

	// the provider was fed the component listing, not the raw form
	calls := env.provider.Calls
	if len(calls) != 1 {
		t.Fatalf("provider calls = %d; want 1", len(calls))
	}
}
