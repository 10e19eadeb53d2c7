package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/assistant"
	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/community"
	"github.com/pcacademy/backend/core/forum"
	"github.com/pcacademy/backend/core/leaderboard"
	"github.com/pcacademy/backend/core/progress"
	"github.com/pcacademy/backend/core/user"
	emailsvc "github.com/pcacademy/backend/services/email"
	llmsvc "github.com/pcacademy/backend/services/llm"
	logsvc "github.com/pcacademy/backend/services/logger"
	"github.com/pcacademy/backend/storage/docstore/inmem"
)

var errMissingTokenResp = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

type testEnv struct {
	app      Server
	store    *inmem.Store
	files    *fakeFileStore
	usrSvc   *user.Service
	catSvc   *catalog.Service
	prgSvc   *progress.Service
	brdSvc   *leaderboard.Service
	provider *llmsvc.MockProvider
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	store := inmem.NewStore()
	files := newFakeFileStore()
	logger := logsvc.NewStdLogger(nil)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock()

	usrSvc := user.NewService(user.NewRepository(store), mailSvc)
	catSvc := catalog.NewService(catalog.NewRepository(store), nil, logger, 0)
	brdSvc := leaderboard.NewService(leaderboard.NewRepository(store), nil, logger)
	prgSvc := progress.NewService(progress.NewRepository(store), catSvc, brdSvc, core.Conf.Quiz.PointsPerQuestion)
	comSvc := community.NewService(community.NewRepository(store), files)
	frmSvc := forum.NewService(forum.NewRepository(store))

	provider := llmsvc.NewMockProvider()
	astSvc := assistant.NewService(provider, logger)

	app := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		Files:          files,
		UserSvc:        usrSvc,
		CatalogSvc:     catSvc,
		ProgressSvc:    prgSvc,
		LeaderboardSvc: brdSvc,
		CommunitySvc:   comSvc,
		ForumSvc:       frmSvc,
		AssistantSvc:   astSvc,
	})

	return &testEnv{
		app:      app,
		store:    store,
		files:    files,
		usrSvc:   usrSvc,
		catSvc:   catSvc,
		prgSvc:   prgSvc,
		brdSvc:   brdSvc,
		provider: provider,
	}
}

// fakeFileStore keeps uploaded blobs in memory, keyed as stored.
type fakeFileStore struct {
	saved map[string][]byte
}

var _ core.FileStore = (*fakeFileStore)(nil)

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: map[string][]byte{}}
}

func (s *fakeFileStore) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.saved[key] = data
	return s.URL(key), nil
}

func (s *fakeFileStore) URL(key string) string {
	return "http://files.test/" + key
}

func (s *fakeFileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, core.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeFileStore) Delete(_ context.Context, key string) error {
	delete(s.saved, key)
	return nil
}

// seedPath writes a two-module fixture path with a three-question quiz.
func (env *testEnv) seedPath(t *testing.T) catalog.LearningPath {
	t.Helper()
	p := catalog.LearningPath{
		ID:          "pc-basics",
		Title:       "PC Building Basics",
		Description: "From parts to power-on.",
		Modules: []catalog.Module{
			{
				ID:    "m1",
				Title: "Components",
				Lessons: []catalog.Lesson{
					{ID: "l1", Title: "The CPU", Description: "What a CPU does."},
					{ID: "l2", Title: "Motherboards", Description: "Sockets and chipsets."},
				},
			},
			{
				ID:    "m2",
				Title: "Assembly",
				Lessons: []catalog.Lesson{
					{ID: "l3", Title: "Mounting", Description: "Standoffs and screws."},
				},
			},
		},
		Quiz: &catalog.Quiz{
			Title: "Basics Quiz",
			Questions: []catalog.QuizQuestion{
				{
					ID:   "q1",
					Text: "What does CPU stand for?",
					Options: []catalog.QuizOption{
						{ID: "a", Text: "Central Processing Unit"},
						{ID: "b", Text: "Computer Power Unit"},
					},
					CorrectOptionID: "a",
				},
				{
					ID:   "q2",
					Text: "Which slot takes the GPU?",
					Options: []catalog.QuizOption{
						{ID: "a", Text: "PCIe x16"},
						{ID: "b", Text: "DIMM"},
					},
					CorrectOptionID: "a",
				},
				{
					ID:   "q3",
					Text: "What connects PSU to motherboard?",
					Options: []catalog.QuizOption{
						{ID: "a", Text: "24-pin ATX"},
						{ID: "b", Text: "SATA"},
					},
					CorrectOptionID: "a",
				},
			},
		},
	}
	if err := env.catSvc.Seed(context.Background(), []catalog.LearningPath{p}); err != nil {
		t.Fatalf("seedPath() failed: %v", err)
	}
	return p
}

func (env *testEnv) createUser(t *testing.T, name, email string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        "Str0ngPassw0rd",
		PasswordConfirm: "Str0ngPassw0rd",
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
