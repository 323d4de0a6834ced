package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flashcards/internal/app"
	"github.com/jsamuelsen/flashcards/internal/mocks"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type apiFixture struct {
	router *gin.Engine
	store  *mocks.ContentStore
	study  *app.StudyService
}

// newAPI wires every handler over real services backed by a mocked store.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()

	store := mocks.NewContentStore(t)
	cfg := &app.ServiceConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return testNow },
	}

	words := app.NewWordService(store, store, store, cfg)
	quizzes := app.NewQuizService(store, store, cfg)
	study := app.NewStudyService(store, store, quizzes, app.StudyConfig{}, cfg)

	router := gin.New()
	api := router.Group("/api/v1")
	NewWordHandler(words).RegisterWordRoutes(api)
	NewQuizHandler(quizzes).RegisterQuizRoutes(api)
	NewSessionHandler(study).RegisterSessionRoutes(api)

	return &apiFixture{router: router, store: store, study: study}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())

	return resp.Error.Code
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

