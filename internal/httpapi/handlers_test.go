package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"exam-prep/internal/dataset"
	"exam-prep/internal/quiz"
	"exam-prep/internal/store"
)

type keepOrder struct{}

func (keepOrder) Shuffle(int, func(i, j int)) {}

type brokenStore struct {
	store.Store
}

func (brokenStore) Get(context.Context, string) (string, error) {
	return "", errors.New("disk failure")
}

func sampleQuestions() []dataset.RawQuestion {
	return []dataset.RawQuestion{
		{ID: "1", Text: "Q1", Subject: "Civil", Alternatives: "(a) foo (b) bar", Answer: "b "},
		{ID: "2", Text: "Q2", Subject: "Penal", Alternatives: `{"A":"x","B":"y"}`, Answer: "A"},
		{ID: "3", Text: "Q3", Subject: "Civil", Alternatives: "a) um\nb) dois", Answer: "a"},
	}
}

func newTestServer(t *testing.T) (http.Handler, *quiz.History) {
	t.Helper()

	history := quiz.NewHistory(store.NewMemoryStore(), nil)
	router := NewRouter(Options{
		Questions: sampleQuestions(),
		History:   history,
		Rand:      keepOrder{},
	})
	return router, history
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestParseIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/questions", nil)
	if got, err := parseIntParam(req, "size", 10); err != nil || got != 10 {
		t.Fatalf("default parseIntParam = (%d, %v), want (10, nil)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/questions?size=25", nil)
	if got, err := parseIntParam(req, "size", 10); err != nil || got != 25 {
		t.Fatalf("valid parseIntParam = (%d, %v), want (25, nil)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/questions?size=0", nil)
	if _, err := parseIntParam(req, "size", 10); err == nil {
		t.Fatalf("expected error for non-positive size")
	}
}

func TestParseBoolParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/questions?shuffle=yes", nil)
	if !parseBoolParam(req, "shuffle", false) {
		t.Fatalf("expected true for shuffle=yes")
	}

	req = httptest.NewRequest(http.MethodGet, "/questions?shuffle=false", nil)
	if parseBoolParam(req, "shuffle", true) {
		t.Fatalf("expected false for shuffle=false")
	}

	req = httptest.NewRequest(http.MethodGet, "/questions", nil)
	if !parseBoolParam(req, "shuffle", true) {
		t.Fatalf("expected default when shuffle is absent")
	}
}

func TestHealthAndSubjects(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/subjects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload subjectsResponse
	decode(t, rec, &payload)
	assert.Equal(t, []dataset.Subject{
		{Name: "Civil", QuestionCount: 2},
		{Name: "Penal", QuestionCount: 1},
	}, payload.Subjects)
}

func TestQuestionsNormalizesAndFilters(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/questions?subject=Civil&shuffle=false", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload questionsResponse
	decode(t, rec, &payload)
	assert.NotEmpty(t, payload.SessionID)
	require.Equal(t, 2, payload.QuestionCount)
	assert.Equal(t, "1", payload.Questions[0].ID)
	assert.Equal(t, "B", payload.Questions[0].CorrectLetter)
	assert.Equal(t, []quiz.Alternative{{ID: "A", Text: "foo"}, {ID: "B", Text: "bar"}}, payload.Questions[0].Alternatives)
	assert.Equal(t, "3", payload.Questions[1].ID)
}

func TestQuestionsSizeIsACeiling(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/questions?size=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload questionsResponse
	decode(t, rec, &payload)
	assert.Equal(t, 2, payload.QuestionCount)

	rec = do(t, router, http.MethodGet, "/questions?size=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &payload)
	assert.Equal(t, 3, payload.QuestionCount)
}

func TestQuestionsErrors(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/questions?size=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"size must be a positive integer"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/questions?subject=Tributario", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"no questions available"}`, rec.Body.String())
}

func TestHistoryLifecycle(t *testing.T) {
	router, history := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/users/7/history", `{"questionId":"1","subject":"Civil","correct":true,"date":"2024-05-01T10:00:00-03:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created quiz.HistoryEntry
	decode(t, rec, &created)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), created.Date)

	rec = do(t, router, http.MethodPost, "/users/7/history", `{"questionId":"2","subject":"Penal","correct":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/7/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed historyResponse
	decode(t, rec, &listed)
	assert.Equal(t, "7", listed.User)
	require.Len(t, listed.History, 2)
	assert.False(t, listed.History[1].Date.IsZero())

	rec = do(t, router, http.MethodGet, "/users/7/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats statsResponse
	decode(t, rec, &stats)
	assert.Equal(t, 2, stats.TotalQuestions)
	assert.Equal(t, 1, stats.CorrectAnswers)
	assert.Equal(t, 50.0, stats.Accuracy)
	assert.Len(t, stats.SubjectStats, 2)

	anonymous, err := history.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, anonymous)

	rec = do(t, router, http.MethodDelete, "/users/7/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	log, err := history.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestAnonymousUserUsesGuestLog(t *testing.T) {
	router, history := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/users/anonymous/history", `{"questionId":"1","correct":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	log, err := history.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestAppendHistoryValidation(t *testing.T) {
	router, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "invalid json", body: `{`, want: "invalid JSON body"},
		{name: "missing question", body: `{"correct":true}`, want: "questionId is required"},
		{name: "missing correct", body: `{"questionId":"1"}`, want: "correct is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/users/7/history", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var payload errorResponse
			decode(t, rec, &payload)
			assert.Equal(t, tc.want, payload.Error)
		})
	}
}

func TestStoreFailureIs500(t *testing.T) {
	router := NewRouter(Options{
		Questions: sampleQuestions(),
		History:   quiz.NewHistory(brokenStore{}, nil),
	})

	rec := do(t, router, http.MethodGet, "/users/7/stats", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"request failed"}`, rec.Body.String())
}

func TestStatsWorkbookDownload(t *testing.T) {
	router, history := newTestServer(t)
	require.NoError(t, history.Append(context.Background(), "7", quiz.HistoryEntry{QuestionID: "1", Subject: "Civil", Correct: true}))

	rec := do(t, router, http.MethodGet, "/users/7/stats.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "stats-7.xlsx", params["filename"])

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Subjects")
	require.NoError(t, err)
	assert.Equal(t, []string{"Civil", "1", "1", "100"}, rows[1])
}

func TestStatsWorkbookFilenameIsQuoted(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/users/ana%22%20x/stats.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)

	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, `stats-ana" x.xlsx`, params["filename"])
}
