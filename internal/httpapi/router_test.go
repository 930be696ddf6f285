package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownRouteIsJSON404(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/quizzes", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestWrongMethodIs405(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodPut, "/users/7/history", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
}

func TestMetricsCountRequestsAndAnswers(t *testing.T) {
	router, _ := newTestServer(t)

	do(t, router, http.MethodGet, "/healthz", "")
	do(t, router, http.MethodPost, "/users/7/history", `{"questionId":"1","correct":true}`)
	do(t, router, http.MethodPost, "/users/7/history", `{"questionId":"2","correct":false}`)

	rec := do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `exam_prep_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, body, `exam_prep_http_requests_total{method="POST",route="/users/{user}/history",status="201"} 2`)
	assert.Contains(t, body, `exam_prep_answers_recorded_total{result="correct"} 1`)
	assert.Contains(t, body, `exam_prep_answers_recorded_total{result="incorrect"} 1`)
}
