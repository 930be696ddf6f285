package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"exam-prep/internal/quiz"
)

const anonymousUser = "anonymous"

var errMissingUser = errors.New("user is required")

// historyOwner maps the {user} path segment to a history owner id. The
// anonymous user shares the guest log.
func historyOwner(r *http.Request) (string, string, error) {
	user := strings.TrimSpace(chi.URLParam(r, "user"))
	if user == "" {
		return "", "", errMissingUser
	}
	if strings.EqualFold(user, anonymousUser) {
		return anonymousUser, "", nil
	}
	return user, user, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNoQuestions):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, errMissingUser):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// parseBoolParam falls back to defaultValue when the parameter is absent.
func parseBoolParam(r *http.Request, key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
