package httpapi

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"exam-prep/internal/dataset"
	"exam-prep/internal/quiz"
	"exam-prep/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true})
}

func (a *API) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, subjectsResponse{Subjects: a.subjects})
}

// HandleQuestions starts a session over the selected subjects and returns
// its questions. Size 0 means every matching question.
func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	size, err := parseIntParam(r, "size", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	shuffle := parseBoolParam(r, "shuffle", true)

	selected := make([]string, 0)
	for _, subject := range r.URL.Query()["subject"] {
		if subject = strings.TrimSpace(subject); subject != "" {
			selected = append(selected, subject)
		}
	}

	pool := quiz.NormalizeAll(dataset.FilterBySubjects(a.questions, selected))
	session, err := quiz.Start(pool, quiz.StartOptions{Size: size, KeepOrder: !shuffle, Rand: a.rand})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	a.logger.Debug("session started",
		zap.String("session_id", session.ID),
		zap.Int("questions", len(session.Questions)),
		zap.Strings("subjects", selected),
	)
	writeJSON(w, http.StatusOK, questionsResponse{
		SessionID:     session.ID,
		QuestionCount: len(session.Questions),
		Questions:     session.Questions,
	})
}

func (a *API) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user, owner, err := historyOwner(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log, err := a.history.Load(r.Context(), owner)
	if err != nil {
		a.logger.Error("load history failed", zap.String("user", user), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{User: user, History: log})
}

// HandleAppendHistory stores an entry the caller already graded.
func (a *API) HandleAppendHistory(w http.ResponseWriter, r *http.Request) {
	user, owner, err := historyOwner(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	defer r.Body.Close()

	var request historyEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	questionID := strings.TrimSpace(request.QuestionID)
	if questionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "questionId is required"})
		return
	}
	if request.Correct == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "correct is required"})
		return
	}

	entry := quiz.HistoryEntry{
		QuestionID: questionID,
		Subject:    strings.TrimSpace(request.Subject),
		Correct:    *request.Correct,
		Date:       request.Date.UTC(),
	}
	if request.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	if err := a.history.Append(r.Context(), owner, entry); err != nil {
		a.logger.Error("append history failed", zap.String("user", user), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	a.metrics.RecordAnswer(entry.Correct)

	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) HandleResetHistory(w http.ResponseWriter, r *http.Request) {
	user, owner, err := historyOwner(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := a.history.Reset(r.Context(), owner); err != nil {
		a.logger.Error("reset history failed", zap.String("user", user), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	a.logger.Info("history reset", zap.String("user", user))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	user, owner, err := historyOwner(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	stats, err := a.history.Stats(r.Context(), owner)
	if err != nil {
		a.logger.Error("load stats failed", zap.String("user", user), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{User: user, Stats: stats, Accuracy: stats.Accuracy()})
}

func (a *API) HandleStatsWorkbook(w http.ResponseWriter, r *http.Request) {
	user, owner, err := historyOwner(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log, err := a.history.Load(r.Context(), owner)
	if err != nil {
		a.logger.Error("load history failed", zap.String("user", user), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	data, err := report.StatsWorkbook(quiz.Aggregate(log), log)
	if err != nil {
		a.logger.Error("render workbook failed", zap.String("user", user), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": "stats-" + user + ".xlsx",
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
