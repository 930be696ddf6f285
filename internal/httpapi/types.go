package httpapi

import (
	"time"

	"exam-prep/internal/dataset"
	"exam-prep/internal/quiz"
)

type healthResponse struct {
	OK bool `json:"ok"`
}

type subjectsResponse struct {
	Subjects []dataset.Subject `json:"subjects"`
}

// questionsResponse carries the answer key: grading happens in the client.
type questionsResponse struct {
	SessionID     string          `json:"session_id"`
	QuestionCount int             `json:"question_count"`
	Questions     []quiz.Question `json:"questions"`
}

type historyResponse struct {
	User    string              `json:"user"`
	History []quiz.HistoryEntry `json:"history"`
}

type historyEntryRequest struct {
	QuestionID string    `json:"questionId"`
	Subject    string    `json:"subject"`
	Correct    *bool     `json:"correct"`
	Date       time.Time `json:"date"`
}

type statsResponse struct {
	User string `json:"user"`
	quiz.Stats
	Accuracy float64 `json:"accuracy"`
}

type errorResponse struct {
	Error string `json:"error"`
}
