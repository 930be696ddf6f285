package httpapi

import (
	"go.uber.org/zap"

	"exam-prep/internal/dataset"
	"exam-prep/internal/logging"
	"exam-prep/internal/quiz"
)

type Options struct {
	Questions []dataset.RawQuestion
	History   *quiz.History
	Metrics   *Metrics
	Logger    *zap.Logger
	// Rand is shared by all requests and must be safe for concurrent use.
	// Nil seeds a fresh source per session.
	Rand quiz.Shuffler
}

type API struct {
	questions []dataset.RawQuestion
	subjects  []dataset.Subject
	history   *quiz.History
	metrics   *Metrics
	logger    *zap.Logger
	rand      quiz.Shuffler
}

func NewAPI(opts Options) *API {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &API{
		questions: opts.Questions,
		subjects:  dataset.Subjects(opts.Questions),
		history:   opts.History,
		metrics:   metrics,
		logger:    logging.OrNop(opts.Logger),
		rand:      opts.Rand,
	}
}
