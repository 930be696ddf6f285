package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(opts Options) http.Handler {
	api := NewAPI(opts)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(api.observe)

	r.Get("/healthz", api.HandleHealth)
	r.Get("/subjects", api.HandleSubjects)
	r.Get("/questions", api.HandleQuestions)
	r.Method(http.MethodGet, "/metrics", api.metrics.Handler())

	r.Route("/users/{user}", func(user chi.Router) {
		user.Get("/history", api.HandleHistory)
		user.Post("/history", api.HandleAppendHistory)
		user.Delete("/history", api.HandleResetHistory)
		user.Get("/stats", api.HandleStats)
		user.Get("/stats.xlsx", api.HandleStatsWorkbook)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return r
}
