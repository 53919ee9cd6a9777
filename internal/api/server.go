// Package api exposes the JSON HTTP surface: session lifecycle, resume,
// document upload and topic statistics.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelar/studyflash/internal/services"
)

type Server struct {
	DB              *sql.DB
	SessionService  services.SessionService
	DocumentService services.DocumentService
	StatsService    services.StatsService
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/", s.handleListSessions)
			r.Get("/{id}", s.handleGetSession)
			r.Get("/{id}/resume", s.handleResumeSession)
			r.Post("/{id}/flashcards/{index}/study", s.handleStudyFlashcard)
			r.Post("/{id}/questions/{index}/answer", s.handleAnswerQuestion)
			r.Post("/{id}/prerequisites", s.handleGeneratePrerequisites)
			r.Post("/{id}/prerequisites/results", s.handleRecordPrerequisiteResults)
			r.Post("/{id}/complete", s.handleCompleteSession)
			r.Post("/{id}/abandon", s.handleAbandonSession)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleAddDocument)
			r.Get("/", s.handleListDocuments)
			r.Get("/{id}", s.handleGetDocument)
		})

		r.Get("/stats/topics", s.handleTopicStats)
	})

	return r
}
