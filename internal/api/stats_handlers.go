package api

import (
	"net/http"

	"github.com/avelar/studyflash/internal/models"
)

func (s *Server) handleTopicStats(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	stats, total, err := s.StatsService.TopicStats(r.Context(), limit, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if stats == nil {
		stats = []models.TopicStat{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topics": stats,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
