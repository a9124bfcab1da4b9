package api

import (
	"net/http"
)

func (s *Server) handleExtractStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"docx":        s.orchestrator.Stats().Snapshot(),
		"cache":       s.orchestrator.CacheStats(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
