package api

import (
	"net/http"

	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/report"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model":      s.orchestrator.Model(),
		"stats":      s.stats.Snapshot(),
		"rate_limit": s.orchestrator.RateLimit(),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"schema":      report.JSONSchema(s.cfg.StrictFields),
		"field_guide": extract.FieldGuide,
		"columns":     report.Columns(),
	})
}
