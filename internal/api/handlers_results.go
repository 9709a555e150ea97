package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/susdigest/internal/checks"
	"github.com/dgallion1/susdigest/internal/export"
	"github.com/dgallion1/susdigest/internal/store"
)

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	entries, err := s.orchestrator.Store().List(r.Context())
	if err != nil {
		jsonError(w, "failed to list results: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": entries})
}

// handleGetResult returns a stored entry with its plausibility checks.
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	e, err := s.orchestrator.Store().Get(r.Context(), chi.URLParam(r, "subject"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "result not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to get result: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": e,
		"checks": checks.Run(e.Record, time.Now().Year()),
	})
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	err := s.orchestrator.Store().Delete(r.Context(), subject)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "result not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete result: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("result deleted", "subject", subject, "caller", Caller(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": subject})
}

// handleExportResults writes every stored record as one comparison table.
func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.CSV)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := s.orchestrator.Store().List(r.Context())
	if err != nil {
		jsonError(w, "failed to list results: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, store.Records(entries)); err != nil {
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="comparison.%s"`, format))
	_, _ = w.Write(buf.Bytes())
}
