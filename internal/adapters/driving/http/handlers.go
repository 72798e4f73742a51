package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the clip store is reachable
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.HealthCheck(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Search endpoints

type searchRequest struct {
	Query        string            `json:"query"`
	Mode         domain.SearchMode `json:"mode,omitempty"`
	CameraFilter string            `json:"camera_filter,omitempty"`
}

// handleSearch runs a natural-language clip search.
// The response is a domain.SearchResult; results is never null.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	opts := domain.SearchOptions{
		Mode:         req.Mode,
		CameraFilter: req.CameraFilter,
	}

	result, err := s.searchService.Search(r.Context(), req.Query, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrStoreFailure):
			s.logger.Error("search failed", "query", req.Query, "error", err)
			writeError(w, http.StatusBadGateway, "clip store unavailable")
		default:
			s.logger.Error("search failed", "query", req.Query, "error", err)
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	h := w.Header()
	h.Set(headerSearchTier, string(result.Tier))
	h.Set(headerSearchMode, string(result.Mode))
	h.Set(headerResultCount, strconv.Itoa(result.TotalCount))
	writeJSON(w, http.StatusOK, result)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
