package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// ErrorResponse is the wire shape of every API error.
type ErrorResponse struct {
	Error string `json:"error"`

	// Model and Available accompany the model_missing error only.
	Model     string   `json:"model,omitempty"`
	Available []string `json:"available,omitempty"`
}

// SearchResponse wraps a bare retrieval result.
type SearchResponse struct {
	Refs []domain.Reference `json:"refs"`
}

// ReindexResponse reports a completed rebuild.
type ReindexResponse struct {
	OK        bool   `json:"ok"`
	IndexedAt string `json:"indexed_at"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
}

// WarmupResponse reports a successful warmup round trip.
type WarmupResponse struct {
	OK        bool  `json:"ok"`
	LatencyMS int64 `json:"latency_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_message")
		return
	}

	resp, err := s.chatService.Query(r.Context(), GetScope(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	refs, err := s.chatService.Search(r.Context(), GetScope(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if refs == nil {
		refs = []domain.Reference{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Refs: refs})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.chatService.Status(r.Context(), GetScope(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	result, err := s.indexService.Rebuild(r.Context(), GetScope(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReindexResponse{
		OK:        true,
		IndexedAt: result.IndexedAt.Format(time.RFC3339),
		Documents: result.Documents,
		Chunks:    result.Chunks,
	})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	text, err := s.fileService.Fetch(r.Context(), GetScope(r.Context()), r.URL.Query().Get("path"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleWarmup(w http.ResponseWriter, r *http.Request) {
	latency, err := s.chatService.Warmup(r.Context(), GetScope(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WarmupResponse{OK: true, LatencyMS: latency})
}

// writeDomainError maps a domain error to its wire code and status.
func writeDomainError(w http.ResponseWriter, err error) {
	var missing *domain.ModelMissingError
	if errors.As(err, &missing) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "model_missing",
			Model:     missing.Model,
			Available: missing.Available,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidMessage):
		writeError(w, http.StatusBadRequest, "invalid_message")
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query")
	case errors.Is(err, domain.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, "invalid_path")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrChatDisabled):
		writeError(w, http.StatusForbidden, "axchat_disabled")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, domain.ErrGeneratorOffline):
		writeError(w, http.StatusServiceUnavailable, "ollama_offline")
	case errors.Is(err, domain.ErrModelOffline):
		writeError(w, http.StatusServiceUnavailable, "model_offline")
	case errors.Is(err, domain.ErrModelWarmupFailed):
		writeError(w, http.StatusServiceUnavailable, "model_warmup_failed")
	case errors.Is(err, domain.ErrReindexFailed):
		writeError(w, http.StatusInternalServerError, "reindex_failed")
	case errors.Is(err, domain.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, "index_unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, ErrorResponse{Error: code})
}
