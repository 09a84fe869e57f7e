package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"kokocares/keywords/pkg/keywords"
	"kokocares/keywords/pkg/rules/cache"
	"kokocares/keywords/pkg/server/middleware"
)

// MatchRequest is the /match request body.
type MatchRequest struct {
	Text    *string `json:"text"`
	Filter  string  `json:"filter"`
	Version string  `json:"version"`
}

// MatchResponse is the /match success body.
type MatchResponse struct {
	Matched bool `json:"matched"`
}

// RulesStatusResponse is the /v1/rules body.
type RulesStatusResponse struct {
	Fresh   bool                `json:"fresh"`
	Entries []cache.EntryStatus `json:"entries"`
}

// RefreshResponse is the /v1/rules/refresh success body.
type RefreshResponse struct {
	Key      string `json:"key"`
	Version  string `json:"version,omitempty"`
	Patterns int    `json:"patterns"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Text == nil {
		middleware.WriteError(w, http.StatusBadRequest, "text param required")
		return
	}

	matched, err := s.client.Match(r.Context(), *req.Text, req.Filter, req.Version)
	if err != nil {
		writeCodeError(w, keywords.CodeOf(err))
		return
	}

	middleware.WriteJSON(w, http.StatusOK, MatchResponse{Matched: matched})
}

func (s *Server) handleRulesStatus(w http.ResponseWriter, r *http.Request) {
	entries := s.client.Status()
	if entries == nil {
		entries = []cache.EntryStatus{}
	}
	middleware.WriteJSON(w, http.StatusOK, RulesStatusResponse{
		Fresh:   s.client.Fresh(),
		Entries: entries,
	})
}

func (s *Server) handleRulesRefresh(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")

	rs, err := s.client.Refresh(r.Context(), version)
	if err != nil {
		s.logger.WarnContext(r.Context(), "manual refresh failed", "version", cache.KeyFor(version), "error", err)
		writeCodeError(w, keywords.CodeOf(err))
		return
	}

	s.logger.InfoContext(r.Context(), "rules refreshed", "version", cache.KeyFor(version), "patterns", rs.Len())
	middleware.WriteJSON(w, http.StatusOK, RefreshResponse{
		Key:      cache.KeyFor(version),
		Version:  rs.Version(),
		Patterns: rs.Len(),
	})
}

// writeCodeError answers with the code's description and a status for it.
func writeCodeError(w http.ResponseWriter, code keywords.Code) {
	n := int(code)
	middleware.WriteJSON(w, statusFor(code), middleware.ErrorBody{Error: code.Description(), Code: &n})
}

func statusFor(code keywords.Code) int {
	switch code {
	case keywords.CodeInvalidFilter:
		return http.StatusBadRequest
	case keywords.CodeRefreshUnavailable:
		return http.StatusServiceUnavailable
	case keywords.CodeInvalidCredentials, keywords.CodeInvalidURL, keywords.CodeParseError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
