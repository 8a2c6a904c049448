// Package handlers provides the HTTP handlers of the version service API.
package handlers

import (
	"net/http"

	"github.com/ubuntu/version-service/internal/webservice/metrics"
)

// Service serves the version queries as JSON.
type Service struct {
	queries     Queries
	validations ValidationRecorder
}

// NewService returns the handlers answering from queries. validations may be nil.
func NewService(queries Queries, validations ValidationRecorder) *Service {
	return &Service{queries: queries, validations: validations}
}

type rootResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Root answers the liveness probe on the root path.
func (s *Service) Root(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)

	h := s.queries.Health()
	writeJSON(w, r, http.StatusOK, rootResponse{
		Status:    h.Status,
		Service:   h.Service,
		Timestamp: h.Timestamp,
	})
}

// Health reports liveness along with whether version data was loaded.
func (s *Service) Health(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)

	writeJSON(w, r, http.StatusOK, s.queries.Health())
}

// AppVersion returns the application release information.
func (s *Service) AppVersion(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)

	v, err := s.queries.AppVersion()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

type matchResponse struct {
	Valid    bool   `json:"valid"`
	Status   string `json:"status"`
	Verified *bool  `json:"verified,omitempty"`
	Message  string `json:"message"`
}

type assessmentResponse struct {
	Valid    bool     `json:"valid"`
	Status   string   `json:"status"`
	Warnings []string `json:"warnings"`
	Message  string   `json:"message"`
}

// ValidateVersions checks the backend, frontend and scraper versions given as query parameters.
// Missing parameters are empty versions.
func (s *Service) ValidateVersions(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)

	q := r.URL.Query()
	backend, frontend, scraper := q.Get("backend"), q.Get("frontend"), q.Get("scraper")

	v, err := s.queries.Validate(backend, frontend, scraper)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if s.validations != nil {
		s.validations.Record(string(v.Status))
	}

	if v.Match != nil {
		writeJSON(w, r, http.StatusOK, matchResponse{
			Valid:    v.Valid,
			Status:   string(v.Status),
			Verified: v.Match.Verified,
			Message:  v.Message,
		})
		return
	}

	warnings := v.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, r, http.StatusOK, assessmentResponse{
		Valid:    v.Valid,
		Status:   string(v.Status),
		Warnings: warnings,
		Message:  v.Message,
	})
}

// VersionInfo returns the version document as loaded, or null when there is none.
func (s *Service) VersionInfo(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)

	writeJSON(w, r, http.StatusOK, s.queries.Raw())
}
