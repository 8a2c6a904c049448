// Package registry answers the read-only queries of the version service over a loaded
// version document: service health, application version and service compatibility.
//
// A Registry holds no mutable state; it is safe for concurrent use.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ubuntu/version-service/internal/constants"
	"github.com/ubuntu/version-service/internal/versiondata"
)

// ErrDataUnavailable is matched by errors reporting that a section of the document is absent.
var ErrDataUnavailable = errors.New("data unavailable")

var (
	errApplicationUnavailable   = unavailableError("Version data not available")
	errCompatibilityUnavailable = unavailableError("Compatibility data not available")
)

type unavailableError string

func (e unavailableError) Error() string { return string(e) }

func (e unavailableError) Is(target error) bool { return target == ErrDataUnavailable }

// timestampLayout is RFC 3339 in UTC with milliseconds.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Health is the liveness report of the service.
type Health struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	// VersionData is "loaded" or "missing".
	VersionData string `json:"versionData"`
}

// AppVersion describes the application release. Description is nil when not documented.
type AppVersion struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	ReleaseDate string  `json:"releaseDate"`
	Description *string `json:"description"`
}

// Status classifies a service version combination.
type Status string

const (
	// StatusTested is a combination known to work, or one not contradicting any dependency.
	StatusTested Status = "tested"
	// StatusCompatible is an untested combination when nothing was ever tested.
	StatusCompatible Status = "compatible"
	// StatusWarning is a combination contradicting at least one declared dependency.
	StatusWarning Status = "warning"
)

// Message returns the human readable explanation of the status.
func (s Status) Message() string {
	switch s {
	case StatusCompatible:
		return "Service versions appear compatible but untested"
	case StatusWarning:
		return "Service versions may have compatibility issues"
	default:
		return "Service versions have been tested and verified"
	}
}

// matchMessage is the message for an exact tested combination match.
const matchMessage = "This service combination has been tested and verified"

// Validation is the outcome of checking a service version combination.
type Validation struct {
	Valid   bool
	Status  Status
	Message string

	// Match is the tested combination equal to the request, if any.
	Match *versiondata.Combination
	// Warnings lists the dependency mismatches. It is only computed without a Match.
	Warnings []string
}

// Registry answers queries over a version document.
type Registry struct {
	doc *versiondata.Document
	now func() time.Time
}

type options struct {
	now func() time.Time
}

// Options represents an optional function to override Registry default values.
type Options func(*options)

// New returns a Registry over doc. doc may be nil, in which case the data is reported missing.
func New(doc *versiondata.Document, args ...Options) *Registry {
	opts := options{now: time.Now}
	for _, opt := range args {
		opt(&opts)
	}

	return &Registry{doc: doc, now: opts.now}
}

// Health reports the service as healthy along with whether version data is present.
func (r *Registry) Health() Health {
	data := "missing"
	if r.doc != nil {
		data = "loaded"
	}

	return Health{
		Status:      "healthy",
		Service:     constants.ServiceName,
		Timestamp:   r.now().UTC().Format(timestampLayout),
		VersionData: data,
	}
}

// AppVersion returns the application section of the document.
func (r *Registry) AppVersion() (AppVersion, error) {
	if r.doc == nil || r.doc.Application == nil {
		return AppVersion{}, errApplicationUnavailable
	}

	app := r.doc.Application
	v := AppVersion{
		Name:        app.Name,
		Version:     app.Version,
		ReleaseDate: app.ReleaseDate,
	}
	if app.Description != nil && *app.Description != "" {
		desc := *app.Description
		v.Description = &desc
	}
	return v, nil
}

// Validate checks a backend, frontend and scraper version combination.
//
// An exact tested combination wins. Otherwise, each declared dependency is compared
// literally, after removing a leading caret, with the version requested for that service.
func (r *Registry) Validate(backend, frontend, scraper string) (Validation, error) {
	if r.doc == nil || r.doc.Compatibility == nil {
		return Validation{}, errCompatibilityUnavailable
	}

	combinations := r.doc.Compatibility.TestedCombinations
	for i := range combinations {
		c := combinations[i]
		if c.Backend == backend && c.Frontend == frontend && c.Scraper == scraper {
			return Validation{
				Valid:   true,
				Status:  StatusTested,
				Message: matchMessage,
				Match:   &c,
			}, nil
		}
	}

	warnings := r.dependencyWarnings(backend, scraper)

	// A non-empty tested list without match and without warning falls through to "tested",
	// as the service always did.
	status := StatusTested
	switch {
	case len(warnings) > 0:
		status = StatusWarning
	case len(combinations) == 0:
		status = StatusCompatible
	}

	return Validation{
		Valid:    len(warnings) == 0,
		Status:   status,
		Message:  status.Message(),
		Warnings: warnings,
	}, nil
}

func (r *Registry) dependencyWarnings(backend, scraper string) []string {
	warnings := []string{}

	deps := r.doc.Dependencies
	if deps == nil {
		return warnings
	}

	if deps.Backend != nil && deps.Backend.Scraper != nil && *deps.Backend.Scraper != "" {
		want := *deps.Backend.Scraper
		if strings.TrimPrefix(want, "^") != scraper {
			warnings = append(warnings, fmt.Sprintf("Backend expects scraper %s, got %s", want, scraper))
		}
	}

	if deps.Frontend != nil && deps.Frontend.Backend != nil && *deps.Frontend.Backend != "" {
		want := *deps.Frontend.Backend
		if strings.TrimPrefix(want, "^") != backend {
			warnings = append(warnings, fmt.Sprintf("Frontend expects backend %s, got %s", want, backend))
		}
	}

	return warnings
}

// Raw returns the whole document as loaded, or nil when there is none. It must not be modified.
func (r *Registry) Raw() map[string]any {
	return r.doc.Raw()
}
