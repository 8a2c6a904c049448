package handlers

import "github.com/ubuntu/version-service/internal/registry"

// Queries are the read-only version queries served by the API.
type Queries interface {
	Health() registry.Health
	AppVersion() (registry.AppVersion, error)
	Validate(backend, frontend, scraper string) (registry.Validation, error)
	Raw() map[string]any
}

// ValidationRecorder is notified of the status of every successful validation.
type ValidationRecorder interface {
	Record(status string)
}
