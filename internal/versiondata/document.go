// Package versiondata models the version document served by the service.
//
// The document is read once from disk and never modified afterwards. It is kept both as the
// raw decoded JSON object, returned verbatim for diagnostics, and as a typed view used to answer
// queries. Every section is optional: an absent section is a nil pointer.
package versiondata

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"
)

// Document is the version and compatibility metadata of the application.
type Document struct {
	Application   *Application   `mapstructure:"application"`
	Compatibility *Compatibility `mapstructure:"compatibility"`
	Dependencies  *Dependencies  `mapstructure:"dependencies"`

	raw map[string]any
}

// Application identifies the application and its current release.
type Application struct {
	Name        string  `mapstructure:"name"`
	Version     string  `mapstructure:"version"`
	ReleaseDate string  `mapstructure:"releaseDate"`
	Description *string `mapstructure:"description"`
}

// Compatibility lists the service version combinations known to work together.
type Compatibility struct {
	TestedCombinations []Combination `mapstructure:"testedCombinations"`
}

// Combination is a backend, frontend and scraper version triple exercised together.
// Verified is nil when the document does not say.
type Combination struct {
	Backend  string `mapstructure:"backend"`
	Frontend string `mapstructure:"frontend"`
	Scraper  string `mapstructure:"scraper"`
	Verified *bool  `mapstructure:"verified"`
}

// Dependencies holds the version each service declares for the services it talks to.
type Dependencies struct {
	Backend  *BackendDependencies  `mapstructure:"backend"`
	Frontend *FrontendDependencies `mapstructure:"frontend"`
}

// BackendDependencies are the versions required by the backend.
type BackendDependencies struct {
	Scraper *string `mapstructure:"scraper"`
}

// FrontendDependencies are the versions required by the frontend.
type FrontendDependencies struct {
	Backend *string `mapstructure:"backend"`
}

// Parse decodes a version document. The top-level value must be a JSON object.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("document is not valid JSON: %w", err)
	}
	if raw == nil {
		return nil, errors.New("document must be a JSON object")
	}

	doc := &Document{raw: raw}
	// Values of the wrong JSON type are rejected rather than coerced. Nulls decode to zero values.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: doc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %v", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Join(errors.New("document does not match the expected structure"), err)
	}

	return doc, nil
}

// Raw returns the document as it was decoded from disk. It must not be modified.
// A nil document returns nil.
func (d *Document) Raw() map[string]any {
	if d == nil {
		return nil
	}
	return d.raw
}

// LogValue implements slog.LogValuer.
func (a *Application) LogValue() slog.Value {
	if a == nil {
		return slog.StringValue("<missing>")
	}
	return slog.GroupValue(
		slog.String("name", a.Name),
		slog.String("version", a.Version),
		slog.String("releaseDate", a.ReleaseDate),
	)
}
