package versiondata_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubuntu/version-service/internal/versiondata"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data string

		wantApp    *versiondata.Application
		wantCompat *versiondata.Compatibility
		wantDeps   *versiondata.Dependencies
		wantErr    bool
	}{
		"Empty object has no sections": {data: `{}`},
		"Application only": {
			data:    `{"application": {"name": "app", "version": "1.0", "releaseDate": "2026-01-01"}}`,
			wantApp: &versiondata.Application{Name: "app", Version: "1.0", ReleaseDate: "2026-01-01"},
		},
		"Application with description": {
			data: `{"application": {"name": "app", "version": "1.0", "releaseDate": "2026-01-01", "description": "desc"}}`,
			wantApp: &versiondata.Application{Name: "app", Version: "1.0", ReleaseDate: "2026-01-01",
				Description: ptr("desc")},
		},
		"Explicit null section is absent": {data: `{"application": null, "compatibility": null}`},
		"Compatibility without combinations": {
			data:       `{"compatibility": {}}`,
			wantCompat: &versiondata.Compatibility{},
		},
		"Combinations keep order and missing verified": {
			data: `{"compatibility": {"testedCombinations": [
				{"backend": "1", "frontend": "2", "scraper": "3", "verified": true},
				{"backend": "4", "frontend": "5", "scraper": "6"}
			]}}`,
			wantCompat: &versiondata.Compatibility{TestedCombinations: []versiondata.Combination{
				{Backend: "1", Frontend: "2", Scraper: "3", Verified: ptr(true)},
				{Backend: "4", Frontend: "5", Scraper: "6"},
			}},
		},
		"Null values inside a combination are absent": {
			data: `{"compatibility": {"testedCombinations": [{"backend": "1", "frontend": null, "scraper": "3", "verified": null}]}}`,
			wantCompat: &versiondata.Compatibility{TestedCombinations: []versiondata.Combination{
				{Backend: "1", Scraper: "3"},
			}},
		},
		"Partial dependencies": {
			data:     `{"dependencies": {"backend": {"scraper": "^3.0"}}}`,
			wantDeps: &versiondata.Dependencies{Backend: &versiondata.BackendDependencies{Scraper: ptr("^3.0")}},
		},
		"Both dependencies": {
			data: `{"dependencies": {"backend": {"scraper": "^3.0"}, "frontend": {"backend": "1.0"}}}`,
			wantDeps: &versiondata.Dependencies{
				Backend:  &versiondata.BackendDependencies{Scraper: ptr("^3.0")},
				Frontend: &versiondata.FrontendDependencies{Backend: ptr("1.0")},
			},
		},

		// Errors
		"Invalid JSON errors":              {data: `{"application": `, wantErr: true},
		"Top level null errors":            {data: `null`, wantErr: true},
		"Top level array errors":           {data: `[]`, wantErr: true},
		"Top level string errors":          {data: `"1.0"`, wantErr: true},
		"Section of the wrong type errors": {data: `{"application": "1.0"}`, wantErr: true},
		"Numbers are not coerced to strings errors": {
			data:    `{"compatibility": {"testedCombinations": [{"backend": 1, "frontend": 2, "scraper": 3}]}}`,
			wantErr: true,
		},
		"String verified is not coerced to a boolean errors": {
			data:    `{"compatibility": {"testedCombinations": [{"backend": "1", "frontend": "2", "scraper": "3", "verified": "false"}]}}`,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := versiondata.Parse([]byte(tc.data))
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, doc)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tc.wantApp, doc.Application, "unexpected application section")
			assert.Equal(t, tc.wantCompat, doc.Compatibility, "unexpected compatibility section")
			assert.Equal(t, tc.wantDeps, doc.Dependencies, "unexpected dependencies section")
		})
	}
}

func TestRawIsTheDecodedDocument(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(filepath.Join("testdata", "version.json"))
	require.NoError(t, err, "Setup: could not read fixture")

	doc, err := versiondata.Parse(data)
	require.NoError(t, err)

	var want map[string]any
	require.NoError(t, json.Unmarshal(data, &want), "Setup: could not decode fixture")
	assert.Equal(t, want, doc.Raw(), "raw document should keep every key, known or not")
}

func TestRawOfNilDocument(t *testing.T) {
	t.Parallel()

	var doc *versiondata.Document
	assert.Nil(t, doc.Raw())
}

func ptr[T any](v T) *T {
	return &v
}
