package versiondata_test

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubuntu/version-service/internal/testutils"
	"github.com/ubuntu/version-service/internal/versiondata"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in string

		want    versiondata.Mode
		wantErr bool
	}{
		"Empty is production":         {in: "", want: versiondata.ModeProduction},
		"Production":                  {in: "production", want: versiondata.ModeProduction},
		"Short production":            {in: "prod", want: versiondata.ModeProduction},
		"Test":                        {in: "test", want: versiondata.ModeTest},
		"Case and spaces are ignored": {in: " TEST ", want: versiondata.ModeTest},

		"Unknown mode errors": {in: "staging", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := versiondata.ParseMode(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "production", versiondata.ModeProduction.String())
	assert.Equal(t, "test", versiondata.ModeTest.String())
	assert.Equal(t, "Mode(42)", versiondata.Mode(42).String())
}

//nolint:tparallel // Logging assertions replace the default logger.
func TestLoad(t *testing.T) {
	tests := map[string]struct {
		content *string
		mode    versiondata.Mode

		wantErr      bool
		wantFatal    bool
		wantNotExist bool
		wantLogged   string
		wantLevel    slog.Level
	}{
		"Valid document in production is logged": {
			content:    ptr(`{"application": {"name": "app", "version": "1.0", "releaseDate": "2026-01-01"}}`),
			wantLogged: "Loaded version data",
			wantLevel:  slog.LevelInfo,
		},
		"Valid document in test mode is silent": {
			content: ptr(`{"application": {"name": "app", "version": "1.0", "releaseDate": "2026-01-01"}}`),
			mode:    versiondata.ModeTest,
		},
		"Document without application loads": {
			content:    ptr(`{}`),
			wantLogged: "Loaded version data",
			wantLevel:  slog.LevelInfo,
		},

		// Errors
		"Missing file in production is fatal": {
			wantErr:      true,
			wantFatal:    true,
			wantNotExist: true,
			wantLogged:   "Failed to load version document",
			wantLevel:    slog.LevelError,
		},
		"Missing file in test mode is propagated": {
			mode:         versiondata.ModeTest,
			wantErr:      true,
			wantNotExist: true,
		},
		"Unparsable file in production is fatal": {
			content:    ptr(`{not json`),
			wantErr:    true,
			wantFatal:  true,
			wantLogged: "Failed to load version document",
			wantLevel:  slog.LevelError,
		},
		"Unparsable file in test mode is propagated": {
			content: ptr(`{not json`),
			mode:    versiondata.ModeTest,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			logs := captureLogs(t)

			path := filepath.Join(t.TempDir(), "version.json")
			if tc.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tc.content), 0600), "Setup: could not write document")
			}

			doc, err := versiondata.Load(path, tc.mode)
			if tc.wantLogged != "" {
				assert.True(t, logs.HasMessage(tc.wantLevel, tc.wantLogged), "expected %q at level %v", tc.wantLogged, tc.wantLevel)
				_, ok := logs.Attr(tc.wantLogged, "path")
				assert.True(t, ok, "log should name the document")
			} else {
				assert.Empty(t, logs.Records(), "nothing should be logged")
			}

			if !tc.wantErr {
				require.NoError(t, err)
				require.NotNil(t, doc)
				return
			}

			require.Error(t, err)
			assert.Nil(t, doc)

			var lerr *versiondata.LoadError
			require.ErrorAs(t, err, &lerr, "load failures should be LoadError")
			assert.Equal(t, path, lerr.Path, "LoadError should name the document")
			assert.Equal(t, tc.wantFatal, lerr.Fatal, "unexpected fatality")
			assert.Equal(t, tc.wantNotExist, errors.Is(err, fs.ErrNotExist), "LoadError should wrap the cause")
		})
	}
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	doc, err := versiondata.Load(filepath.Join("testdata", "version.json"), versiondata.ModeTest)
	require.NoError(t, err)

	require.NotNil(t, doc.Application)
	assert.Equal(t, "Price Tracker", doc.Application.Name)
	require.NotNil(t, doc.Compatibility)
	assert.Len(t, doc.Compatibility.TestedCombinations, 2)
	require.NotNil(t, doc.Dependencies)
	require.NotNil(t, doc.Dependencies.Frontend)
	assert.Equal(t, "^2.1.0", *doc.Dependencies.Frontend.Backend)
	assert.Contains(t, doc.Raw(), "build", "unknown sections are kept in the raw document")
}

// captureLogs records every message of the default logger until the test ends.
func captureLogs(t *testing.T) *testutils.RecordingHandler {
	t.Helper()

	orig := slog.Default()
	h := testutils.NewRecordingHandler()
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(orig) })

	return h
}
