package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubuntu/version-service/internal/cli"
	"github.com/ubuntu/version-service/internal/constants"
)

// hacky way to allow us to reset the default logger.
var defaultLogger = *slog.Default()

func TestSetVerbosity(t *testing.T) {
	tests := map[string][]int{
		"none":            {0},
		"info":            {1},
		"debug":           {2},
		"info none":       {1, 0},
		"info debug":      {1, 2},
		"info debug none": {1, 2, 0},
		"many v is debug": {5},
	}

	for name, pattern := range tests {
		t.Run(name, func(t *testing.T) {
			slog.SetDefault(&defaultLogger)

			for _, p := range pattern {
				cli.SetVerbosity(p)

				want := slog.LevelDebug
				switch p {
				case 0:
					want = constants.DefaultLogLevel
				case 1:
					want = slog.LevelInfo
				}
				assert.True(t, slog.Default().Enabled(context.Background(), want), "level %v should be enabled", want)
				assert.False(t, slog.Default().Enabled(context.Background(), want-1), "level below %v should be disabled", want)
			}
		})
	}
}

func TestSetSlog(t *testing.T) {
	tests := map[string]struct {
		level   int
		jsonLog bool
	}{
		"info":       {level: 1},
		"none":       {level: 0},
		"info json":  {level: 1, jsonLog: true},
		"debug json": {level: 2, jsonLog: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			slog.SetDefault(&defaultLogger)
			t.Cleanup(func() { slog.SetDefault(&defaultLogger) })

			cli.SetSlog(tc.level, tc.jsonLog)

			_, isJSON := slog.Default().Handler().(*slog.JSONHandler)
			assert.Equal(t, tc.jsonLog, isJSON, "unexpected log handler type")
		})
	}
}

func TestSetSlogJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	restore := cli.SetLogOutput(&buf)
	t.Cleanup(func() {
		restore()
		slog.SetDefault(&defaultLogger)
	})

	cli.SetSlog(1, true)
	slog.Info("hello", "req_id", "abc")
	slog.Debug("filtered out")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), "only one JSON record should be written")
	assert.Equal(t, "hello", got["msg"])
	assert.Equal(t, "abc", got["req_id"])
}
