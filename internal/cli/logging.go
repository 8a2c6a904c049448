// Package cli gathers the command line plumbing shared by the service commands:
// logger setup from verbosity flags and layered viper configuration.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/ubuntu/version-service/internal/constants"
)

// logOutput is where JSON logs are written.
var logOutput io.Writer = os.Stdout

// SetVerbosity sets the logging level for the default logger based on the verbose flag count.
//
// This function has the same behaviors as slog.SetLogLoggerLevel.
func SetVerbosity(level int) {
	slog.SetLogLoggerLevel(levelFromCount(level))
}

// SetSlog sets the logging level and format for the default logger.
// With jsonLogs, the default logger is replaced by a JSON handler on stdout.
func SetSlog(level int, jsonLogs bool) {
	if !jsonLogs {
		SetVerbosity(level)
		return
	}

	h := slog.NewJSONHandler(logOutput, &slog.HandlerOptions{Level: levelFromCount(level)})
	slog.SetDefault(slog.New(h))
}

func levelFromCount(count int) slog.Level {
	switch {
	case count <= 0:
		return constants.DefaultLogLevel
	case count == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
