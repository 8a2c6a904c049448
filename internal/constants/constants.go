// Package constants is responsible for defining the constants used in the application.
// It also resolves the default location of the version document.
package constants

import (
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// Version is the version of the application.
	Version = "Dev"
)

const (
	// CmdName is the name of the service command.
	CmdName = "version-service"

	// ServiceName is the service name reported by the health endpoints.
	ServiceName = "version-service"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn
)

// Service constants.
const (
	// DefaultVersionFileName is the name of the version document looked up next to the executable.
	DefaultVersionFileName = "version.json"

	// DefaultListenPort is the default port for the HTTP API.
	DefaultListenPort = 8080

	// DefaultMetricsPort is the default port for the Prometheus metrics endpoint.
	DefaultMetricsPort = 2112
)

// Service variables.
var (
	// DefaultVersionFile is the default path of the version document.
	DefaultVersionFile = DefaultVersionFileName
)

func init() {
	binPath, err := os.Executable()
	if err != nil {
		return
	}
	DefaultVersionFile = filepath.Join(filepath.Dir(binPath), DefaultVersionFileName)
}
