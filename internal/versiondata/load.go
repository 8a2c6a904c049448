package versiondata

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ubuntu/decorate"
)

// Mode is the execution mode of the loader.
type Mode int

const (
	// ModeProduction makes a load failure fatal to startup.
	ModeProduction Mode = iota
	// ModeTest keeps the loader quiet and leaves load failures to the caller.
	ModeTest
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeProduction:
		return "production"
	case ModeTest:
		return "test"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the mode named s. An empty name is production.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "production", "prod":
		return ModeProduction, nil
	case "test":
		return ModeTest, nil
	default:
		return ModeProduction, fmt.Errorf("unknown execution mode %q", s)
	}
}

// LoadError is returned when the version document cannot be read or parsed.
type LoadError struct {
	Path string
	// Fatal is set when the process must not start without the document.
	Fatal bool
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load version document %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the version document at path.
//
// In production mode, success is logged and a failure is logged and reported as a fatal
// LoadError. In test mode nothing is logged and the LoadError is not fatal.
func Load(path string, mode Mode) (*Document, error) {
	doc, err := readDocument(path)
	if err != nil {
		lerr := &LoadError{Path: path, Fatal: mode != ModeTest, Err: err}
		if lerr.Fatal {
			slog.Error("Failed to load version document", "path", path, "err", err)
		}
		return nil, lerr
	}

	if mode != ModeTest {
		slog.Info("Loaded version data", "path", path, "application", doc.Application)
	}
	return doc, nil
}

func readDocument(path string) (doc *Document, err error) {
	defer decorate.OnError(&err, "could not read %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
