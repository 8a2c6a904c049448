package daemon

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type (
	AppConfig = appConfig
)

// Config returns the configuration of the app.
func (a *App) Config() AppConfig {
	return a.config
}

// Addr returns the address of the API once the daemon is running.
func (a *App) Addr() string {
	if a.daemon == nil {
		return ""
	}
	return a.daemon.Addr()
}

// NewForTests creates a new App instance for testing purposes, configured through a
// generated configuration file. The API and metrics ports default to random ones.
func NewForTests(t *testing.T, conf *AppConfig, args ...string) *App {
	t.Helper()

	p := GenerateTestConfig(t, conf)
	argsWithConf := []string{"--config", p, "--listen-host", "127.0.0.1", "--listen-port", "0", "--metrics-host", "127.0.0.1", "--metrics-port", "0"}
	argsWithConf = append(argsWithConf, args...)

	a, err := New()
	require.NoError(t, err, "Setup: failed to create app")
	a.cmd.SetArgs(argsWithConf)
	return a
}

// GenerateTestConfig generates a temporary config file for testing.
// Only the explicitly set fields are written so that flags keep their defaults.
func GenerateTestConfig(t *testing.T, origConf *AppConfig) string {
	t.Helper()

	conf := map[string]any{"verbosity": 2}
	daemon := map[string]any{}
	if origConf != nil {
		if origConf.Verbosity != 0 {
			conf["verbosity"] = origConf.Verbosity
		}
		if origConf.Mode != "" {
			conf["mode"] = origConf.Mode
		}
		if origConf.Daemon.VersionFile != "" {
			daemon["versionfile"] = origConf.Daemon.VersionFile
		}
		if len(origConf.Daemon.AllowedOrigins) > 0 {
			daemon["allowedorigins"] = origConf.Daemon.AllowedOrigins
		}
		if origConf.Daemon.ReadTimeout != 0 {
			daemon["readtimeout"] = origConf.Daemon.ReadTimeout.String()
		}
	}
	if len(daemon) > 0 {
		conf["daemon"] = daemon
	}

	d, err := yaml.Marshal(conf)
	require.NoError(t, err, "Setup: failed to marshal config for tests")

	confPath := filepath.Join(t.TempDir(), "testconfig.yaml")
	require.NoError(t, os.WriteFile(confPath, d, 0600), "Setup: failed to write config for tests")

	return confPath
}

// SetArgs set some arguments on root command for tests.
func (a *App) SetArgs(args ...string) {
	a.cmd.SetArgs(args)
}

// SetSilenceUsage set the SilenceUsage flag on root command for tests.
func (a *App) SetSilenceUsage(silence bool) {
	a.cmd.SilenceUsage = silence
}

// SetOutput redirects the command output for tests.
func (a *App) SetOutput(w io.Writer) {
	a.cmd.SetOut(w)
	a.cmd.SetErr(w)
}
