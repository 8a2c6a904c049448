package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// InitViperConfig loads the configuration file of cmdName into vip and binds the environment.
//
// The file is either the one passed with --config, or cmdName.{yaml,json,...} searched in the
// working directory, the system configuration directories and the executable directory.
// A missing file is not an error; an unreadable one is.
// Environment variables are prefixed with cmdName in upper snake case, nested keys being
// separated by underscores (VERSION_SERVICE_DAEMON_LISTENPORT -> daemon.listenport).
func InitViperConfig(cmdName string, cmd *cobra.Command, vip *viper.Viper) error {
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		vip.SetConfigFile(f.Value.String())
	} else {
		vip.SetConfigName(cmdName)
		for _, p := range configSearchPaths(cmdName) {
			vip.AddConfigPath(p)
		}
	}

	if err := vip.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return fmt.Errorf("invalid configuration file: %w", err)
		}
		slog.Info("No configuration file. Using defaults, environment and flags only", "error", e)
	} else {
		slog.Info("Using configuration file", "file", vip.ConfigFileUsed())
	}

	vip.SetEnvPrefix(cmdName)
	vip.AutomaticEnv()

	return bindPrefixedEnv(vip, envPrefix(cmdName))
}

// InstallConfigFlag adds a config flag to the command.
func InstallConfigFlag(cmd *cobra.Command) *string {
	return cmd.PersistentFlags().String("config", "", "use a specific configuration file")
}

func configSearchPaths(cmdName string) []string {
	paths := []string{"."}
	if runtime.GOOS == "windows" {
		paths = append(paths, filepath.Join("C:\\ProgramData", cmdName))
	} else {
		paths = append(paths, filepath.Join("/etc", cmdName), filepath.Join("/usr/local/etc", cmdName))
	}

	binPath, err := os.Executable()
	if err != nil {
		slog.Warn("Failed to get current executable path, not adding it as a config dir", "error", err)
		return paths
	}
	return append(paths, filepath.Dir(binPath))
}

func envPrefix(cmdName string) string {
	return strings.ToUpper(strings.ReplaceAll(cmdName, "-", "_")) + "_"
}

// bindPrefixedEnv explicitly binds every environment variable carrying prefix, so that
// nested keys can be unmarshalled into a struct (see https://github.com/spf13/viper/pull/1429).
func bindPrefixedEnv(vip *viper.Viper, prefix string) error {
	for _, e := range os.Environ() {
		name, _, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}

		key := strings.ReplaceAll(strings.TrimPrefix(name, prefix), "_", ".")
		if err := vip.BindEnv(key, name); err != nil {
			return fmt.Errorf("could not bind environment variable %s: %w", name, err)
		}
	}
	return nil
}
