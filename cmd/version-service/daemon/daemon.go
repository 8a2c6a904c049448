// Package daemon provides the version service daemon.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/version-service/internal/cli"
	"github.com/ubuntu/version-service/internal/constants"
	"github.com/ubuntu/version-service/internal/versiondata"
	"github.com/ubuntu/version-service/internal/webservice"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	daemon *webservice.Server

	ready chan struct{}
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity int
	JSONLogs  bool
	Mode      string
	Daemon    webservice.StaticConfig
}

// New creates a new App instance with default values.
func New() (*App, error) {
	a := App{ready: make(chan struct{})}

	a.cmd = &cobra.Command{
		Use:   constants.CmdName,
		Short: "Version and compatibility service",
		Long: "Version service answering queries about the application release and validating " +
			"whether backend, frontend and scraper versions are known to work together.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.config.Verbosity) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}

			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs)
			slog.Debug("Got app config", "config", a.config)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cmd.SilenceUsage = true

			return a.run()
		},
	}
	a.viper = viper.New()
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)

	if err := a.bindFlags(); err != nil {
		return nil, err
	}

	a.installVersion()

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	defaultConf := webservice.StaticConfig{
		VersionFile:   constants.DefaultVersionFile,
		WatchDocument: true,

		AllowedOrigins: []string{"*"},

		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 3 * time.Second,
		MaxHeaderBytes: 1 << 13, // 8 KB

		ListenPort:  constants.DefaultListenPort,
		MetricsPort: constants.DefaultMetricsPort,
	}

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "write logs as JSON on stdout")

	cmd.Flags().StringVar(&app.config.Mode, "mode", versiondata.ModeProduction.String(),
		"execution mode: a missing version document aborts startup in production, not in test")

	// Daemon flags
	cmd.Flags().StringVar(&app.config.Daemon.VersionFile, "version-file", defaultConf.VersionFile, "path to the version document")
	cmd.Flags().BoolVar(&app.config.Daemon.WatchDocument, "watch-document", defaultConf.WatchDocument, "report changes made to the version document after startup")
	cmd.Flags().StringSliceVar(&app.config.Daemon.AllowedOrigins, "allowed-origins", defaultConf.AllowedOrigins, "origins allowed for cross-origin requests")

	cmd.Flags().DurationVar(&app.config.Daemon.ReadTimeout, "read-timeout", defaultConf.ReadTimeout, "read timeout for HTTP server")
	cmd.Flags().DurationVar(&app.config.Daemon.WriteTimeout, "write-timeout", defaultConf.WriteTimeout, "write timeout for HTTP server")
	cmd.Flags().DurationVar(&app.config.Daemon.RequestTimeout, "request-timeout", defaultConf.RequestTimeout, "request timeout for HTTP server")
	cmd.Flags().IntVar(&app.config.Daemon.MaxHeaderBytes, "max-header-bytes", defaultConf.MaxHeaderBytes, "maximum header bytes for HTTP server")

	cmd.Flags().StringVar(&app.config.Daemon.ListenHost, "listen-host", defaultConf.ListenHost, "host to listen on")
	cmd.Flags().IntVar(&app.config.Daemon.ListenPort, "listen-port", defaultConf.ListenPort, "port to listen on")

	cmd.Flags().StringVar(&app.config.Daemon.MetricsHost, "metrics-host", defaultConf.MetricsHost, "host for the metrics endpoint")
	cmd.Flags().IntVar(&app.config.Daemon.MetricsPort, "metrics-port", defaultConf.MetricsPort, "port for the metrics endpoint")

	if err := cmd.MarkFlagFilename("version-file", "json"); err != nil {
		// This should never happen.
		panic(fmt.Sprintf("failed to mark version-file flag as filename: %v", err))
	}
}

// bindFlags binds the flags not nested under the daemon configuration to their viper keys, so
// that the environment and the configuration file can override them.
func (a *App) bindFlags() error {
	keys := map[string]string{
		"verbosity": "verbose",
		"jsonlogs":  "json-logs",
		"mode":      "mode",
	}
	for key, flag := range keys {
		f := a.cmd.PersistentFlags().Lookup(flag)
		if f == nil {
			f = a.cmd.Flags().Lookup(flag)
		}
		if err := a.viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("could not bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// Hup prints all goroutine stack traces and return false to signal you shouldn't quit.
func (a App) Hup() (shouldQuit bool) {
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, true)
	fmt.Printf("%s", buf[:n])
	return false
}

// Quit shuts down the daemon once started, waiting for in-flight requests unless force is set.
func (a *App) Quit(force bool) {
	a.WaitReady()
	if a.daemon != nil {
		a.daemon.Quit(force)
	}
}

// WaitReady waits for the daemon to be ready.
func (a *App) WaitReady() {
	<-a.ready
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

func (a *App) run() error {
	err := a.newDaemon()
	close(a.ready)
	if err != nil {
		return err
	}

	return a.daemon.Run()
}

// newDaemon loads the version document according to the execution mode and creates the server.
func (a *App) newDaemon() (err error) {
	defer decorate.OnError(&err, "failed to create server")

	mode, err := versiondata.ParseMode(a.config.Mode)
	if err != nil {
		return err
	}

	dConf := a.config.Daemon
	dConf.VersionFile, err = filepath.Abs(dConf.VersionFile)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for version document: %v", err)
	}

	doc, err := versiondata.Load(dConf.VersionFile, mode)
	var lerr *versiondata.LoadError
	if errors.As(err, &lerr) && !lerr.Fatal {
		slog.Info("Serving without version data", "mode", mode, "err", err)
	} else if err != nil {
		return err
	}

	a.daemon, err = webservice.New(context.Background(), doc, dConf)
	return err
}
