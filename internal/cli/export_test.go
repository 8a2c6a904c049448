package cli

import "io"

// SetLogOutput redirects JSON logs for the duration of a test.
func SetLogOutput(w io.Writer) (restore func()) {
	orig := logOutput
	logOutput = w
	return func() { logOutput = orig }
}

// EnvPrefix exposes the environment prefix computed for a command name.
func EnvPrefix(cmdName string) string {
	return envPrefix(cmdName)
}
