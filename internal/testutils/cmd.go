package testutils

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

// FlagCase describes a flag expected on a cobra command.
type FlagCase struct {
	Name       string
	Short      string
	Default    string
	Persistent bool
}

// AssertFlag checks that cmd declares the flag described by want.
func AssertFlag(t *testing.T, cmd *cobra.Command, want FlagCase) {
	t.Helper()

	var flag *pflag.Flag
	if want.Persistent {
		flag = cmd.PersistentFlags().Lookup(want.Name)
	} else {
		flag = cmd.Flags().Lookup(want.Name)
	}
	if !assert.NotNil(t, flag, "flag %q should be declared", want.Name) {
		return
	}
	assert.Equal(t, want.Short, flag.Shorthand, "unexpected shorthand for %q", want.Name)
	assert.Equal(t, want.Default, flag.DefValue, "unexpected default for %q", want.Name)
}
