// Package testutils provides helpers shared by the tests of the version service.
package testutils

import "testing"

func init() {
	if !testing.Testing() {
		panic("testutils can only be imported from tests")
	}
}
