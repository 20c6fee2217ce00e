// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/invowk/forge/pkg/types"
)

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("one or more builds failed")
	wrapped := &ExitError{Code: types.ExitBuildFailed, Err: cause}
	if wrapped.Error() != cause.Error() {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause")
	}

	bare := &ExitError{Code: types.ExitConfigError}
	if bare.Error() != "exit status 2" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestProcessExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"nil", nil, types.ExitSuccess},
		{"config error", &ExitError{Code: types.ExitConfigError}, types.ExitConfigError},
		{"wrapped", fmt.Errorf("run: %w", &ExitError{Code: types.ExitBuildFailed}), types.ExitBuildFailed},
		{"out of range", &ExitError{Code: 300}, types.ExitBuildFailed},
		{"plain error", errors.New("boom"), types.ExitBuildFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := processExitCode(tt.err); got != tt.want {
				t.Errorf("processExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
