// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/spf13/cobra"
)

// Exit codes reported for each failure kind.
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitPermission  = 4
	ExitUnsupported = 5
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageArgs wraps an argument validator so that its failures exit with
// ExitUsage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		return nil
	}
}

// usageFlagError is the flag error handler for every command.
func usageFlagError(_ *cobra.Command, err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch fsop.KindOf(err) {
	case fsop.ErrNotFound:
		return ExitNotFound
	case fsop.ErrPermissionDenied:
		return ExitPermission
	case fsop.ErrUnsupportedInput:
		return ExitUnsupported
	default:
		return ExitFailure
	}
}
