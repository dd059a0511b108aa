// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"

	"github.com/ndeet/unzipper/pkg/fsop"
)

// KindIssue returns the catalog entry matching the fsop kind of err, or 0
// when err carries no kind.
func KindIssue(err error) Id {
	switch {
	case errors.Is(err, fsop.ErrNotFound):
		return ArchiveNotFoundId
	case errors.Is(err, fsop.ErrPermissionDenied):
		return PermissionDeniedId
	case errors.Is(err, fsop.ErrUnsupportedInput):
		return UnsupportedInputId
	case errors.Is(err, fsop.ErrIO):
		return ArchiveCorruptId
	default:
		return 0
	}
}

// FromOp wraps err as an ActionableError for operation on resource, linking
// it to the catalog entry for its kind. Any suggestions are appended after
// the kind's default hint.
func FromOp(err error, operation, resource string, suggestions ...string) error {
	if err == nil {
		return nil
	}

	id := KindIssue(err)
	ctx := NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithIssue(id).
		Wrap(err)

	switch id {
	case ArchiveNotFoundId:
		ctx.WithSuggestion("Run 'unzipper list' to see the archives in the working directory")
	case PermissionDeniedId:
		ctx.WithSuggestion("Check that you can write to the target directory")
	case UnsupportedInputId:
		ctx.WithSuggestion("Run 'unzipper --help' to see the supported formats")
	case ArchiveCorruptId:
		ctx.WithSuggestion("The file may be truncated or damaged; try copying it again")
	}
	for _, s := range suggestions {
		ctx.WithSuggestion(s)
	}

	return ctx.BuildError()
}
