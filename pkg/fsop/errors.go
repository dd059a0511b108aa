// SPDX-License-Identifier: MPL-2.0

package fsop

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound is returned when a source path is missing.
	ErrNotFound = errors.New("not found")
	// ErrIO is returned for listing, read, write, move or remove failures.
	ErrIO = errors.New("i/o failure")
	// ErrPermissionDenied is returned when a destination is not writable.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnsupportedInput is returned when an input has the wrong shape for the
	// operation (a file where a directory is required, an unknown archive type, ...).
	ErrUnsupportedInput = errors.New("unsupported input")
)

// OpError records a failed filesystem operation together with its error kind.
// errors.Is matches both the kind sentinel and the underlying cause.
type OpError struct {
	// Kind is one of ErrNotFound, ErrIO, ErrPermissionDenied, ErrUnsupportedInput.
	Kind error
	// Op is a verb phrase such as "list directory" or "move entry".
	Op string
	// Path is the filesystem path involved.
	Path string
	// Err is the underlying cause (optional).
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	msg := fmt.Sprintf("failed to %s %s", e.Op, e.Path)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + ": " + e.Kind.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError creates an OpError of the given kind.
func NewError(kind error, op, path string, cause error) *OpError {
	return &OpError{Kind: kind, Op: op, Path: path, Err: cause}
}

// Classify wraps err in an OpError whose kind is derived from the cause:
// fs.ErrNotExist becomes ErrNotFound, fs.ErrPermission becomes
// ErrPermissionDenied and everything else is ErrIO. Errors that already carry a
// kind are returned unchanged. A nil err yields nil.
func Classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewError(ErrNotFound, op, path, err)
	case errors.Is(err, fs.ErrPermission):
		return NewError(ErrPermissionDenied, op, path, err)
	default:
		return NewError(ErrIO, op, path, err)
	}
}

// KindOf returns the error kind carried by err, or nil if it has none.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrPermissionDenied, ErrUnsupportedInput, ErrIO} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
