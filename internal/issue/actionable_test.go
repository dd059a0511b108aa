// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "extract archive"},
			expected: "failed to extract archive",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "extract archive", Resource: "site.zip"},
			expected: "failed to extract archive: site.zip",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "join parts", Cause: errors.New("part 3 missing")},
			expected: "failed to join parts: part 3 missing",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "zip directory",
				Resource:  "./public",
				Cause:     errors.New("disk full"),
			},
			expected: "failed to zip directory: ./public: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	inner := errors.New("unexpected EOF")
	err := &ActionableError{
		Operation:   "extract archive",
		Resource:    "a.tar.gz",
		Suggestions: []string{"Copy the file again", "Check free disk space"},
		Cause:       errors.Join(errors.New("read header"), inner),
	}

	tests := []struct {
		name     string
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "concise",
			contains: []string{"failed to extract archive: a.tar.gz", "• Copy the file again", "• Check free disk space"},
			excludes: []string{"Error chain:"},
		},
		{
			name:     "verbose",
			verbose:  true,
			contains: []string{"Error chain:", "1. read header"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format(%v) missing %q:\n%s", tt.verbose, s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format(%v) should not contain %q:\n%s", tt.verbose, s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("join parts").
		WithResource("backup.zip.001").
		WithSuggestion("first").
		WithSuggestion("second").
		WithIssue(MissingPartId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "join parts" || ae.Resource != "backup.zip.001" {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2", ae.Suggestions)
	}
	if ae.Issue != MissingPartId {
		t.Errorf("Issue = %d, want %d", ae.Issue, MissingPartId)
	}
	if !errors.Is(ae, cause) {
		t.Error("Build() lost the cause")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	if ae := NewErrorContext().WithResource("x").Build(); ae != nil {
		t.Errorf("Build() = %+v, want nil without operation", ae)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil", err)
	}
}

func TestWrapWithContext(t *testing.T) {
	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}

	cause := errors.New("denied")
	ae := WrapWithContext(cause, "write file", "/tmp/x")
	if ae.Error() != "failed to write file: /tmp/x: denied" {
		t.Errorf("Error() = %q", ae.Error())
	}
}
