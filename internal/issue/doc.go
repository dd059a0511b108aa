// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into user-facing messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Issue is a catalog of Markdown help pages, rendered with
// glamour, keyed by Id; KindIssue maps filesystem error kinds onto it.
package issue
