// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail fast on setup errors,
// plus a controllable clock for code that names files after the current time.
package testutil
