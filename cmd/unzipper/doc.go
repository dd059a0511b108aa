// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for unzipper.
//
// The root command loads configuration once per invocation and hands each
// subcommand an App carrying the filesystem, the logger and the resolved
// working directory. Commands print a single styled outcome line and return
// errors instead of exiting.
package cmd
