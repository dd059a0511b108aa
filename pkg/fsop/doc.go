// SPDX-License-Identifier: MPL-2.0

// Package fsop holds the filesystem primitives shared by the packer, flattener,
// extractor and multipart joiner: error kinds, merge-aware moves, writability
// checks and archive-name path joining.
//
// All operations run against an afero.Fs so callers choose the backing filesystem.
package fsop
