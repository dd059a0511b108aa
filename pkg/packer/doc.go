// SPDX-License-Identifier: MPL-2.0

// Package packer packages a directory tree into an archive.
//
// Pack walks a source directory and appends one entry per file and
// subdirectory to an ArchiveWriter. Entry paths are the absolute walk paths
// with a fixed prefix (the parent of the source directory plus a separator)
// stripped, so the source folder's own name is always the archive root:
//
//	Pack(fs, "/srv/www/photos", w)
//
//	photos/
//	photos/a.jpg
//	photos/2016/
//	photos/2016/b.jpg
//
// Every directory entry is written before any of its children. Pack never
// closes the writer; ZipDirectory owns a zip writer end to end and removes the
// partial archive if anything fails.
package packer
