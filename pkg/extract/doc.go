// SPDX-License-Identifier: MPL-2.0

// Package extract unpacks the archives found by package catalog into a
// destination directory.
//
// The codec is chosen from the file extension: ZIP and TAR use the standard
// library readers, gzip uses klauspost/compress, RAR uses mholt/archiver, and
// the single-stream .lz4 and .sz formats use pierrec/lz4 and golang/snappy.
// A single-stream file whose inner name ends in .tar is unpacked as a tarball.
//
// With WithExcludeLeadingDir the archive is first unpacked into a scratch
// directory under the destination and then handed to package flatten; the
// scratch directory is removed whatever the outcome.
package extract
