// SPDX-License-Identifier: MPL-2.0

package packer

import (
	"archive/zip"
	"io"
	"path/filepath"
	"strings"

	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/spf13/afero"
)

// ArchiveWriter is the write side of an archive. A writer is owned by one
// packing operation and closed exactly once by its owner.
type ArchiveWriter interface {
	// AddFile appends the contents of sourcePath under relPath.
	AddFile(relPath, sourcePath string) error
	// AddEmptyDirectory appends a directory marker for relPath.
	AddEmptyDirectory(relPath string) error
	// Close flushes and releases the archive.
	Close() error
}

// ZipWriter is an ArchiveWriter producing a ZIP file.
type ZipWriter struct {
	fs      afero.Fs
	path    string
	file    afero.File
	zw      *zip.Writer
	entries int
	closed  bool
}

// OpenZip creates (or truncates) the ZIP file at path, creating missing parent
// directories.
func OpenZip(afs afero.Fs, path string) (*ZipWriter, error) {
	if err := afs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fsop.Classify("create directory", filepath.Dir(path), err)
	}
	f, err := afs.Create(path)
	if err != nil {
		return nil, fsop.Classify("create archive", path, err)
	}
	return &ZipWriter{fs: afs, path: path, file: f, zw: zip.NewWriter(f)}, nil
}

// Path returns the archive location.
func (w *ZipWriter) Path() string {
	return w.path
}

// Entries returns the number of entries written so far.
func (w *ZipWriter) Entries() int {
	return w.entries
}

// AddFile implements ArchiveWriter.
func (w *ZipWriter) AddFile(relPath, sourcePath string) (err error) {
	src, err := w.fs.Open(sourcePath)
	if err != nil {
		return fsop.Classify("open file", sourcePath, err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = fsop.Classify("close file", sourcePath, closeErr)
		}
	}()

	info, err := src.Stat()
	if err != nil {
		return fsop.Classify("stat", sourcePath, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fsop.Classify("create file header", sourcePath, err)
	}
	header.Name = filepath.ToSlash(relPath)
	header.Method = zip.Deflate

	dst, err := w.zw.CreateHeader(header)
	if err != nil {
		return fsop.Classify("create ZIP entry", relPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fsop.Classify("write file data", relPath, err)
	}

	w.entries++
	return nil
}

// AddEmptyDirectory implements ArchiveWriter.
func (w *ZipWriter) AddEmptyDirectory(relPath string) error {
	name := strings.TrimSuffix(filepath.ToSlash(relPath), "/") + "/"
	if _, err := w.zw.Create(name); err != nil {
		return fsop.Classify("create directory entry", name, err)
	}
	w.entries++
	return nil
}

// Close implements ArchiveWriter. Calling it more than once is a no-op.
func (w *ZipWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	zipErr := w.zw.Close()
	fileErr := w.file.Close()
	if zipErr != nil {
		return fsop.Classify("finalize archive", w.path, zipErr)
	}
	if fileErr != nil {
		return fsop.Classify("close archive", w.path, fileErr)
	}
	return nil
}

var _ ArchiveWriter = (*ZipWriter)(nil)
