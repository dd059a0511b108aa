// SPDX-License-Identifier: MPL-2.0

// Package catalog discovers the archives sitting in a directory.
package catalog

import (
	"path/filepath"
	"strings"

	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/spf13/afero"
)

const (
	// KindUnknown is not an archive.
	KindUnknown Kind = ""
	// KindZip is a ZIP archive (.zip).
	KindZip Kind = "zip"
	// KindGzip is a gzip-compressed single file (.gz), possibly a tarball.
	KindGzip Kind = "gzip"
	// KindTarGz is a gzip-compressed tarball (.tgz).
	KindTarGz Kind = "tgz"
	// KindTar is an uncompressed tarball (.tar).
	KindTar Kind = "tar"
	// KindRar is a RAR archive (.rar).
	KindRar Kind = "rar"
	// KindLz4 is an LZ4 frame-compressed single file (.lz4).
	KindLz4 Kind = "lz4"
	// KindSnappy is a snappy framed single file (.sz).
	KindSnappy Kind = "snappy"
	// KindMultipart is the first part of a split archive (.001).
	KindMultipart Kind = "multipart"
)

type (
	// Kind identifies an archive format by file extension.
	Kind string

	// Entry is one archive found by Scan.
	Entry struct {
		// Name is the file name.
		Name string
		// Path is the file path (dir joined with Name).
		Path string
		// Kind is the detected archive kind.
		Kind Kind
		// Size is the file size in bytes.
		Size int64
	}
)

var kindsByExt = map[string]Kind{
	".zip": KindZip,
	".gz":  KindGzip,
	".tgz": KindTarGz,
	".tar": KindTar,
	".rar": KindRar,
	".lz4": KindLz4,
	".sz":  KindSnappy,
	".001": KindMultipart,
}

// KindOf returns the archive kind of name, or KindUnknown.
func KindOf(name string) Kind {
	return kindsByExt[strings.ToLower(filepath.Ext(name))]
}

// Extractable reports whether archives of this kind can be extracted directly.
// Multipart splits need to be joined first.
func (k Kind) Extractable() bool {
	return k != KindUnknown && k != KindMultipart
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Scan lists the archives directly inside dir, sorted by name. Subdirectories
// are not searched.
func Scan(afs afero.Fs, dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(afs, dir)
	if err != nil {
		return nil, fsop.Classify("list directory", dir, err)
	}

	var entries []Entry
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		kind := KindOf(info.Name())
		if kind == KindUnknown {
			continue
		}
		entries = append(entries, Entry{
			Name: info.Name(),
			Path: filepath.Join(dir, info.Name()),
			Kind: kind,
			Size: info.Size(),
		})
	}
	return entries, nil
}

// Filter returns the entries for which keep returns true.
func Filter(entries []Entry, keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
