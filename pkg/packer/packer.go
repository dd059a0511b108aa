// SPDX-License-Identifier: MPL-2.0

package packer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

// DefaultNamePrefix is the file name prefix of generated archives.
const DefaultNamePrefix = "zipper"

type (
	// ExcludeFunc reports whether a directory entry with the given base name
	// must be left out of the archive.
	ExcludeFunc func(name string) bool

	// Option configures Pack and ZipDirectory.
	Option func(*options)

	options struct {
		exclude   ExcludeFunc
		logger    *log.Logger
		skipPaths []string
	}

	// PackRequest names a directory to package and the archive to produce.
	PackRequest struct {
		// SourcePath is the directory to package. It must exist.
		SourcePath string
		// OutputArchivePath is the ZIP file to create.
		OutputArchivePath string
	}

	// ZipResult describes a finished ZipDirectory call.
	ZipResult struct {
		// Path is the absolute location of the created archive.
		Path string
		// Entries is the number of archive entries written, directories included.
		Entries int
	}
)

// WithExclude sets the exclusion predicate applied to every visited entry name.
func WithExclude(fn ExcludeFunc) Option {
	return func(o *options) {
		o.exclude = fn
	}
}

// WithLogger routes debug output to logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// ExcludeNames returns an ExcludeFunc matching any of names exactly.
func ExcludeNames(names ...string) ExcludeFunc {
	names = slices.Clone(names)
	return func(name string) bool {
		return slices.Contains(names, name)
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		exclude: func(string) bool { return false },
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DefaultArchiveName returns the archive file name used when no output is
// given, e.g. "zipper-2016-07-23--11-55.zip".
func DefaultArchiveName(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultNamePrefix
	}
	return prefix + "-" + now.Format("2006-01-02--15-04") + ".zip"
}

// Pack adds sourcePath and everything below it to w. It does not close w.
func Pack(afs afero.Fs, sourcePath string, w ArchiveWriter, opts ...Option) error {
	o := newOptions(opts)

	info, err := afs.Stat(sourcePath)
	if err != nil {
		return fsop.Classify("stat", sourcePath, err)
	}
	if !info.IsDir() {
		return fsop.NewError(fsop.ErrUnsupportedInput, "pack", sourcePath, errors.New("source is not a directory"))
	}

	root, err := rootPath(sourcePath)
	if err != nil {
		return fsop.Classify("resolve path", sourcePath, err)
	}

	p := &dirPacker{
		fs:        afs,
		w:         w,
		opts:      o,
		prefixLen: exclusivePrefixLength(root),
	}

	if err := w.AddEmptyDirectory(filepath.ToSlash(root[p.prefixLen:])); err != nil {
		return err
	}
	return p.folderToArchive(root)
}

// rootPath cleans sourcePath and resolves forms without a usable base name
// ("." or "..") to an absolute path, so the root entry is a real folder name.
func rootPath(sourcePath string) (string, error) {
	cleaned := filepath.Clean(sourcePath)
	switch filepath.Base(cleaned) {
	case ".", "..", string(filepath.Separator):
		return filepath.Abs(cleaned)
	}
	return cleaned, nil
}

// exclusivePrefixLength is the number of leading characters stripped from each
// walk path: the parent directory plus one separator, or 0 when root has no
// parent component.
func exclusivePrefixLength(root string) int {
	parent := filepath.Dir(root)
	if parent == "." {
		return 0
	}
	if strings.HasSuffix(parent, string(filepath.Separator)) {
		return len(parent)
	}
	return len(parent) + 1
}

type dirPacker struct {
	fs        afero.Fs
	w         ArchiveWriter
	opts      *options
	prefixLen int
}

func (p *dirPacker) folderToArchive(folder string) error {
	children, err := afero.ReadDir(p.fs, folder)
	if err != nil {
		return fsop.Classify("list directory", folder, err)
	}

	for _, child := range children {
		name := child.Name()
		if name == "." || name == ".." || p.opts.exclude(name) {
			continue
		}

		path := filepath.Join(folder, name)
		if p.skipped(path) {
			continue
		}
		local := filepath.ToSlash(path[p.prefixLen:])

		mode := child.Mode()
		if mode&os.ModeSymlink != 0 {
			target, statErr := p.fs.Stat(path)
			if statErr != nil {
				p.opts.logger.Warn("skipping dangling symlink", "path", path)
				continue
			}
			if target.IsDir() {
				p.opts.logger.Warn("skipping symlinked directory", "path", path)
				continue
			}
			mode = target.Mode()
		}

		switch {
		case mode.IsRegular():
			p.opts.logger.Debug("adding file", "entry", local)
			if err := p.w.AddFile(local, path); err != nil {
				return err
			}
		case mode.IsDir():
			p.opts.logger.Debug("adding directory", "entry", local)
			if err := p.w.AddEmptyDirectory(local); err != nil {
				return err
			}
			if err := p.folderToArchive(path); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *dirPacker) skipped(path string) bool {
	if len(p.opts.skipPaths) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return slices.Contains(p.opts.skipPaths, abs)
}

// ZipDirectory packs req.SourcePath into a new ZIP file at
// req.OutputArchivePath. The archive is always closed, and removed again if
// packing fails. If the output lies inside the source tree it is not packed
// into itself.
func ZipDirectory(afs afero.Fs, req PackRequest, opts ...Option) (res *ZipResult, err error) {
	info, err := afs.Stat(req.SourcePath)
	if err != nil {
		return nil, fsop.Classify("stat", req.SourcePath, err)
	}
	if !info.IsDir() {
		return nil, fsop.NewError(fsop.ErrUnsupportedInput, "pack", req.SourcePath, errors.New("source is not a directory"))
	}

	outPath, err := filepath.Abs(req.OutputArchivePath)
	if err != nil {
		return nil, fsop.Classify("resolve output path", req.OutputArchivePath, err)
	}

	w, err := OpenZip(afs, outPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = afs.Remove(outPath) // best-effort cleanup of the partial archive
			res = nil
		}
	}()

	opts = append(slices.Clone(opts), func(o *options) {
		o.skipPaths = append(o.skipPaths, outPath)
	})
	if err = Pack(afs, req.SourcePath, w, opts...); err != nil {
		return nil, err
	}

	return &ZipResult{Path: outPath, Entries: w.Entries()}, nil
}
