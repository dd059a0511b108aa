// SPDX-License-Identifier: MPL-2.0

// Package flatten collapses the leading directory that many archives wrap their
// content in.
//
// Archives authored as "project-1.2/..." extract to a single top-level folder.
// Flatten detects that shape in a freshly extracted directory and moves the
// wrapper's children straight into the final destination. Only one level is
// collapsed, and only when the extraction holds exactly one entry that is a
// directory. Anything else is moved verbatim.
package flatten

import (
	"io"
	"path/filepath"

	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Result describes what Flatten relocated.
type Result struct {
	// Moved lists the destination paths of every relocated top-level entry.
	Moved []string
	// Wrapper is the collapsed wrapper directory, or empty if none was collapsed.
	Wrapper string
}

// Collapsed reports whether a wrapper directory was removed.
func (r *Result) Collapsed() bool {
	return r.Wrapper != ""
}

// Flattener moves extracted content into its final destination.
type Flattener struct {
	fs     afero.Fs
	logger *log.Logger
}

// New creates a Flattener. A nil logger discards output.
func New(afs afero.Fs, logger *log.Logger) *Flattener {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Flattener{fs: afs, logger: logger}
}

// Flatten is a convenience wrapper around New(afs, nil).Flatten.
func Flatten(afs afero.Fs, extractedDir, finalDestination string) (*Result, error) {
	return New(afs, nil).Flatten(extractedDir, finalDestination)
}

// Flatten moves the content of extractedDir into finalDestination, collapsing a
// single wrapper directory if present. Files are only relocated, never deleted;
// the emptied wrapper is removed. extractedDir itself is left for the caller to
// remove.
func (f *Flattener) Flatten(extractedDir, finalDestination string) (*Result, error) {
	source := extractedDir
	children, err := afero.ReadDir(f.fs, source)
	if err != nil {
		return nil, fsop.Classify("list directory", source, err)
	}

	res := &Result{}
	if len(children) == 1 && children[0].IsDir() {
		source = filepath.Join(extractedDir, children[0].Name())
		res.Wrapper = source
		children, err = afero.ReadDir(f.fs, source)
		if err != nil {
			return nil, fsop.Classify("list directory", source, err)
		}
		f.logger.Debug("collapsing leading directory", "wrapper", source)
	}

	if len(children) > 0 {
		if err := f.fs.MkdirAll(finalDestination, 0o755); err != nil {
			return nil, fsop.Classify("create directory", finalDestination, err)
		}
	}

	for _, child := range children {
		name := child.Name()
		if name == "." || name == ".." {
			continue
		}
		dst := filepath.Join(finalDestination, name)
		if err := fsop.Move(f.fs, filepath.Join(source, name), dst); err != nil {
			return nil, err
		}
		f.logger.Debug("moved entry", "path", dst)
		res.Moved = append(res.Moved, dst)
	}

	if res.Collapsed() {
		if err := f.fs.Remove(source); err != nil {
			return nil, fsop.Classify("remove directory", source, err)
		}
	}

	return res, nil
}
