// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ndeet/unzipper/pkg/catalog"
	"github.com/ndeet/unzipper/pkg/flatten"
	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// scratchPrefix names the temporary directories created for leading-directory
// removal.
const scratchPrefix = ".unzipper-"

type (
	// Option configures Extract.
	Option func(*options)

	options struct {
		excludeLeadingDir bool
		logger            *log.Logger
	}

	// Result describes a finished extraction.
	Result struct {
		// Archive is the extracted archive path.
		Archive string
		// Destination is the directory the content ended up in.
		Destination string
		// Kind is the archive kind that selected the codec.
		Kind catalog.Kind
		// Files is the number of regular files written.
		Files int
		// Bytes is the total size of the written files.
		Bytes int64
		// Flattened is true when a leading directory was collapsed.
		Flattened bool
	}
)

// WithExcludeLeadingDir drops the single top-level folder an archive may wrap
// its content in.
func WithExcludeLeadingDir(exclude bool) Option {
	return func(o *options) {
		o.excludeLeadingDir = exclude
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

// Extract unpacks archivePath into destination, creating destination if
// needed.
//
// Errors carry one of the fsop kinds: ErrNotFound for a missing archive,
// ErrPermissionDenied for an unwritable destination, ErrUnsupportedInput for
// an unknown or multipart archive, ErrIO for everything else. Files written
// before a failure are left in place.
func Extract(ctx context.Context, afs afero.Fs, archivePath, destination string, opts ...Option) (res *Result, err error) {
	o := &options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(o)
	}

	info, err := afs.Stat(archivePath)
	if err != nil {
		return nil, fsop.Classify("open archive", archivePath, err)
	}
	if info.IsDir() {
		return nil, fsop.NewError(fsop.ErrUnsupportedInput, "open archive", archivePath, errors.New("archive is a directory"))
	}

	kind := catalog.KindOf(archivePath)
	switch {
	case kind == catalog.KindMultipart:
		return nil, fsop.NewError(fsop.ErrUnsupportedInput, "extract", archivePath,
			errors.New("multipart split files must be joined before extraction"))
	case !kind.Extractable():
		return nil, fsop.NewError(fsop.ErrUnsupportedInput, "extract", archivePath,
			fmt.Errorf("unsupported archive type %q", archivePath))
	}

	if err := afs.MkdirAll(destination, 0o755); err != nil {
		return nil, fsop.Classify("create directory", destination, err)
	}
	if err := fsop.CheckWritable(afs, destination); err != nil {
		return nil, err
	}

	target := destination
	if o.excludeLeadingDir {
		scratch, tmpErr := afero.TempDir(afs, destination, scratchPrefix)
		if tmpErr != nil {
			return nil, fsop.Classify("create scratch directory", destination, tmpErr)
		}
		defer func() {
			if rmErr := afs.RemoveAll(scratch); rmErr != nil && err == nil {
				err = fsop.Classify("remove scratch directory", scratch, rmErr)
				res = nil
			}
		}()
		target = scratch
	}

	x := &extractor{ctx: ctx, fs: afs, logger: o.logger}
	o.logger.Debug("extracting", "archive", archivePath, "kind", kind, "target", target)
	if err := x.extract(kind, archivePath, target); err != nil {
		return nil, err
	}

	res = &Result{
		Archive:     archivePath,
		Destination: destination,
		Kind:        kind,
		Files:       x.files,
		Bytes:       x.bytes,
	}

	if o.excludeLeadingDir {
		fr, err := flatten.New(afs, o.logger).Flatten(target, destination)
		if err != nil {
			return nil, err
		}
		res.Flattened = fr.Collapsed()
	}

	return res, nil
}
