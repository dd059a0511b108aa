// SPDX-License-Identifier: MPL-2.0

// Package multipart reassembles archives that were split into numbered parts
// ("site.zip.001", "site.zip.002", ...).
package multipart

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// FirstPartSuffix is the extension of the first part of a split archive.
const FirstPartSuffix = ".001"

type (
	// Option configures Join.
	Option func(*options)

	options struct {
		output string
		now    func() time.Time
		logger *log.Logger
	}

	// Result describes a finished Join.
	Result struct {
		// Output is the path of the reassembled archive.
		Output string
		// Parts lists the joined part paths in order.
		Parts []string
		// Bytes is the size of the reassembled archive.
		Bytes int64
		// Overwritten is true when an existing output file was replaced.
		Overwritten bool
	}
)

// WithOutput sets the reassembled archive path instead of the generated name.
func WithOutput(path string) Option {
	return func(o *options) {
		o.output = path
	}
}

// WithClock sets the time source used for the generated output name.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
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

// OutputName returns the generated name for a reassembled archive:
// "site.zip.001" becomes "site--2016-07-23--11-55.zip".
func OutputName(firstPart string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(firstPart), FirstPartSuffix)
	base = strings.TrimSuffix(base, ".zip")
	return base + "--" + now.Format("2006-01-02--15-04") + ".zip"
}

// Parts returns the parts belonging to firstPart in numeric order. Parts must
// be numbered contiguously from 001; a gap is reported as ErrNotFound.
func Parts(afs afero.Fs, firstPart string) ([]string, error) {
	if !strings.HasSuffix(firstPart, FirstPartSuffix) {
		return nil, fsop.NewError(fsop.ErrUnsupportedInput, "join", firstPart,
			fmt.Errorf("first part must end in %s", FirstPartSuffix))
	}

	dir := filepath.Dir(firstPart)
	stem := strings.TrimSuffix(filepath.Base(firstPart), FirstPartSuffix)

	infos, err := afero.ReadDir(afs, dir)
	if err != nil {
		return nil, fsop.Classify("list directory", dir, err)
	}

	numbered := map[int]string{}
	maxPart := 0
	for _, info := range infos {
		if info.IsDir() || !strings.HasPrefix(info.Name(), stem+".") {
			continue
		}
		suffix := strings.TrimPrefix(info.Name(), stem+".")
		if len(suffix) < 3 {
			continue
		}
		n, convErr := strconv.Atoi(suffix)
		if convErr != nil || n < 1 {
			continue
		}
		numbered[n] = filepath.Join(dir, info.Name())
		maxPart = max(maxPart, n)
	}

	if _, ok := numbered[1]; !ok {
		return nil, fsop.NewError(fsop.ErrNotFound, "join", firstPart, errors.New("first part does not exist"))
	}

	parts := make([]string, 0, maxPart)
	for n := 1; n <= maxPart; n++ {
		p, ok := numbered[n]
		if !ok {
			return nil, fsop.NewError(fsop.ErrNotFound, "join", fmt.Sprintf("%s.%03d", filepath.Join(dir, stem), n),
				errors.New("missing part"))
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// Join concatenates every part of firstPart into one archive. An existing
// output file is replaced and reported through Result.Overwritten; a partial
// output is removed on failure.
func Join(afs afero.Fs, firstPart string, opts ...Option) (res *Result, err error) {
	o := &options{now: time.Now, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(o)
	}

	parts, err := Parts(afs, firstPart)
	if err != nil {
		return nil, err
	}

	output := o.output
	if output == "" {
		output = filepath.Join(filepath.Dir(firstPart), OutputName(firstPart, o.now()))
	}

	for _, part := range parts {
		if filepath.Clean(part) == filepath.Clean(output) {
			return nil, fsop.NewError(fsop.ErrUnsupportedInput, "join", output, errors.New("output would overwrite a part"))
		}
	}

	res = &Result{Output: output, Parts: parts}
	if exists, existsErr := afero.Exists(afs, output); existsErr != nil {
		return nil, fsop.Classify("stat", output, existsErr)
	} else if exists {
		o.logger.Warn("output already exists and will be overwritten", "path", output)
		res.Overwritten = true
	}

	out, err := afs.Create(output)
	if err != nil {
		return nil, fsop.Classify("create file", output, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fsop.Classify("close file", output, closeErr)
		}
		if err != nil {
			_ = afs.Remove(output) // best-effort cleanup of the partial output
			res = nil
		}
	}()

	for _, part := range parts {
		n, err := appendPart(afs, out, part)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("joined part", "part", part, "bytes", n)
		res.Bytes += n
	}

	return res, nil
}

func appendPart(afs afero.Fs, dst io.Writer, part string) (n int64, err error) {
	in, err := afs.Open(part)
	if err != nil {
		return 0, fsop.Classify("open part", part, err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = fsop.Classify("close part", part, closeErr)
		}
	}()

	n, err = io.Copy(dst, in)
	if err != nil {
		return n, fsop.Classify("append part", part, err)
	}
	return n, nil
}
