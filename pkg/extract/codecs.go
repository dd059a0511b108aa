// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndeet/unzipper/pkg/catalog"
	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/charmbracelet/log"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/mholt/archiver/v4"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
)

// extractor writes archive entries below a target directory and keeps totals.
type extractor struct {
	ctx    context.Context
	fs     afero.Fs
	logger *log.Logger
	files  int
	bytes  int64
}

func (x *extractor) extract(kind catalog.Kind, archivePath, target string) error {
	switch kind {
	case catalog.KindZip:
		return x.extractZip(archivePath, target)
	case catalog.KindRar:
		return x.extractRar(archivePath, target)
	case catalog.KindTar, catalog.KindTarGz, catalog.KindGzip, catalog.KindLz4, catalog.KindSnappy:
		return x.extractStream(kind, archivePath, target)
	default:
		return fsop.NewError(fsop.ErrUnsupportedInput, "extract", archivePath, fmt.Errorf("no codec for %q", kind))
	}
}

func (x *extractor) canceled() error {
	if err := x.ctx.Err(); err != nil {
		return fmt.Errorf("extraction canceled: %w", err)
	}
	return nil
}

func (x *extractor) extractZip(archivePath, target string) (err error) {
	f, err := x.fs.Open(archivePath)
	if err != nil {
		return fsop.Classify("open archive", archivePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fsop.Classify("close archive", archivePath, closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fsop.Classify("stat", archivePath, err)
	}

	// Insecure names are rejected entry by entry through SafeJoin.
	zr, err := zip.NewReader(f, info.Size())
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fsop.NewError(fsop.ErrIO, "read ZIP archive", archivePath, err)
	}

	for _, file := range zr.File {
		if err := x.canceled(); err != nil {
			return err
		}

		dst, err := fsop.SafeJoin(target, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := x.mkdir(dst); err != nil {
				return err
			}
			continue
		}
		if !file.Mode().IsRegular() {
			x.logger.Warn("skipping non-regular ZIP entry", "entry", file.Name, "mode", file.Mode())
			continue
		}

		if err := x.writeZipEntry(file, dst); err != nil {
			return err
		}
	}
	return nil
}

func (x *extractor) writeZipEntry(file *zip.File, dst string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return fsop.NewError(fsop.ErrIO, "open ZIP entry", file.Name, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = fsop.NewError(fsop.ErrIO, "close ZIP entry", file.Name, closeErr)
		}
	}()
	return x.writeFile(dst, rc, file.Mode())
}

func (x *extractor) extractRar(archivePath, target string) (err error) {
	f, err := x.fs.Open(archivePath)
	if err != nil {
		return fsop.Classify("open archive", archivePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fsop.Classify("close archive", archivePath, closeErr)
		}
	}()

	handler := func(ctx context.Context, af archiver.File) error {
		if err := x.canceled(); err != nil {
			return err
		}

		dst, err := fsop.SafeJoin(target, af.NameInArchive)
		if err != nil {
			return err
		}
		if af.IsDir() {
			return x.mkdir(dst)
		}
		if !af.Mode().IsRegular() {
			x.logger.Warn("skipping non-regular RAR entry", "entry", af.NameInArchive)
			return nil
		}

		rc, err := af.Open()
		if err != nil {
			return fsop.NewError(fsop.ErrIO, "open RAR entry", af.NameInArchive, err)
		}
		writeErr := x.writeFile(dst, rc, af.Mode())
		if closeErr := rc.Close(); closeErr != nil && writeErr == nil {
			writeErr = fsop.NewError(fsop.ErrIO, "close RAR entry", af.NameInArchive, closeErr)
		}
		return writeErr
	}

	if err := (archiver.Rar{}).Extract(x.ctx, f, nil, handler); err != nil {
		var opErr *fsop.OpError
		if errors.As(err, &opErr) || errors.Is(err, context.Canceled) {
			return err
		}
		return fsop.NewError(fsop.ErrIO, "read RAR archive", archivePath, err)
	}
	return nil
}

// extractStream handles the formats that compress a single byte stream.
func (x *extractor) extractStream(kind catalog.Kind, archivePath, target string) (err error) {
	f, err := x.fs.Open(archivePath)
	if err != nil {
		return fsop.Classify("open archive", archivePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fsop.Classify("close archive", archivePath, closeErr)
		}
	}()

	var r io.Reader
	switch kind {
	case catalog.KindTar:
		return x.extractTar(f, target)
	case catalog.KindGzip, catalog.KindTarGz:
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			return fsop.NewError(fsop.ErrIO, "read gzip stream", archivePath, gzErr)
		}
		defer func() {
			if closeErr := gz.Close(); closeErr != nil && err == nil {
				err = fsop.NewError(fsop.ErrIO, "read gzip stream", archivePath, closeErr)
			}
		}()
		if kind == catalog.KindTarGz {
			return x.extractTar(gz, target)
		}
		r = gz
	case catalog.KindLz4:
		r = lz4.NewReader(f)
	case catalog.KindSnappy:
		r = snappy.NewReader(f)
	}

	// "site.tar.gz" unpacks to "site.tar", which is a tarball in its own right.
	inner := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	if strings.EqualFold(filepath.Ext(inner), ".tar") {
		return x.extractTar(r, target)
	}

	dst, err := fsop.SafeJoin(target, inner)
	if err != nil {
		return err
	}
	return x.writeFile(dst, r, 0o644)
}

func (x *extractor) extractTar(r io.Reader, target string) error {
	tr := tar.NewReader(r)
	for {
		if err := x.canceled(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return fsop.NewError(fsop.ErrIO, "read tar stream", target, err)
		}

		dst, err := fsop.SafeJoin(target, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := x.mkdir(dst); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := x.writeFile(dst, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			x.logger.Warn("skipping unsupported tar entry", "entry", hdr.Name, "type", string(hdr.Typeflag))
		}
	}
}

func (x *extractor) mkdir(dst string) error {
	if err := x.fs.MkdirAll(dst, 0o755); err != nil {
		return fsop.Classify("create directory", dst, err)
	}
	return nil
}

func (x *extractor) writeFile(dst string, r io.Reader, mode fs.FileMode) (err error) {
	if err := x.mkdir(filepath.Dir(dst)); err != nil {
		return err
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := x.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fsop.Classify("create file", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fsop.Classify("close file", dst, closeErr)
		}
	}()

	//nolint:gosec // G110: archives come from the operator's own working directory
	n, err := io.Copy(out, r)
	if err != nil {
		return fsop.NewError(fsop.ErrIO, "write file", dst, err)
	}

	x.files++
	x.bytes += n
	x.logger.Debug("extracted file", "path", dst, "bytes", n)
	return nil
}
