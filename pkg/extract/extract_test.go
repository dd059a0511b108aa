// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ndeet/unzipper/internal/testutil"
	"github.com/ndeet/unzipper/pkg/catalog"
	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/charmbracelet/log"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
)

type archiveEntry struct {
	name    string
	content string // ignored for directories (names ending in "/")
}

func wrappedEntries() []archiveEntry {
	return []archiveEntry{
		{name: "proj/"},
		{name: "proj/x.txt", content: "x"},
		{name: "proj/y/"},
		{name: "proj/y/z.txt", content: "z"},
	}
}

func writeZip(t *testing.T, path string, entries []archiveEntry) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(e.name, "/") {
			if _, err := w.Write([]byte(e.content)); err != nil {
				t.Fatal(err)
			}
		}
	}
	testutil.MustClose(t, zw)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func tarBytes(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Typeflag: tar.TypeReg, Size: int64(len(e.content))}
		if strings.HasSuffix(e.name, "/") {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.content)); err != nil {
				t.Fatal(err)
			}
		}
	}
	testutil.MustClose(t, tw)
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		t.Fatal(err)
	}
	testutil.MustClose(t, gw)
	return buf.Bytes()
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	if string(data) != want {
		t.Errorf("%s = %q, want %q", path, data, want)
	}
}

func assertNoScratch(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), scratchPrefix) {
			t.Errorf("scratch directory %s left behind", e.Name())
		}
	}
}

func TestExtractZip(t *testing.T) {
	t.Parallel()

	afs := afero.NewOsFs()
	ctx := context.Background()

	t.Run("keeps leading directory by default", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "proj.zip")
		writeZip(t, archive, wrappedEntries())
		dest := filepath.Join(tmp, "out")

		res, err := Extract(ctx, afs, archive, dest)
		if err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}

		assertContent(t, filepath.Join(dest, "proj", "x.txt"), "x")
		assertContent(t, filepath.Join(dest, "proj", "y", "z.txt"), "z")
		if res.Files != 2 || res.Bytes != 2 {
			t.Errorf("Files/Bytes = %d/%d, want 2/2", res.Files, res.Bytes)
		}
		if res.Flattened {
			t.Error("Flattened = true without WithExcludeLeadingDir")
		}
		if res.Kind != catalog.KindZip {
			t.Errorf("Kind = %q", res.Kind)
		}
	})

	t.Run("excludes leading directory", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "proj.zip")
		writeZip(t, archive, wrappedEntries())
		dest := filepath.Join(tmp, "out")

		res, err := Extract(ctx, afs, archive, dest, WithExcludeLeadingDir(true))
		if err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}

		assertContent(t, filepath.Join(dest, "x.txt"), "x")
		assertContent(t, filepath.Join(dest, "y", "z.txt"), "z")
		if _, err := os.Stat(filepath.Join(dest, "proj")); !os.IsNotExist(err) {
			t.Error("wrapper directory still present")
		}
		if !res.Flattened {
			t.Error("Flattened = false")
		}
		assertNoScratch(t, dest)
	})

	t.Run("multiple top-level entries are kept", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "flat.zip")
		writeZip(t, archive, []archiveEntry{{name: "a.txt", content: "a"}, {name: "b.txt", content: "b"}})
		dest := filepath.Join(tmp, "out")

		res, err := Extract(ctx, afs, archive, dest, WithExcludeLeadingDir(true))
		if err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(dest, "a.txt"), "a")
		assertContent(t, filepath.Join(dest, "b.txt"), "b")
		if res.Flattened {
			t.Error("Flattened = true for a multi-entry archive")
		}
		assertNoScratch(t, dest)
	})

	t.Run("rejects path traversal and cleans scratch", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "evil.zip")
		writeZip(t, archive, []archiveEntry{{name: "ok.txt", content: "ok"}, {name: "../evil.txt", content: "evil"}})
		dest := filepath.Join(tmp, "out")

		_, err := Extract(ctx, afs, archive, dest, WithExcludeLeadingDir(true))
		if !errors.Is(err, fsop.ErrUnsupportedInput) {
			t.Fatalf("Extract() error = %v, want ErrUnsupportedInput", err)
		}
		if _, statErr := os.Stat(filepath.Join(tmp, "evil.txt")); !os.IsNotExist(statErr) {
			t.Error("entry escaped the destination")
		}
		assertNoScratch(t, dest)
	})

	t.Run("corrupt archive", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "broken.zip")
		if err := os.WriteFile(archive, []byte("not a zip"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Extract(ctx, afs, archive, filepath.Join(tmp, "out"))
		if !errors.Is(err, fsop.ErrIO) {
			t.Errorf("Extract() error = %v, want ErrIO", err)
		}
	})

	t.Run("skips symlink entries", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "links.zip")
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("proj/x.txt")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte("x")); err != nil {
			t.Fatal(err)
		}
		hdr := &zip.FileHeader{Name: "proj/link", Method: zip.Store}
		hdr.SetMode(os.ModeSymlink | 0o777)
		lw, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := lw.Write([]byte("/etc/passwd")); err != nil {
			t.Fatal(err)
		}
		testutil.MustClose(t, zw)
		if err := os.WriteFile(archive, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}

		var logs bytes.Buffer
		dest := filepath.Join(tmp, "out")
		if _, err := Extract(ctx, afs, archive, dest, WithLogger(log.New(&logs))); err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(dest, "proj", "x.txt"), "x")
		if _, err := os.Lstat(filepath.Join(dest, "proj", "link")); !os.IsNotExist(err) {
			t.Errorf("symlink entry was written: %v", err)
		}
		if !strings.Contains(logs.String(), "skipping non-regular ZIP entry") {
			t.Errorf("no warning logged, got %q", logs.String())
		}
	})

	t.Run("read-only destination", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "proj.zip")
		writeZip(t, archive, wrappedEntries())
		dest := filepath.Join(tmp, "out")
		testutil.MustMkdirAll(t, dest, 0o755)

		res, err := Extract(ctx, afero.NewReadOnlyFs(afero.NewOsFs()), archive, dest)
		if !errors.Is(err, fsop.ErrPermissionDenied) {
			t.Fatalf("Extract() error = %v, want ErrPermissionDenied", err)
		}
		if res != nil {
			t.Errorf("Extract() result = %+v, want nil", res)
		}
		if _, statErr := os.Stat(filepath.Join(dest, "proj")); !os.IsNotExist(statErr) {
			t.Error("entries written despite read-only filesystem")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "proj.zip")
		writeZip(t, archive, wrappedEntries())

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Extract(canceled, afs, archive, filepath.Join(tmp, "out"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Extract() error = %v, want context.Canceled", err)
		}
	})
}

func TestExtractStreams(t *testing.T) {
	t.Parallel()

	afs := afero.NewOsFs()
	ctx := context.Background()
	payload := "SELECT 1;\n"

	t.Run("gzip single file", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "dump.sql.gz")
		if err := os.WriteFile(archive, gzipBytes(t, []byte(payload)), 0o644); err != nil {
			t.Fatal(err)
		}

		res, err := Extract(ctx, afs, archive, filepath.Join(tmp, "out"))
		if err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(tmp, "out", "dump.sql"), payload)
		if res.Files != 1 {
			t.Errorf("Files = %d, want 1", res.Files)
		}
	})

	t.Run("tar.gz unpacks the inner tarball", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "site.tar.gz")
		if err := os.WriteFile(archive, gzipBytes(t, tarBytes(t, wrappedEntries())), 0o644); err != nil {
			t.Fatal(err)
		}
		dest := filepath.Join(tmp, "out")

		if _, err := Extract(ctx, afs, archive, dest); err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(dest, "proj", "y", "z.txt"), "z")
		if _, err := os.Stat(filepath.Join(dest, "site.tar")); !os.IsNotExist(err) {
			t.Error("intermediate tarball left behind")
		}
	})

	t.Run("tgz with leading directory removed", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "site.tgz")
		if err := os.WriteFile(archive, gzipBytes(t, tarBytes(t, wrappedEntries())), 0o644); err != nil {
			t.Fatal(err)
		}
		dest := filepath.Join(tmp, "out")

		if _, err := Extract(ctx, afs, archive, dest, WithExcludeLeadingDir(true)); err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(dest, "x.txt"), "x")
		assertNoScratch(t, dest)
	})

	t.Run("plain tar", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "site.tar")
		if err := os.WriteFile(archive, tarBytes(t, wrappedEntries()), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := Extract(ctx, afs, archive, filepath.Join(tmp, "out")); err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(tmp, "out", "proj", "x.txt"), "x")
	})

	t.Run("lz4 single file", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		var buf bytes.Buffer
		lw := lz4.NewWriter(&buf)
		if _, err := lw.Write([]byte(payload)); err != nil {
			t.Fatal(err)
		}
		testutil.MustClose(t, lw)
		archive := filepath.Join(tmp, "dump.sql.lz4")
		if err := os.WriteFile(archive, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := Extract(ctx, afs, archive, filepath.Join(tmp, "out")); err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(tmp, "out", "dump.sql"), payload)
	})

	t.Run("snappy single file", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		var buf bytes.Buffer
		sw := snappy.NewBufferedWriter(&buf)
		if _, err := sw.Write([]byte(payload)); err != nil {
			t.Fatal(err)
		}
		testutil.MustClose(t, sw)
		archive := filepath.Join(tmp, "dump.sql.sz")
		if err := os.WriteFile(archive, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := Extract(ctx, afs, archive, filepath.Join(tmp, "out")); err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		assertContent(t, filepath.Join(tmp, "out", "dump.sql"), payload)
	})

	t.Run("corrupt rar", func(t *testing.T) {
		t.Parallel()

		tmp := t.TempDir()
		archive := filepath.Join(tmp, "photos.rar")
		if err := os.WriteFile(archive, []byte("definitely not rar"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Extract(ctx, afs, archive, filepath.Join(tmp, "out"))
		if !errors.Is(err, fsop.ErrIO) {
			t.Errorf("Extract() error = %v, want ErrIO", err)
		}
	})
}

func TestExtractRejectsInput(t *testing.T) {
	t.Parallel()

	afs := afero.NewOsFs()
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
		kind  error
	}{
		{
			name:  "missing archive",
			setup: func(t *testing.T, dir string) string { return filepath.Join(dir, "missing.zip") },
			kind:  fsop.ErrNotFound,
		},
		{
			name: "multipart part",
			setup: func(t *testing.T, dir string) string {
				p := filepath.Join(dir, "big.zip.001")
				if err := os.WriteFile(p, []byte("part"), 0o644); err != nil {
					t.Fatal(err)
				}
				return p
			},
			kind: fsop.ErrUnsupportedInput,
		},
		{
			name: "unknown extension",
			setup: func(t *testing.T, dir string) string {
				p := filepath.Join(dir, "notes.txt")
				if err := os.WriteFile(p, []byte("hi"), 0o644); err != nil {
					t.Fatal(err)
				}
				return p
			},
			kind: fsop.ErrUnsupportedInput,
		},
		{
			name: "directory named like an archive",
			setup: func(t *testing.T, dir string) string {
				p := filepath.Join(dir, "folder.zip")
				testutil.MustMkdirAll(t, p, 0o755)
				return p
			},
			kind: fsop.ErrUnsupportedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmp := t.TempDir()
			archive := tt.setup(t, tmp)
			dest := filepath.Join(tmp, "out")

			_, err := Extract(ctx, afs, archive, dest)
			if !errors.Is(err, tt.kind) {
				t.Errorf("Extract() error = %v, want %v", err, tt.kind)
			}
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Error("destination created for rejected input")
			}
		})
	}
}
