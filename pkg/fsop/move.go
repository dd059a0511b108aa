// SPDX-License-Identifier: MPL-2.0

package fsop

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Move relocates src to dst, preserving structure.
//
// If dst does not exist, src is renamed onto it. If both are directories, the
// children of src are merged into dst recursively and the emptied src is
// removed. If dst is an existing file, it is replaced by src. A directory is
// never replaced by a file or vice versa; that yields ErrUnsupportedInput.
func Move(afs afero.Fs, src, dst string) error {
	srcInfo, err := afs.Stat(src)
	if err != nil {
		return Classify("stat", src, err)
	}

	dstInfo, err := afs.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if mkErr := afs.MkdirAll(filepath.Dir(dst), 0o755); mkErr != nil {
			return Classify("create directory", filepath.Dir(dst), mkErr)
		}
		return Classify("move entry", src, afs.Rename(src, dst))
	case err != nil:
		return Classify("stat", dst, err)
	}

	switch {
	case srcInfo.IsDir() && dstInfo.IsDir():
		return mergeDir(afs, src, dst)
	case !srcInfo.IsDir() && !dstInfo.IsDir():
		if rmErr := afs.Remove(dst); rmErr != nil {
			return Classify("replace file", dst, rmErr)
		}
		return Classify("move entry", src, afs.Rename(src, dst))
	default:
		return NewError(ErrUnsupportedInput, "move entry", src,
			fmt.Errorf("destination %s exists with a different type", dst))
	}
}

func mergeDir(afs afero.Fs, src, dst string) error {
	children, err := afero.ReadDir(afs, src)
	if err != nil {
		return Classify("list directory", src, err)
	}
	for _, child := range children {
		if err := Move(afs, filepath.Join(src, child.Name()), filepath.Join(dst, child.Name())); err != nil {
			return err
		}
	}
	return Classify("remove directory", src, afs.Remove(src))
}

// CheckWritable verifies that files can be created in dir by creating and
// removing a uniquely named check file.
func CheckWritable(afs afero.Fs, dir string) error {
	check, err := afero.TempFile(afs, dir, ".unzipper-check-*")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewError(ErrNotFound, "check writability of", dir, err)
		}
		return NewError(ErrPermissionDenied, "check writability of", dir, err)
	}
	name := check.Name()
	if err := check.Close(); err != nil {
		return Classify("close check file", name, err)
	}
	return Classify("remove check file", name, afs.Remove(name))
}

// SafeJoin resolves an in-archive entry name below root. Absolute names and
// names that climb out of root are rejected.
func SafeJoin(root, name string) (string, error) {
	cleaned := filepath.FromSlash(name)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(name, "/") || filepath.VolumeName(cleaned) != "" {
		return "", NewError(ErrUnsupportedInput, "resolve entry", name, errors.New("absolute path in archive"))
	}
	target := filepath.Join(root, cleaned)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", NewError(ErrUnsupportedInput, "resolve entry", name, errors.New("path escapes destination"))
	}
	return target, nil
}
