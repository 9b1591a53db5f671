// Package fsops implements the small file and directory helpers behind
// `mcg fs`. Every failure is reported as a pkg/errors taxonomy error.
package fsops

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/mcgeq/mcg/pkg/errors"
)

// EntryType tells whether an operation touched a file or a directory.
type EntryType int

const (
	File EntryType = iota
	Dir
)

func (t EntryType) String() string {
	if t == Dir {
		return "directory"
	}
	return "file"
}

var errNeedsRecursive = errors.New("is a directory (recursive copy disabled)")

// Create makes path. A trailing separator, or an existing directory, means
// a directory; anything else is an empty file. With parents, missing parent
// directories are created.
func Create(path string, parents bool) (EntryType, error) {
	if isDirPath(path) || isDir(path) {
		mkdir := os.Mkdir
		if parents {
			mkdir = os.MkdirAll
		}
		if err := mkdir(path, 0755); err != nil && !(parents && errors.Is(err, fs.ErrExist)) {
			return Dir, errs.CreateDirFailed(path, err)
		}
		return Dir, nil
	}

	if parents {
		if parent := filepath.Dir(path); !exists(parent) {
			if err := os.MkdirAll(parent, 0755); err != nil {
				return File, errs.CreateDirFailed(parent, err)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return File, errs.CreateFileFailed(path, err)
	}
	if err := f.Close(); err != nil {
		return File, errs.CreateFileFailed(path, err)
	}
	return File, nil
}

// Remove deletes a file, or a directory. Non-empty directories need
// recursive.
func Remove(path string, recursive bool) (EntryType, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File, errs.PathNotFound(path)
		}
		return File, errs.RemoveFailed(path, err)
	}

	if !info.IsDir() {
		if err := os.Remove(path); err != nil {
			return File, errs.RemoveFailed(path, err)
		}
		return File, nil
	}

	remove := os.Remove
	if recursive {
		remove = os.RemoveAll
	}
	if err := remove(path); err != nil {
		return Dir, errs.RemoveFailed(path, err)
	}
	return Dir, nil
}

// Copy copies a file, or a directory tree when recursive is set. File modes
// are preserved; symlinks inside a tree are recreated, not followed.
func Copy(src, dst string, recursive bool) (EntryType, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File, errs.PathNotFound(src)
		}
		return File, errs.CopyFailed(src, dst, err)
	}

	if !info.IsDir() {
		if isDir(dst) {
			dst = filepath.Join(dst, filepath.Base(src))
		}
		if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
			return File, errs.CopyFailed(src, dst, err)
		}
		return File, nil
	}

	if !recursive {
		return Dir, errs.CopyFailed(src, dst, errNeedsRecursive)
	}
	if err := copyTree(src, dst); err != nil {
		return Dir, errs.CopyFailed(src, dst, err)
	}
	return Dir, nil
}

// Move renames src to dst. Moving onto an existing directory places src
// inside it.
func Move(src, dst string) (EntryType, error) {
	info, err := os.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File, errs.PathNotFound(src)
		}
		return File, errs.MoveFailed(src, dst, err)
	}

	typ := File
	if info.IsDir() {
		typ = Dir
	}

	if isDir(dst) {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	if err := os.Rename(src, dst); err != nil {
		return typ, errs.MoveFailed(src, dst, err)
	}
	return typ, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func isDirPath(path string) bool {
	return strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
