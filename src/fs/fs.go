// Package fs provides various filesystem helpers.
package fs

import (
	"io"
	"os"
	"path/filepath"
)

// DirPermissions are the default permission bits we apply to directories.
const DirPermissions = os.ModeDir | 0775

// EnsureDir ensures that the given directory exists. It's not an error if it already does.
func EnsureDir(dir string) (created bool, err error) {
	if PathExists(dir) {
		return false, nil
	}
	return true, os.MkdirAll(dir, DirPermissions)
}

// PathExists returns true if the given path exists, as a file or a directory.
func PathExists(filename string) bool {
	_, err := os.Lstat(filename)
	return err == nil
}

// WriteFile writes data from a reader to the file named 'to', with an attempt to perform
// a copy & rename to avoid chaos if anything goes wrong partway.
func WriteFile(fromFile io.Reader, to string, mode os.FileMode) error {
	if err := os.RemoveAll(to); err != nil {
		return err
	}
	dir, file := filepath.Split(to)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return err
	}
	tempFile, err := os.CreateTemp(dir, file)
	if err != nil {
		return err
	}
	if _, err := io.Copy(tempFile, fromFile); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	// OK, now file is written; adjust permissions appropriately.
	if mode == 0 {
		mode = 0664
	}
	if err := os.Chmod(tempFile.Name(), mode); err != nil {
		return err
	}
	// And move it to its final destination.
	return os.Rename(tempFile.Name(), to)
}

// RenameFile moves a file within a directory, creating any parent directories the new name needs.
func RenameFile(dir, from, to string) error {
	dest := filepath.Join(dir, to)
	if err := os.MkdirAll(filepath.Dir(dest), DirPermissions); err != nil {
		return err
	}
	return os.Rename(filepath.Join(dir, from), dest)
}
