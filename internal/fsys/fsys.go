// SPDX-License-Identifier: MPL-2.0

package fsys

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// DirPerm is the permission used for directories created by stages.
	DirPerm os.FileMode = 0o755
	// FilePerm is the permission used for files written by stages.
	FilePerm os.FileMode = 0o644
)

type (
	// FileSystem redirects all I/O performed by the build pipeline.
	FileSystem interface {
		MkdirAll(path string) error
		ReadFile(path string) ([]byte, error)
		// RemoveAll removes path and any children. A missing path is not an error.
		RemoveAll(path string) error
		WriteFile(path string, data []byte) error
		ReadDir(path string) ([]fs.DirEntry, error)
		// Realpath returns the absolute path with symbolic links evaluated
		// where the underlying filesystem supports them.
		Realpath(path string) (string, error)
		Stat(path string) (fs.FileInfo, error)
	}

	// Afero adapts an afero.Fs to FileSystem.
	Afero struct {
		fs afero.Fs
	}
)

// OS returns a FileSystem over the host filesystem.
func OS() *Afero {
	return &Afero{fs: afero.NewOsFs()}
}

// Memory returns an empty in-memory FileSystem.
func Memory() *Afero {
	return &Afero{fs: afero.NewMemMapFs()}
}

// New wraps an arbitrary afero.Fs.
func New(base afero.Fs) *Afero {
	return &Afero{fs: base}
}

// Fs exposes the underlying afero filesystem.
func (a *Afero) Fs() afero.Fs {
	return a.fs
}

func (a *Afero) MkdirAll(path string) error {
	return a.fs.MkdirAll(path, DirPerm)
}

func (a *Afero) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(a.fs, path)
}

func (a *Afero) RemoveAll(path string) error {
	err := a.fs.RemoveAll(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (a *Afero) WriteFile(path string, data []byte) error {
	return afero.WriteFile(a.fs, path, data, FilePerm)
}

func (a *Afero) ReadDir(path string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(a.fs, path)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

func (a *Afero) Realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if _, ok := a.fs.(*afero.OsFs); ok {
		return filepath.EvalSymlinks(abs)
	}
	if _, err := a.fs.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (a *Afero) Stat(path string) (fs.FileInfo, error) {
	return a.fs.Stat(path)
}

// Exists reports whether path exists on fsys.
func Exists(fsys FileSystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// IsFile reports whether path exists and is a regular file.
func IsFile(fsys FileSystem, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path exists and is a directory.
func IsDir(fsys FileSystem, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}
