// Copyright (c) 2026 SafeMine. All rights reserved.

/*
Package storage provides object storage for user-uploaded files.

The package speaks the casdoor oss.StorageInterface so the backing store can
be swapped for a cloud bucket without touching the callers. The default
backend keeps objects on the local disk, which is what single-node dashboard
deployments run with.
*/
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/casdoor/oss"
)

// LocalFileSystem stores objects under a base folder on the local disk.
// It implements oss.StorageInterface.
type LocalFileSystem struct {
	folder string
}

// NewLocalFileSystem creates the base folder if needed and returns a store
// rooted at its absolute path.
func NewLocalFileSystem(folder string) (*LocalFileSystem, error) {

	absolutePath, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolving storage folder %q: %w", folder, err)
	}

	if err := os.MkdirAll(absolutePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage folder %q: %w", absolutePath, err)
	}

	return &LocalFileSystem{folder: absolutePath}, nil
}

// fullPath resolves a stored object path against the base folder.
func (fs *LocalFileSystem) fullPath(path string) string {
	if strings.HasPrefix(path, fs.folder) {
		return path
	}
	resolved, _ := filepath.Abs(filepath.Join(fs.folder, path))
	return resolved
}

// Get opens the stored object as a file.
func (fs *LocalFileSystem) Get(path string) (*os.File, error) {
	return os.Open(fs.fullPath(path))
}

// GetStream opens the stored object as a reader.
func (fs *LocalFileSystem) GetStream(path string) (io.ReadCloser, error) {
	return os.Open(fs.fullPath(path))
}

// Put writes the reader's contents to the given path, creating parent
// directories as needed.
func (fs *LocalFileSystem) Put(path string, reader io.Reader) (*oss.Object, error) {

	destination := fs.fullPath(path)

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return nil, fmt.Errorf("creating parent directories for %q: %w", path, err)
	}

	file, err := os.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("creating object %q: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return nil, fmt.Errorf("writing object %q: %w", path, err)
	}

	return &oss.Object{Path: path, Name: filepath.Base(path), StorageInterface: fs}, nil
}

// Delete removes the stored object.
func (fs *LocalFileSystem) Delete(path string) error {
	return os.Remove(fs.fullPath(path))
}

// List walks the folder below the given path and returns the stored objects.
func (fs *LocalFileSystem) List(path string) ([]*oss.Object, error) {

	var objects []*oss.Object
	root := fs.fullPath(path)

	err := filepath.Walk(root, func(current string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if current == root || info.IsDir() {
			return nil
		}

		modified := info.ModTime()
		objects = append(objects, &oss.Object{
			Path:             strings.TrimPrefix(current, fs.folder),
			Name:             info.Name(),
			LastModified:     &modified,
			StorageInterface: fs,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing objects under %q: %w", path, err)
	}

	return objects, nil
}

// GetEndpoint returns the root endpoint for locally stored objects.
func (fs *LocalFileSystem) GetEndpoint() string {
	return "/"
}

// GetURL returns the path as its own URL. Local objects are served by the
// API's static file route.
func (fs *LocalFileSystem) GetURL(path string) (string, error) {
	return path, nil
}

// Folder returns the absolute base folder. The HTTP layer uses it to mount
// the static file server.
func (fs *LocalFileSystem) Folder() string {
	return fs.folder
}
