// Copyright (c) 2026 SafeMine. All rights reserved.

package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/casdoor/oss"
)

// AvatarURLPrefix is the public URL path under which avatar objects are served.
const AvatarURLPrefix = "/avatars/"

// AvatarStore saves and removes profile pictures on an object storage backend.
type AvatarStore struct {
	backend oss.StorageInterface
}

// NewAvatarStore wraps an object storage backend for avatar handling.
func NewAvatarStore(backend oss.StorageInterface) *AvatarStore {
	return &AvatarStore{backend: backend}
}

// Save stores the avatar bytes under the given object name and returns the
// public URL the profile should reference.
func (store *AvatarStore) Save(objectName string, reader io.Reader) (string, error) {

	if _, err := store.backend.Put(objectName, reader); err != nil {
		return "", fmt.Errorf("storing avatar %q: %w", objectName, err)
	}

	return AvatarURLPrefix + objectName, nil
}

// Remove deletes the object behind a previously issued avatar URL.
// A missing object is not an error; the caller's goal is the absence of the
// file, and retried deletes must stay idempotent.
func (store *AvatarStore) Remove(avatarURL string) error {

	objectName := ObjectNameFromURL(avatarURL)
	if objectName == "" {
		return nil
	}

	if err := store.backend.Delete(objectName); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting avatar %q: %w", objectName, err)
	}

	return nil
}

// ObjectNameFromURL extracts the stored object name from an avatar URL.
// URLs that were not issued by this store yield an empty string.
func ObjectNameFromURL(avatarURL string) string {

	if !strings.HasPrefix(avatarURL, AvatarURLPrefix) {
		return ""
	}

	objectName := path.Base(strings.TrimPrefix(avatarURL, AvatarURLPrefix))
	if objectName == "." || objectName == "/" {
		return ""
	}

	return objectName
}
