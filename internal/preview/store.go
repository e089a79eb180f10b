// Package preview keeps JPEG previews of scanned pages, keyed by content digest.
package preview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Store persists preview bytes under a content-addressed key.
type Store interface {
	// PutIfAbsent writes data under key unless it already exists.
	// Concurrent callers with the same key never observe a partial file.
	PutIfAbsent(key string, data []byte) (created bool, err error)
	Path(key string) string
}

var reKey = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// FSStore is a Store backed by a directory.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// PutIfAbsent writes to a temp file and links it into place, so the final
// name appears atomically and a second writer sees os.ErrExist.
func (s *FSStore) PutIfAbsent(key string, data []byte) (bool, error) {
	if !reKey.MatchString(key) {
		return false, fmt.Errorf("invalid preview key %q", key)
	}
	dst := s.Path(key)
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+key+"-*")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}

	if err := os.Link(tmpName, dst); err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
