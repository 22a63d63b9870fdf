package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirStore keeps snapshots as files under a directory. Names may contain
// slashes; they become subdirectories.
type DirStore struct {
	dir string
}

// NewDirStore creates the directory if needed and returns a store rooted
// there.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storeError("create", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name)+Ext)
}

// Get reads a snapshot.
func (s *DirStore) Get(_ context.Context, name string) ([]byte, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeError("read", name, err)
	}
	return data, nil
}

// Put writes a snapshot through a temp file so readers never see a partial
// write.
func (s *DirStore) Put(_ context.Context, name string, data []byte) error {
	if err := ValidName(name); err != nil {
		return err
	}
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return storeError("write", name, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return storeError("write", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return storeError("write", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return storeError("write", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return storeError("write", name, err)
	}
	return nil
}

// List walks the directory for snapshot files.
func (s *DirStore) List(_ context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, Ext) {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), Ext))
		return nil
	})
	if err != nil {
		return nil, storeError("list", s.dir, err)
	}
	sort.Strings(names)
	return names, nil
}
