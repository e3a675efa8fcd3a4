package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// snapshotVersion is bumped when the file layout changes incompatibly.
const snapshotVersion = 1

// Snapshot is the persisted form of a Store.
type Snapshot struct {
	Version int               `yaml:"version"`
	SavedAt time.Time         `yaml:"saved_at"`
	Records map[string]Record `yaml:"records"`
}

// Snapshot captures the current records.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Records: s.GetAll(),
	}
}

// Restore puts every record of snap into the store.
func (s *Store) Restore(snap Snapshot) error {
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported credential snapshot version %d", snap.Version)
	}
	for name, rec := range snap.Records {
		if err := s.Put(name, rec); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the snapshot as YAML.
func (s *Store) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a YAML snapshot into the store.
func (s *Store) Unmarshal(data []byte) error {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}
	return s.Restore(snap)
}

// SaveFile writes the snapshot to path with 0600 permissions, replacing the
// file atomically.
func (s *Store) SaveFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// LoadFile reads a store from path. A missing file yields an empty store.
func LoadFile(path string) (*Store, error) {
	store := NewStore()
	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := store.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}
