package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	// StorageKey names the persisted identity in the keychain and on disk.
	StorageKey = "ts_auth"

	keyringService = "motorista"
	fileName       = StorageKey + ".json"
	fileMode       = 0600
)

// Store persists Info in the OS keychain and falls back to a file in dir
// when the keychain is unavailable.
type Store struct {
	dir string
}

// NewStore returns a store that uses dir for the fallback file.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) filePath() string {
	return filepath.Join(s.dir, fileName)
}

// Load returns the stored identity. Missing or malformed data yields an
// empty Info.
func (s *Store) Load() Info {
	v, err := keyring.Get(keyringService, StorageKey)
	if err == nil && v != "" {
		return decode([]byte(v))
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain read failed", "error", err)
	}

	b, err := os.ReadFile(s.filePath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("reading auth file", "path", s.filePath(), "error", err)
		}
		return Info{}
	}

	info := decode(b)
	if info.IsEmpty() {
		return info
	}

	// migrate to keychain
	if migrateErr := keyring.Set(keyringService, StorageKey, string(b)); migrateErr == nil {
		slog.Info("migrated auth info from file to OS keychain")
		_ = os.Remove(s.filePath())
	}

	return info
}

// Save merges the non-empty fields of info over the stored value and
// returns the result.
func (s *Store) Save(info Info) (Info, error) {
	merged := s.Load().merge(info)

	b, err := json.Marshal(merged)
	if err != nil {
		return Info{}, fmt.Errorf("encoding auth info: %w", err)
	}

	if err := keyring.Set(keyringService, StorageKey, string(b)); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		if err := s.saveFile(b); err != nil {
			return Info{}, err
		}
		return merged, nil
	}

	// clean up legacy file if it exists
	_ = os.Remove(s.filePath())

	return merged, nil
}

// Clear removes the identity from the keychain and the file.
func (s *Store) Clear() error {
	if err := keyring.Delete(keyringService, StorageKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "error", err)
	}
	if err := os.Remove(s.filePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", s.filePath(), err)
	}
	return nil
}

func (s *Store) saveFile(b []byte) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating dir %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.filePath(), b, fileMode); err != nil {
		return fmt.Errorf("writing auth file %s: %w", s.filePath(), err)
	}
	return nil
}

func decode(b []byte) Info {
	var info Info
	if err := json.Unmarshal(b, &info); err != nil {
		slog.Debug("malformed auth info", "error", err)
		return Info{}
	}
	info.Role = ParseRole(string(info.Role))
	return info
}
