package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const profileFileName = "profile.json"

type profileFile struct {
	Credential json.RawMessage `json:"credential"`
	Username   string          `json:"username,omitempty"`
}

// FileStore keeps the credential pair in a single JSON file under the
// profile directory, the local analog of per-profile browser storage.
// Writing both fields through one atomic rename keeps them coupled.
type FileStore struct {
	path string
}

// NewFileStore builds a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("profile directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create profile directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, profileFileName)}, nil
}

// Get reads the persisted pair from disk.
func (s *FileStore) Get(_ context.Context) ([]byte, string, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("read profile: %w", err)
	}

	var profile profileFile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, "", false, fmt.Errorf("decode profile: %w", err)
	}
	if len(profile.Credential) == 0 {
		return nil, "", false, nil
	}
	return profile.Credential, profile.Username, true, nil
}

// Put writes both entries in one atomic file replacement.
func (s *FileStore) Put(_ context.Context, credential []byte, username string) error {
	if len(credential) == 0 {
		return fmt.Errorf("credential payload is required")
	}

	data, err := json.Marshal(profileFile{Credential: credential, Username: username})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

// Clear deletes the profile file if present.
func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove profile: %w", err)
	}
	return nil
}
