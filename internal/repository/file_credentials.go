package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oriormedia/drp-admin/internal/domain"
)

// FileCredentialStorage persists the credential record as a JSON file with
// owner-only permissions. It backs interactive drpctl sessions so a new
// process does not force re-login.
type FileCredentialStorage struct {
	path string
}

// NewFileCredentialStorage creates a file-backed credential storage at path.
func NewFileCredentialStorage(path string) *FileCredentialStorage {
	return &FileCredentialStorage{path: path}
}

// Load reads the stored record. A missing file yields empty credentials.
func (s *FileCredentialStorage) Load(ctx context.Context) (domain.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Credentials{}, nil
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return creds, nil
}

// Store writes the record atomically via a temp file rename.
func (s *FileCredentialStorage) Store(ctx context.Context, creds domain.Credentials) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace credentials file: %w", err)
	}
	return nil
}

// Clear removes the credentials file. Removing an already-missing file is not
// an error.
func (s *FileCredentialStorage) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
