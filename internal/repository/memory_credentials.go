package repository

import (
	"context"
	"sync"

	"github.com/oriormedia/drp-admin/internal/domain"
)

// MemoryCredentialStorage keeps the record in process memory only. It backs
// sessions that should not survive the process (rememberMe declined at the
// storage level) and is the storage of choice in tests.
type MemoryCredentialStorage struct {
	mu    sync.Mutex
	creds domain.Credentials
}

// NewMemoryCredentialStorage creates an empty in-process credential storage.
func NewMemoryCredentialStorage() *MemoryCredentialStorage {
	return &MemoryCredentialStorage{}
}

func (s *MemoryCredentialStorage) Load(ctx context.Context) (domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemoryCredentialStorage) Store(ctx context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemoryCredentialStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = domain.Credentials{}
	return nil
}
