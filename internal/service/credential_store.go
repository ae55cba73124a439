package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/oriormedia/drp-admin/internal/domain"
)

// CredentialStore is the single source of truth for the current access token,
// refresh token and organization id. Reads are served from the in-memory
// cache only; durable storage is read once at construction to seed the cache
// and written through on every mutation.
//
// Storage write failures are swallowed: the in-memory value stays
// authoritative for the rest of the process lifetime. Losing persistence must
// never break an active session.
type CredentialStore struct {
	mu      sync.RWMutex
	storage domain.CredentialStorage
	logger  *zap.Logger
	creds   domain.Credentials
}

// NewCredentialStore seeds the store from durable storage. An unavailable or
// corrupt storage seeds an empty record instead of failing.
func NewCredentialStore(ctx context.Context, storage domain.CredentialStorage, logger *zap.Logger) *CredentialStore {
	creds, err := storage.Load(ctx)
	if err != nil {
		logger.Warn("failed to load stored credentials, starting unauthenticated", zap.Error(err))
		creds = domain.Credentials{}
	}
	return &CredentialStore{
		storage: storage,
		logger:  logger,
		creds:   creds,
	}
}

// AccessToken returns the current bearer credential, or "" when logged out.
func (s *CredentialStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// RefreshToken returns the stored refresh token, or "" when the session was
// not opened with persistence.
func (s *CredentialStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.RefreshToken
}

// OrganizationID returns the active tenant scope, or "" when unresolved.
func (s *CredentialStore) OrganizationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.OrganizationID
}

// Credentials returns a snapshot of the whole record.
func (s *CredentialStore) Credentials() domain.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// SetSession updates the access token and organization id in memory and in
// durable storage in the same call.
//
// refreshToken is tri-state: nil leaves the stored refresh token untouched
// (silent refresh rotates the access token without knowing the refresh
// token), a pointer to "" clears it, and a pointer to a non-empty value
// replaces it.
func (s *CredentialStore) SetSession(ctx context.Context, accessToken, organizationID string, refreshToken *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds.AccessToken = accessToken
	s.creds.OrganizationID = organizationID
	if refreshToken != nil {
		s.creds.RefreshToken = *refreshToken
	}
	s.persistLocked(ctx)
}

// SetOrganizationID updates only the tenant scope, leaving both tokens alone.
func (s *CredentialStore) SetOrganizationID(ctx context.Context, organizationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds.OrganizationID = organizationID
	s.persistLocked(ctx)
}

// Clear removes the whole record from memory and durable storage. Idempotent.
func (s *CredentialStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = domain.Credentials{}
	if err := s.storage.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear stored credentials", zap.Error(err))
	}
}

func (s *CredentialStore) persistLocked(ctx context.Context) {
	if err := s.storage.Store(ctx, s.creds); err != nil {
		s.logger.Warn("failed to persist credentials, in-memory session continues", zap.Error(err))
	}
}
