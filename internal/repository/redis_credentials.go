package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/oriormedia/drp-admin/internal/domain"
)

// Key suffixes for the three independent credential entries.
const (
	accessTokenKey    = "access_token"
	refreshTokenKey   = "refresh_token"
	organizationIDKey = "organization_id"
)

// RedisCredentialStorage persists the credential record in Redis. It is used
// when the session core runs inside a shared gateway rather than a developer
// workstation, so several workers see the same current token and tenant.
type RedisCredentialStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisCredentialStorage creates a Redis-backed credential storage. The
// prefix namespaces the three entries, e.g. "drp:session:<principal>".
func NewRedisCredentialStorage(client *redis.Client, prefix string) *RedisCredentialStorage {
	return &RedisCredentialStorage{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisCredentialStorage) key(suffix string) string {
	return s.prefix + ":" + suffix
}

// Load reads the three entries in one round-trip. Missing entries read as
// empty strings, never as an error.
func (s *RedisCredentialStorage) Load(ctx context.Context) (domain.Credentials, error) {
	values, err := s.client.MGet(ctx,
		s.key(accessTokenKey),
		s.key(refreshTokenKey),
		s.key(organizationIDKey),
	).Result()
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	asString := func(v interface{}) string {
		str, _ := v.(string)
		return str
	}
	return domain.Credentials{
		AccessToken:    asString(values[0]),
		RefreshToken:   asString(values[1]),
		OrganizationID: asString(values[2]),
	}, nil
}

// Store writes all three entries in a single transaction so a reader never
// observes a half-written record. Empty fields are deleted rather than stored
// as empty strings.
func (s *RedisCredentialStorage) Store(ctx context.Context, creds domain.Credentials) error {
	pipe := s.client.TxPipeline()

	set := func(suffix, value string) {
		if value != "" {
			pipe.Set(ctx, s.key(suffix), value, 0)
		} else {
			pipe.Del(ctx, s.key(suffix))
		}
	}
	set(accessTokenKey, creds.AccessToken)
	set(refreshTokenKey, creds.RefreshToken)
	set(organizationIDKey, creds.OrganizationID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

// Clear deletes all three entries.
func (s *RedisCredentialStorage) Clear(ctx context.Context) error {
	err := s.client.Del(ctx,
		s.key(accessTokenKey),
		s.key(refreshTokenKey),
		s.key(organizationIDKey),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
