package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriormedia/drp-admin/internal/domain"
)

var sample = domain.Credentials{
	AccessToken:    "h.e.s",
	RefreshToken:   "r1",
	OrganizationID: "org-1",
}

func TestFileCredentialStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "credentials.json")
	storage := NewFileCredentialStorage(path)

	// missing file reads as empty, not as an error
	creds, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	require.NoError(t, storage.Store(ctx, sample))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	creds, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, creds)

	require.NoError(t, storage.Clear(ctx))
	require.NoError(t, storage.Clear(ctx)) // idempotent

	creds, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}

func TestFileCredentialStorageCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileCredentialStorage(path).Load(ctx)
	assert.Error(t, err)
}

func TestRedisCredentialStorage(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	storage := NewRedisCredentialStorage(client, "drp:session:test")

	creds, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	require.NoError(t, storage.Store(ctx, sample))

	creds, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, creds)

	// storing a record without a refresh token must delete the old entry
	rotated := domain.Credentials{AccessToken: "h2.e2.s2", OrganizationID: "org-1"}
	require.NoError(t, storage.Store(ctx, rotated))

	creds, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rotated, creds)
	assert.False(t, mr.Exists("drp:session:test:refresh_token"))

	require.NoError(t, storage.Clear(ctx))
	require.NoError(t, storage.Clear(ctx))

	creds, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}

func TestMemoryCredentialStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryCredentialStorage()

	creds, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	require.NoError(t, storage.Store(ctx, sample))
	creds, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, creds)

	require.NoError(t, storage.Clear(ctx))
	creds, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}
