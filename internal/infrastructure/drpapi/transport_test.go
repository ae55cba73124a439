package drpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oriormedia/drp-admin/internal/domain"
	"github.com/oriormedia/drp-admin/internal/repository"
	"github.com/oriormedia/drp-admin/internal/service"
)

func newStore(t *testing.T, creds domain.Credentials) *service.CredentialStore {
	t.Helper()
	ctx := context.Background()
	storage := repository.NewMemoryCredentialStorage()
	if !creds.Empty() {
		require.NoError(t, storage.Store(ctx, creds))
	}
	return service.NewCredentialStore(ctx, storage, zap.NewNop())
}

func TestAugmenterHeaders(t *testing.T) {
	store := newStore(t, domain.Credentials{AccessToken: "h.e.s", OrganizationID: "org-1"})
	augmenter := NewAugmenter(store, "org-env")

	headers := augmenter.Headers(nil)
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Equal(t, "Bearer h.e.s", headers.Get("Authorization"))
	assert.Equal(t, "org-1", headers.Get(HeaderOrganizationID))
}

func TestAugmenterHeadersWithoutSession(t *testing.T) {
	t.Run("no session, no fallback", func(t *testing.T) {
		augmenter := NewAugmenter(newStore(t, domain.Credentials{}), "")

		headers := augmenter.Headers(nil)
		assert.Empty(t, headers.Get("Authorization"))
		assert.Empty(t, headers.Get(HeaderOrganizationID))
		assert.Equal(t, "application/json", headers.Get("Content-Type"))
	})

	t.Run("env fallback applies before login", func(t *testing.T) {
		augmenter := NewAugmenter(newStore(t, domain.Credentials{}), "org-env")

		headers := augmenter.Headers(nil)
		assert.Empty(t, headers.Get("Authorization"))
		assert.Equal(t, "org-env", headers.Get(HeaderOrganizationID))
	})
}

func TestAugmenterOrganizationIDPrecedence(t *testing.T) {
	store := newStore(t, domain.Credentials{OrganizationID: "org-1"})
	augmenter := NewAugmenter(store, "org-env")

	assert.Equal(t, "org-1", augmenter.OrganizationID(), "the store value wins over the env fallback")
}

func TestAugmenterHeaderOverrides(t *testing.T) {
	store := newStore(t, domain.Credentials{AccessToken: "h.e.s", OrganizationID: "org-1"})
	augmenter := NewAugmenter(store, "")

	overrides := http.Header{}
	overrides.Set("Content-Type", "multipart/form-data")
	overrides.Add("X-Custom", "a")
	overrides.Add("X-Custom", "b")

	headers := augmenter.Headers(overrides)
	assert.Equal(t, "multipart/form-data", headers.Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, headers.Values("X-Custom"))
	// untouched defaults survive
	assert.Equal(t, "Bearer h.e.s", headers.Get("Authorization"))
	assert.Equal(t, "org-1", headers.Get(HeaderOrganizationID))
}

func TestTransportRoundTrip(t *testing.T) {
	store := newStore(t, domain.Credentials{AccessToken: "h.e.s", OrganizationID: "org-1"})

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(NewAugmenter(store, ""), nil)}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer h.e.s", got.Get("Authorization"))
	assert.Equal(t, "org-1", got.Get(HeaderOrganizationID))
	assert.NotEmpty(t, got.Get(HeaderRequestID))
	assert.Empty(t, req.Header.Get(HeaderRequestID), "the original request must not be mutated")
}

func TestTransportKeepsCallerRequestID(t *testing.T) {
	store := newStore(t, domain.Credentials{AccessToken: "h.e.s"})

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(NewAugmenter(store, ""), nil)}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "caller-id")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "caller-id", got.Get(HeaderRequestID))
}

func TestTransportReflectsStoreChanges(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, domain.Credentials{AccessToken: "t1", OrganizationID: "org-1"})

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(NewAugmenter(store, ""), nil)}
	do := func() {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	do()
	assert.Equal(t, "Bearer t1", got.Get("Authorization"))

	store.SetSession(ctx, "t2", "org-2", nil)
	do()
	assert.Equal(t, "Bearer t2", got.Get("Authorization"))
	assert.Equal(t, "org-2", got.Get(HeaderOrganizationID))
}
