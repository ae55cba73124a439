package drpapi

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/oriormedia/drp-admin/internal/service"
)

// Augmenter derives the default header set for authenticated API calls from
// the current credential store state. It holds no state of its own: the same
// store the session manager writes is read on every call, so a login, refresh
// or tenant switch is visible on the very next request.
type Augmenter struct {
	store        *service.CredentialStore
	defaultOrgID string
}

// NewAugmenter creates an augmenter. defaultOrgID is the environment-level
// tenant fallback used only before a session resolves an organization.
func NewAugmenter(store *service.CredentialStore, defaultOrgID string) *Augmenter {
	return &Augmenter{
		store:        store,
		defaultOrgID: defaultOrgID,
	}
}

// OrganizationID resolves the tenant scope: the store value wins, the env
// fallback applies only while the store is empty (e.g. pre-login calls).
func (a *Augmenter) OrganizationID() string {
	if id := a.store.OrganizationID(); id != "" {
		return id
	}
	return a.defaultOrgID
}

// Headers returns the full header set to send: JSON content negotiation,
// bearer token and tenant header when resolvable, with caller-supplied
// overrides taking precedence key by key.
func (a *Augmenter) Headers(overrides http.Header) http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	if token := a.store.AccessToken(); token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}
	if orgID := a.OrganizationID(); orgID != "" {
		headers.Set(HeaderOrganizationID, orgID)
	}

	for key, values := range overrides {
		headers.Del(key)
		for _, value := range values {
			headers.Add(key, value)
		}
	}
	return headers
}

// Transport is an http.RoundTripper that applies the augmenter to every
// outbound request and stamps a fresh request id for correlation. Headers
// already set on the request are treated as per-call overrides.
type Transport struct {
	augmenter *Augmenter
	base      http.RoundTripper
}

// NewTransport wraps base (http.DefaultTransport when nil) with the augmenter.
func NewTransport(augmenter *Augmenter, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		augmenter: augmenter,
		base:      base,
	}
}

// RoundTrip implements http.RoundTripper. The request is cloned before
// mutation, as required by the RoundTripper contract.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header = t.augmenter.Headers(req.Header)
	if clone.Header.Get(HeaderRequestID) == "" {
		clone.Header.Set(HeaderRequestID, ulid.Make().String())
	}
	return t.base.RoundTrip(clone)
}
