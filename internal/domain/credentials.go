package domain

import "context"

// Credentials is the credential record every outbound API call depends on.
// All three fields may be empty; RefreshToken is set only when the user asked
// for a persistent session at login.
type Credentials struct {
	AccessToken    string `json:"access_token,omitempty"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// Empty reports whether no field is set.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.OrganizationID == ""
}

// CredentialStorage is the durable backing of the credential store. It is
// only read once at startup to seed the in-memory cache; after that it is a
// write-through target. Implementations must treat Clear as idempotent.
type CredentialStorage interface {
	// Load reads the stored credential record. A missing record is not an
	// error: implementations return empty Credentials and a nil error.
	Load(ctx context.Context) (Credentials, error)

	// Store persists the full credential record, replacing whatever was there.
	Store(ctx context.Context, creds Credentials) error

	// Clear removes the stored record.
	Clear(ctx context.Context) error
}
