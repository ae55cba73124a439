package domain

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryMargin is subtracted from the exp claim so a token is treated as
// expired slightly before the server would reject it.
const expiryMargin = 60 * time.Second

// Legacy claim URIs issued by the older DRP backend. They are checked before
// the plain keys so both naming conventions keep working.
const (
	legacyRoleClaim  = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	legacyEmailClaim = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
)

// Claims holds the decoded payload of a DRP access token.
//
// No signature check happens on the client: the server is responsible for
// rejecting tampered tokens, the client only reads convenience claims for
// display and tenant scoping.
type Claims struct {
	raw jwt.MapClaims
}

// DecodeAccessToken parses the payload segment of a JWT without verifying it.
// Any parse failure at any stage yields ErrMalformedToken; no partial claims
// are ever returned.
func DecodeAccessToken(token string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrMalformedToken
	}

	return &Claims{raw: claims}, nil
}

// stringClaim returns the first non-empty string value among the candidate
// keys, or "" when none is present.
func (c *Claims) stringClaim(keys ...string) string {
	for _, key := range keys {
		if v, ok := c.raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// SubjectID returns the user id claim.
func (c *Claims) SubjectID() string {
	return c.stringClaim("userId", "sub")
}

// OrganizationID returns the tenant claim used for the X-Organization-Id header.
func (c *Claims) OrganizationID() string {
	return c.stringClaim("organizationId", "organization_id")
}

// Role returns the role claim (e.g. "SuperAdmin", "Admin", "Driver").
func (c *Claims) Role() string {
	return c.stringClaim(legacyRoleClaim, "role")
}

// Email returns the email claim.
func (c *Claims) Email() string {
	return c.stringClaim(legacyEmailClaim, "email")
}

// ExpiresAt returns the exp claim, and false when the token has none or it is
// not a valid numeric date.
func (c *Claims) ExpiresAt() (time.Time, bool) {
	exp, err := c.raw.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token is expired as of now, with the safety
// margin applied. A token without an exp claim counts as expired.
func (c *Claims) Expired(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	if !ok {
		return true
	}
	return !now.Before(exp.Add(-expiryMargin))
}

// IsTokenExpired reports whether the token is expired as of now. Malformed
// tokens count as expired so callers always fail closed to re-authentication.
func IsTokenExpired(token string) bool {
	claims, err := DecodeAccessToken(token)
	if err != nil {
		return true
	}
	return claims.Expired(time.Now())
}
