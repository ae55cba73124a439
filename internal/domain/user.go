package domain

// User is the authenticated identity published after login or session
// restoration. It is derived from access-token claims each time a session is
// established and never stored independently.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
}

// Role constants
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleDriver     = "Driver"
	RoleSafety     = "Safety"
	RoleOperations = "Operations"
)

// CanSwitchOrganization reports whether the user may re-scope requests to
// another tenant. Cross-tenant visibility is reserved for super admins.
func (u *User) CanSwitchOrganization() bool {
	return u.Role == RoleSuperAdmin
}

// UserFromClaims builds the user view model from decoded token claims.
func UserFromClaims(claims *Claims) *User {
	return &User{
		ID:             claims.SubjectID(),
		Email:          claims.Email(),
		Role:           claims.Role(),
		OrganizationID: claims.OrganizationID(),
	}
}
