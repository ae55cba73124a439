package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/oriormedia/drp-admin/internal/domain"
)

// SessionState is the observable state of the session lifecycle.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateRestoring
	StateAuthenticated
	StateRefreshFailed
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshFailed:
		return "refresh_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// AuthAPI is the bare (unauthenticated) slice of the DRP auth endpoints the
// session manager drives. Login and Refresh must go out without bearer or
// tenant headers; implementations return *domain.LoginError for rejected
// credentials so the server message reaches the user.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthTokens, error)
	Logout(ctx context.Context) error
}

// StateListener observes session state transitions. Listeners are called
// synchronously, in subscription order, after each change.
type StateListener func(SessionState)

// SessionManager orchestrates login, logout, startup restoration and silent
// refresh. It is the only component that mutates the credential store's token
// fields; everything else reads the store through the request augmenter.
type SessionManager struct {
	auth   AuthAPI
	store  *CredentialStore
	logger *zap.Logger

	mu        sync.Mutex
	state     SessionState
	user      *domain.User
	listeners []StateListener

	restoreOnce sync.Once
}

// NewSessionManager creates a session manager in the Unauthenticated state.
func NewSessionManager(auth AuthAPI, store *CredentialStore, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		auth:   auth,
		store:  store,
		logger: logger,
		state:  StateUnauthenticated,
	}
}

// State returns the current session state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the published authenticated user, or nil.
func (m *SessionManager) CurrentUser() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Subscribe registers a listener for state transitions.
func (m *SessionManager) Subscribe(listener StateListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// Restore attempts session restoration, at most once per process lifetime.
// Further calls return immediately without touching the refresh endpoint
// again, no matter how often the consuming code starts up.
//
// A stored, unexpired access token restores the session directly. An expired
// or missing access token falls back to a silent refresh when a refresh token
// exists; a failed refresh clears the whole credential record and reports
// domain.ErrSessionExpired. With nothing stored the manager simply stays
// unauthenticated.
func (m *SessionManager) Restore(ctx context.Context) error {
	var err error
	m.restoreOnce.Do(func() {
		err = m.restore(ctx)
	})
	return err
}

func (m *SessionManager) restore(ctx context.Context) error {
	if token := m.store.AccessToken(); token != "" && !domain.IsTokenExpired(token) {
		claims, err := domain.DecodeAccessToken(token)
		if err != nil {
			// unreachable after the expiry check, but fail closed anyway
			m.store.Clear(ctx)
			m.transition(StateUnauthenticated)
			return err
		}
		m.publishUser(domain.UserFromClaims(claims))
		m.transition(StateAuthenticated)
		m.logger.Info("session restored from stored access token")
		return nil
	}

	refreshToken := m.store.RefreshToken()
	if refreshToken == "" {
		m.transition(StateUnauthenticated)
		return nil
	}

	m.transition(StateRestoring)
	tokens, err := m.auth.Refresh(ctx, refreshToken)
	if err != nil {
		// a failed refresh must never leave a stale token behind
		m.logger.Warn("silent refresh failed, clearing session", zap.Error(err))
		m.transition(StateRefreshFailed)
		m.store.Clear(ctx)
		m.publishUser(nil)
		m.transition(StateUnauthenticated)
		return domain.ErrSessionExpired
	}

	user, organizationID := resolveIdentity(tokens.AccessToken, "")
	var rotated *string
	if tokens.RefreshToken != "" {
		rotated = &tokens.RefreshToken
	}
	m.store.SetSession(ctx, tokens.AccessToken, organizationID, rotated)
	m.publishUser(user)
	m.transition(StateAuthenticated)
	m.logger.Info("session restored via refresh", zap.String("user_id", user.ID))
	return nil
}

// Login exchanges credentials for a session. The refresh token is persisted
// only when rememberMe is set; otherwise any previously stored refresh token
// is cleared, so the session cannot outlive the access token. On failure the
// credential store is left untouched.
func (m *SessionManager) Login(ctx context.Context, email, password string, rememberMe bool) (*domain.User, error) {
	tokens, err := m.auth.Login(ctx, email, password)
	if err != nil {
		var loginErr *domain.LoginError
		if errors.As(err, &loginErr) {
			m.logger.Warn("login rejected", zap.String("email", email))
			return nil, err
		}
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	user, organizationID := resolveIdentity(tokens.AccessToken, email)

	refreshToken := &tokens.RefreshToken
	if !rememberMe {
		empty := ""
		refreshToken = &empty
	}
	m.store.SetSession(ctx, tokens.AccessToken, organizationID, refreshToken)
	m.publishUser(user)
	m.transition(StateAuthenticated)

	m.logger.Info("login succeeded",
		zap.String("user_id", user.ID),
		zap.String("organization_id", organizationID),
		zap.Bool("persistent", rememberMe),
	)
	return user, nil
}

// Logout clears the session. The server is notified best-effort; a failed
// notification never blocks the local logout.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.logger.Warn("logout notification failed", zap.Error(err))
	}
	m.store.Clear(ctx)
	m.publishUser(nil)
	m.transition(StateUnauthenticated)
	m.logger.Info("logged out")
}

// SwitchOrganization re-scopes all subsequent requests to another tenant.
// Only users with cross-tenant visibility may switch; tokens are not touched
// and tenant-scoped data cached elsewhere is the caller's to invalidate.
func (m *SessionManager) SwitchOrganization(ctx context.Context, organizationID string) error {
	m.mu.Lock()
	state, user := m.state, m.user
	m.mu.Unlock()

	if state != StateAuthenticated || user == nil {
		return domain.ErrNotAuthenticated
	}
	if !user.CanSwitchOrganization() {
		return domain.ErrForbidden
	}

	m.store.SetOrganizationID(ctx, organizationID)
	m.logger.Info("organization context switched", zap.String("organization_id", organizationID))
	return nil
}

// resolveIdentity derives the user and tenant scope from access-token claims.
// A token with unreadable claims still opens a session: the organization id
// resolves to empty (the env fallback applies downstream) and the user
// carries only the login email.
func resolveIdentity(accessToken, email string) (*domain.User, string) {
	claims, err := domain.DecodeAccessToken(accessToken)
	if err != nil {
		return &domain.User{Email: email}, ""
	}
	user := domain.UserFromClaims(claims)
	if user.Email == "" {
		user.Email = email
	}
	return user, user.OrganizationID
}

func (m *SessionManager) publishUser(user *domain.User) {
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
}

func (m *SessionManager) transition(next SessionState) {
	m.mu.Lock()
	if m.state == next {
		m.mu.Unlock()
		return
	}
	m.state = next
	listeners := make([]StateListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(next)
	}
}
