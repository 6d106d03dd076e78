package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coachboard/coachboard-client/internal/models"
)

// DefaultRedirectDelay is how long a failed OAuth callback stays on screen
// before returning to login.
const DefaultRedirectDelay = 3 * time.Second

// Backend is the subset of the API the session flows need.
type Backend interface {
	Login(ctx context.Context, identifier, password string) (*models.Token, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.Token, error)
	DeleteMe(ctx context.Context, password string) error
}

// OAuthCallback carries the query parameters of /auth/callback
type OAuthCallback struct {
	AccessToken  string
	RefreshToken string
	Error        string
}

// ParseOAuthCallback extracts callback parameters from a full URL or a bare query string.
func ParseOAuthCallback(raw string) (OAuthCallback, error) {
	query := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		query = raw[i+1:]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return OAuthCallback{}, fmt.Errorf("invalid callback url: %w", err)
	}
	return OAuthCallback{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
		Error:        values.Get("error"),
	}, nil
}

type Manager struct {
	provider      *Provider
	backend       Backend
	nav           Navigator
	logger        *slog.Logger
	redirectDelay time.Duration
	afterFunc     func(time.Duration, func())
	now           func() time.Time

	mu      sync.Mutex
	pending chan struct{}
}

type Option func(*Manager)

func WithRedirectDelay(d time.Duration) Option {
	return func(m *Manager) { m.redirectDelay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(provider *Provider, backend Backend, nav Navigator, opts ...Option) *Manager {
	m := &Manager{
		provider:      provider,
		backend:       backend,
		nav:           nav,
		logger:        slog.Default(),
		redirectDelay: DefaultRedirectDelay,
		afterFunc:     func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Provider() *Provider { return m.provider }

// Login exchanges credentials for tokens, then loads the profile. If the
// profile cannot be loaded the fresh tokens are discarded.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, &models.ValidationError{Field: "username", Message: "is required"}
	}
	if password == "" {
		return nil, &models.ValidationError{Field: "password", Message: "is required"}
	}

	tok, err := m.backend.Login(ctx, identifier, password)
	if err != nil {
		return nil, authFailure(KindInvalidCredentials, msgLoginFailed, err)
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, &AuthError{Kind: KindInvalidCredentials, Message: msgLoginFailed}
	}
	if err := m.provider.SetTokens(tok.AccessToken, tok.RefreshToken); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}

	user, err := m.backend.CurrentUser(ctx)
	if err != nil {
		m.clear()
		return nil, authFailure(KindInvalidCredentials, msgLoginFailed, err)
	}
	if err := m.provider.SetUser(user); err != nil {
		m.clear()
		return nil, fmt.Errorf("store user: %w", err)
	}

	m.logger.Info("logged in", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Register creates the account and logs straight in with the same credentials.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := m.backend.Register(ctx, req); err != nil {
		return nil, authFailure(KindRegistrationFailed, msgRegistrationFailed, err)
	}
	return m.Login(ctx, req.Email, req.Password)
}

// CompleteOAuthCallback stores tokens handed back by the OAuth provider. All
// fields of cb must already be decoded. The profile is loaded lazily by
// CurrentSession. On failure a redirect to login
// is scheduled after the redirect delay; see PendingRedirect.
func (m *Manager) CompleteOAuthCallback(cb OAuthCallback) error {
	if cb.Error != "" {
		m.scheduleLoginRedirect()
		return &AuthError{Kind: KindOAuthFailed, Message: cb.Error}
	}
	if cb.AccessToken == "" || cb.RefreshToken == "" {
		m.scheduleLoginRedirect()
		return &AuthError{Kind: KindOAuthFailed, Message: msgNoTokens}
	}

	if err := m.provider.SetTokens(cb.AccessToken, cb.RefreshToken); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	m.nav.Navigate(RouteDashboard)
	return nil
}

// PendingRedirect is closed once a scheduled login redirect has fired. With
// nothing scheduled it is already closed.
func (m *Manager) PendingRedirect() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return m.pending
}

func (m *Manager) scheduleLoginRedirect() {
	done := make(chan struct{})
	m.mu.Lock()
	m.pending = done
	m.mu.Unlock()

	m.afterFunc(m.redirectDelay, func() {
		m.nav.Navigate(RouteLogin)
		close(done)
	})
}

// CurrentSession validates the stored token against the backend. It never
// fails: any problem clears the credentials and yields an anonymous session.
func (m *Manager) CurrentSession(ctx context.Context) Session {
	token := m.provider.AccessToken()
	if token == "" {
		return Session{}
	}
	if TokenExpired(token, m.now()) {
		m.logger.Info("stored token expired, clearing session")
		m.clear()
		return Session{}
	}

	user, err := m.backend.CurrentUser(ctx)
	if err != nil || user == nil {
		m.logger.Info("stored token rejected, clearing session", "error", err)
		m.clear()
		return Session{}
	}
	if err := m.provider.SetUser(user); err != nil {
		m.logger.Warn("failed to persist user", "error", err)
	}
	return m.provider.Session()
}

// RefreshProfile reloads the user. Unlike CurrentSession, errors are returned.
func (m *Manager) RefreshProfile(ctx context.Context) (*models.User, error) {
	if m.provider.AccessToken() == "" {
		return nil, ErrNoSession
	}
	user, err := m.backend.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.provider.SetUser(user); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}
	return user, nil
}

// RefreshTokens trades the stored refresh token for a new token set.
func (m *Manager) RefreshTokens(ctx context.Context) error {
	refresh := m.provider.RefreshToken()
	if refresh == "" {
		return ErrNoRefreshToken
	}
	tok, err := m.backend.RefreshToken(ctx, refresh)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if tok == nil || tok.AccessToken == "" {
		return &AuthError{Kind: KindInvalidCredentials, Message: msgNoTokens}
	}
	next := tok.RefreshToken
	if next == "" {
		next = refresh
	}
	return m.provider.SetTokens(tok.AccessToken, next)
}

// Logout clears local credentials and returns to the login screen. The
// backend is not called, so a second call ends in the same state.
func (m *Manager) Logout() error {
	if err := m.provider.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.nav.Navigate(RouteLogin)
	return nil
}

// DeleteAccount removes the account on the backend, then logs out locally.
func (m *Manager) DeleteAccount(ctx context.Context, password string) error {
	if m.provider.AccessToken() == "" {
		return ErrNoSession
	}
	if password == "" {
		return &models.ValidationError{Field: "password", Message: "is required"}
	}
	if err := m.backend.DeleteMe(ctx, password); err != nil {
		return err
	}
	return m.Logout()
}

func (m *Manager) clear() {
	if err := m.provider.Clear(); err != nil {
		m.logger.Warn("failed to clear session", "error", err)
	}
}
