package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coachboard/coachboard-client/internal/models"
)

// State of the session as seen by the rest of the client
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Session is an immutable snapshot of the provider.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

func (s Session) State() State {
	if s.AccessToken == "" {
		return StateAnonymous
	}
	return StateAuthenticated
}

// Provider owns the token set and the validated user. It is read by the
// transport layer and written only by the Manager and the 401 path.
type Provider struct {
	mu           sync.RWMutex
	store        Store
	nav          Navigator
	logger       *slog.Logger
	accessToken  string
	refreshToken string
	user         *models.User
	listeners    []func()
}

// NewProvider restores stored tokens. The cached user is not trusted until the
// token has been validated again, so it starts empty.
func NewProvider(store Store, nav Navigator, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{store: store, nav: nav, logger: logger}

	var err error
	if p.accessToken, err = store.Get(KeyAccessToken); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if p.refreshToken, err = store.Get(KeyRefreshToken); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return p, nil
}

// AccessToken implements transport.TokenSource.
func (p *Provider) AccessToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accessToken
}

// CacheScope identifies the current credentials for the query cache without
// exposing the token. It is "" while anonymous.
func (p *Provider) CacheScope() string {
	token := p.AccessToken()
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// OnChange registers fn to run after the token set is replaced or cleared.
func (p *Provider) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Provider) notify() {
	p.mu.RLock()
	listeners := append([]func(){}, p.listeners...)
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

func (p *Provider) RefreshToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.refreshToken
}

func (p *Provider) Session() Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Session{AccessToken: p.accessToken, RefreshToken: p.refreshToken}
	if p.user != nil {
		u := *p.user
		s.User = &u
	}
	return s
}

// CachedUser returns the user persisted by the last successful validation.
func (p *Provider) CachedUser() (*models.User, error) {
	raw, err := p.store.Get(KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &u, nil
}

// SetTokens replaces the token set. An empty refresh token removes the stored one
// so a stale refresh token never outlives its access token.
func (p *Provider) SetTokens(access, refresh string) error {
	defer p.notify()
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Set(KeyAccessToken, access); err != nil {
		return err
	}
	if refresh == "" {
		if err := p.store.Delete(KeyRefreshToken); err != nil {
			return err
		}
	} else if err := p.store.Set(KeyRefreshToken, refresh); err != nil {
		return err
	}
	p.accessToken = access
	p.refreshToken = refresh
	return nil
}

// SetUser records a user the backend has just confirmed.
func (p *Provider) SetUser(u *models.User) error {
	if u == nil {
		return errors.New("no user to store")
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Set(KeyUser, string(data)); err != nil {
		return err
	}
	cp := *u
	p.user = &cp
	return nil
}

// Clear drops every credential. Safe to call repeatedly.
func (p *Provider) Clear() error {
	defer p.notify()
	p.mu.Lock()
	defer p.mu.Unlock()

	p.accessToken = ""
	p.refreshToken = ""
	p.user = nil
	return p.store.Delete(KeyAccessToken, KeyRefreshToken, KeyUser)
}

// HandleUnauthorized implements transport.UnauthorizedHandler. Credentials are
// always cleared; the login redirect is skipped while already on an auth screen.
func (p *Provider) HandleUnauthorized() {
	if err := p.Clear(); err != nil {
		p.logger.Warn("failed to clear session after 401", "error", err)
	}
	if p.nav == nil {
		return
	}
	loc := p.nav.Location()
	if IsAuthRoute(loc) {
		p.logger.Debug("401 on auth screen, not redirecting", "location", loc)
		return
	}
	p.logger.Info("session expired, redirecting to login", "from", loc)
	p.nav.Navigate(RouteLogin)
}
