// Package session ties a browser to the tokens it was issued through a signed, encrypted cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// DefaultCookieName is the name of the session cookie.
const DefaultCookieName = "rd_session"

// ErrNoSession - the request carries no valid session cookie.
var ErrNoSession = errors.New("no session")

// Manager issues and reads session cookies.
type Manager struct {
	cookieName string
	maxAge     time.Duration
	secure     bool
	codec      *securecookie.SecureCookie
}

// Option configures a Manager.
type Option func(*Manager)

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) Option {
	return func(m *Manager) { m.cookieName = name }
}

// WithMaxAge sets the cookie lifetime.
func WithMaxAge(d time.Duration) Option {
	return func(m *Manager) { m.maxAge = d }
}

// WithSecure marks the cookie Secure.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// NewManager creates a Manager. Empty keys are replaced by random ones, so
// sessions do not survive a restart unless keys are configured.
// blockKey must be 16, 24 or 32 bytes when given.
func NewManager(hashKey, blockKey []byte, opts ...Option) *Manager {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	if len(blockKey) == 0 {
		blockKey = securecookie.GenerateRandomKey(32)
	}

	m := &Manager{
		cookieName: DefaultCookieName,
		maxAge:     24 * time.Hour,
		codec:      securecookie.New(hashKey, blockKey),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.codec.MaxAge(int(m.maxAge.Seconds()))
	return m
}

// ID returns the session id carried by req.
func (m *Manager) ID(req *http.Request) (string, error) {
	cookie, err := req.Cookie(m.cookieName)
	if err != nil {
		return "", ErrNoSession
	}

	var id string
	if err := m.codec.Decode(m.cookieName, cookie.Value, &id); err != nil || id == "" {
		return "", ErrNoSession
	}
	return id, nil
}

// Prepare returns the session id of req. When req has no session a new id is
// minted and the cookie that starts it is returned for the caller to set once
// the request succeeds; cookie is nil for an existing session.
func (m *Manager) Prepare(req *http.Request) (id string, cookie *http.Cookie, err error) {
	if id, err := m.ID(req); err == nil {
		return id, nil, nil
	}

	id = uuid.NewString()
	encoded, err := m.codec.Encode(m.cookieName, id)
	if err != nil {
		return "", nil, fmt.Errorf("encode session cookie: %w", err)
	}

	return id, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Ensure returns the session id of req, starting a new session on res when there is none.
func (m *Manager) Ensure(res http.ResponseWriter, req *http.Request) (string, error) {
	id, cookie, err := m.Prepare(req)
	if err != nil {
		return "", err
	}
	if cookie != nil {
		http.SetCookie(res, cookie)
	}
	return id, nil
}
