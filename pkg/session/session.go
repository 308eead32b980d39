// Package session holds the logged-in user's auth data and API host and
// persists them, encrypted, in a credential store.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	boterrors "github.com/dshills/botflow/pkg/errors"
	"github.com/dshills/botflow/pkg/storage"
)

// Credential store keys.
const (
	KeyHost = "url"
	KeyAuth = "auth"
)

// ErrNotLoggedIn is returned when an operation needs a session and there
// is none.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the current login. It is safe for concurrent use; the API
// client reads tokens from it while a refresh may replace them.
type Session struct {
	store  storage.CredentialStore
	codec  *Codec
	logger *slog.Logger

	mu   sync.RWMutex
	host string
	auth *Auth
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an empty session backed by store.
func New(store storage.CredentialStore, codec *Codec, opts ...Option) *Session {
	s := &Session{store: store, codec: codec, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore loads a previously saved session. It returns ErrNotLoggedIn if
// nothing was saved. A stored value that no longer decrypts is removed
// and also reported as ErrNotLoggedIn.
func (s *Session) Restore() error {
	host, err := s.store.Get(KeyHost)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotLoggedIn
	}
	if err != nil {
		return boterrors.NewOperationalError("restoring session", "", "", err)
	}

	cipherText, err := s.store.Get(KeyAuth)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotLoggedIn
	}
	if err != nil {
		return boterrors.NewOperationalError("restoring session", "", "", err)
	}

	auth, err := s.decode(cipherText)
	if err != nil {
		s.logger.Warn("discarding unreadable session", "error", err)
		_ = s.clear()
		return ErrNotLoggedIn
	}

	s.mu.Lock()
	s.host = host
	s.auth = &auth
	s.mu.Unlock()

	s.logger.Debug("session restored", "user", auth.Username, "host", host)
	return nil
}

// Login records a successful login and saves it.
func (s *Session) Login(host string, auth Auth) error {
	if err := s.store.Set(KeyHost, host); err != nil {
		return boterrors.NewOperationalError("saving session", "", "", err)
	}
	if err := s.save(auth); err != nil {
		return err
	}

	s.mu.Lock()
	s.host = host
	s.mu.Unlock()

	s.logger.Debug("logged in", "user", auth.Username, "host", host)
	return nil
}

// UpdateAuth replaces the auth data, keeping the host. Used after a token
// refresh.
func (s *Session) UpdateAuth(auth Auth) error {
	return s.save(auth)
}

// Logout forgets the session and clears storage.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.host = ""
	s.auth = nil
	s.mu.Unlock()

	if err := s.clear(); err != nil {
		return boterrors.NewOperationalError("clearing session", "", "", err)
	}
	return nil
}

// Auth returns a copy of the auth data.
func (s *Session) Auth() (Auth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return Auth{}, false
	}
	return *s.auth, true
}

// LoggedIn reports whether auth data is present.
func (s *Session) LoggedIn() bool {
	_, ok := s.Auth()
	return ok
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	a, _ := s.Auth()
	return a.Token
}

// RefreshToken returns the refresh token, or "" when logged out.
func (s *Session) RefreshToken() string {
	a, _ := s.Auth()
	return a.RefreshToken
}

// Host returns the API base URL.
func (s *Session) Host() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host
}

func (s *Session) save(auth Auth) error {
	plain, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to encode auth data: %w", err)
	}
	cipherText, err := s.codec.Encrypt(plain)
	if err != nil {
		return boterrors.NewOperationalError("encrypting session", "", "", err)
	}
	if err := s.store.Set(KeyAuth, cipherText); err != nil {
		return boterrors.NewOperationalError("saving session", "", "", err)
	}

	s.mu.Lock()
	s.auth = &auth
	s.mu.Unlock()
	return nil
}

func (s *Session) decode(cipherText string) (Auth, error) {
	plain, err := s.codec.Decrypt(cipherText)
	if err != nil {
		return Auth{}, err
	}
	var a Auth
	if err := json.Unmarshal(plain, &a); err != nil {
		return Auth{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return a, nil
}

func (s *Session) clear() error {
	return errors.Join(s.store.Delete(KeyAuth), s.store.Delete(KeyHost))
}
