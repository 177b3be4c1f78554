// Package application contains use-case orchestration services.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// Keys under which the session is persisted in the CredentialStore.
const (
	sessionTokenKey = "session.token"
	sessionUserKey  = "session.user"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionManager)(nil)

// SessionManager is the credential store of the client. It holds a
// mutex-protected session that the API client reads on every request, and
// mirrors it into an optional persistent CredentialStore so a login survives
// process restarts.
//
// mu guards the in-memory session only and is never held across I/O.
// persistMu serializes changes that also touch the store, so the persisted
// session always matches the last in-memory change.
type SessionManager struct {
	mu      sync.RWMutex
	session model.Session

	persistMu sync.Mutex

	store  driven.CredentialStore // nil keeps the session in memory only.
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionManager creates an empty (unauthenticated) session manager.
// store may be nil.
func NewSessionManager(store driven.CredentialStore, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Token returns the current bearer token, or "" when logged out.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// Session returns a snapshot of the current session. The User is a copy.
func (m *SessionManager) Session() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySession(m.session)
}

// User returns a copy of the session identity, or nil when logged out.
func (m *SessionManager) User() *model.User {
	return m.Session().User
}

// Authenticated reports whether an identity is held.
func (m *SessionManager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Authenticated()
}

// Establish replaces the session and persists it. The in-memory session is
// replaced even when persisting fails; a missing encryption key is not an
// error, the session then simply lives in memory.
func (m *SessionManager) Establish(ctx context.Context, session model.Session) error {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	session = copySession(session)
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	return m.persist(ctx, session)
}

// Teardown clears token and identity and forgets the persisted session.
// Calling it on an empty session does nothing.
func (m *SessionManager) Teardown() {
	m.teardownIf(func(model.Session) bool { return true })
}

// HandleAuthFault is the API client's auth fault callback. token is the
// credential the rejected request was sent with; when a newer session has
// been established since, the fault is stale and the session is kept.
func (m *SessionManager) HandleAuthFault(status int, token string) {
	ended := m.teardownIf(func(current model.Session) bool {
		return current.Token == token
	})
	if ended {
		m.logger.Warn("credential rejected by server", "status", status)
		return
	}
	m.logger.Debug("ignoring auth fault for a replaced credential", "status", status)
}

// teardownIf clears the session when match accepts it. It reports whether
// a non-empty session was cleared.
func (m *SessionManager) teardownIf(match func(model.Session) bool) bool {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	if (m.session.Token == "" && m.session.User == nil) || !match(m.session) {
		m.mu.Unlock()
		return false
	}
	m.session = model.Session{}
	m.mu.Unlock()

	m.forget(context.Background())
	m.logger.Info("session ended")
	return true
}

// Restore loads a previously persisted session. A token whose exp claim has
// passed is discarded instead of restored.
func (m *SessionManager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	token, err := m.store.Get(ctx, sessionTokenKey)
	if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session token: %w", err)
	}
	if token == "" {
		return nil
	}

	if exp, ok := tokenExpiry(token); ok && !exp.After(m.now()) {
		m.logger.Info("stored session expired", "expired_at", exp)
		m.forget(ctx)
		return nil
	}

	var user *model.User
	raw, err := m.store.Get(ctx, sessionUserKey)
	if err != nil {
		return fmt.Errorf("restore session user: %w", err)
	}
	if raw != "" {
		user = &model.User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			return fmt.Errorf("decode stored user: %w", err)
		}
	}

	m.mu.Lock()
	m.session = model.Session{Token: token, User: user}
	m.mu.Unlock()

	m.logger.Debug("session restored", "authenticated", user != nil)
	return nil
}

// Expiry returns the exp claim of the current token. The token is parsed
// without verification; the result is informational only.
func (m *SessionManager) Expiry() (time.Time, bool) {
	return tokenExpiry(m.Token())
}

// persist must be called with m.persistMu held.
func (m *SessionManager) persist(ctx context.Context, session model.Session) error {
	if m.store == nil {
		return nil
	}

	if err := m.store.Set(ctx, sessionTokenKey, session.Token); err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			m.logger.Debug("no encryption key, session not persisted")
			return nil
		}
		return fmt.Errorf("persist session token: %w", err)
	}

	if session.User == nil {
		if err := m.store.Delete(ctx, sessionUserKey); err != nil {
			return fmt.Errorf("persist session user: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := m.store.Set(ctx, sessionUserKey, string(raw)); err != nil {
		return fmt.Errorf("persist session user: %w", err)
	}
	return nil
}

// forget must be called with m.persistMu held. Failures are logged; teardown
// never fails.
func (m *SessionManager) forget(ctx context.Context) {
	if m.store == nil {
		return
	}
	for _, key := range []string{sessionTokenKey, sessionUserKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Error("failed to forget stored session", "key", key, "error", err)
		}
	}
}

func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func copySession(s model.Session) model.Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
