// ABOUTME: Session manager owning the authenticated-user state
// ABOUTME: Persists the token, detects expiry, and logs out idle sessions

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultIdleTimeout is the inactivity window after which the session ends
const DefaultIdleTimeout = 10 * time.Minute

var (
	// ErrMissingUsername rejects a login whose identity has no username
	ErrMissingUsername = errors.New("identity has no username")
	// ErrMissingToken rejects a login without a credential
	ErrMissingToken = errors.New("login without token")
	// ErrTokenExpired reports a persisted token whose expiry has passed
	ErrTokenExpired = errors.New("session token expired")
	// ErrTokenInvalid reports a persisted token that could not be decoded
	ErrTokenInvalid = errors.New("session token invalid")
)

// Role drives which menu items the UI shows. The server enforces access.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
	RoleUser       Role = "USER"
	RoleUnknown    Role = ""
)

// ParseRole maps a role name to a Role, ignoring case
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleTechnician:
		return RoleTechnician
	case RoleUser:
		return RoleUser
	default:
		return RoleUnknown
	}
}

// String returns the role name, or "unknown"
func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}

// Reason says why a session ended
type Reason string

const (
	ReasonExplicit   Reason = "explicit"
	ReasonExpired    Reason = "expired"
	ReasonInactivity Reason = "inactivity"
	ReasonRejected   Reason = "rejected"
)

// Identity is the descriptor returned by the authentication endpoint
type Identity struct {
	Username string
	UserType string
}

// Session is the in-memory view of the logged-in user
type Session struct {
	Token     string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// Options configures a Manager
type Options struct {
	Store       Store
	Clock       Clock
	IdleTimeout time.Duration
	// OnLogout runs after an authenticated session ends, outside the manager lock
	OnLogout func(Reason)
}

// Manager is the single source of truth for who is logged in.
// Timer callbacks arrive on their own goroutine, so all state is guarded by mu.
type Manager struct {
	mu       sync.Mutex
	store    Store
	clock    Clock
	idle     time.Duration
	onLogout func(Reason)

	current  *Session
	timer    Timer
	gen      uint64
	deadline time.Time
}

// NewManager creates an anonymous manager
func NewManager(opts Options) *Manager {
	m := &Manager{
		store:    opts.Store,
		clock:    opts.Clock,
		idle:     opts.IdleTimeout,
		onLogout: opts.OnLogout,
	}
	if m.store == nil {
		m.store = &MemoryStore{}
	}
	if m.clock == nil {
		m.clock = SystemClock{}
	}
	if m.idle <= 0 {
		m.idle = DefaultIdleTimeout
	}
	return m
}

// SetLogoutHook replaces the logout notification, e.g. once the TUI program exists
func (m *Manager) SetLogoutHook(f func(Reason)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = f
}

// Login persists the credential and starts the inactivity timer.
// An identity without a username is refused and nothing changes.
func (m *Manager) Login(identity Identity, token string) error {
	username := strings.TrimSpace(identity.Username)
	if username == "" {
		return ErrMissingUsername
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	sess := &Session{
		Token:    token,
		Username: username,
		Role:     ParseRole(identity.UserType),
	}
	// Opaque tokens are accepted; claims only fill in what the identity lacks
	if info, err := DecodeToken(token); err == nil {
		sess.ExpiresAt = info.ExpiresAt
		if sess.Role == RoleUnknown {
			sess.Role = info.Role
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{Token: sess.Token, Username: sess.Username, Role: string(sess.Role)}
	if err := m.store.Save(rec); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	m.current = sess
	m.scheduleLocked()
	slog.Info("Session started", "user", sess.Username, "role", sess.Role.String())
	return nil
}

// Logout ends the session. Calling it when already anonymous is a no-op
// apart from clearing storage again.
func (m *Manager) Logout() {
	m.end(ReasonExplicit)
}

// Reject ends the session because the server refused its token
func (m *Manager) Reject() {
	m.end(ReasonRejected)
}

// Restore reads the persisted token and resumes the session if it is still
// valid. Any decode error or an expiry at or before now logs out.
func (m *Manager) Restore() error {
	rec, err := m.store.Load()
	if err != nil {
		m.end(ReasonExpired)
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if strings.TrimSpace(rec.Token) == "" {
		return nil
	}

	info, err := DecodeToken(rec.Token)
	if err != nil {
		m.end(ReasonExpired)
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if info.ExpiresAt.IsZero() {
		m.end(ReasonExpired)
		return fmt.Errorf("%w: no expiry claim", ErrTokenInvalid)
	}

	m.mu.Lock()
	if !info.ExpiresAt.After(m.clock.Now()) {
		m.mu.Unlock()
		m.end(ReasonExpired)
		return ErrTokenExpired
	}

	username := rec.Username
	if username == "" {
		username = info.Username
	}
	if username == "" {
		username = info.Subject
	}
	if username == "" {
		m.mu.Unlock()
		m.end(ReasonExpired)
		return fmt.Errorf("%w: no username", ErrTokenInvalid)
	}

	role := ParseRole(rec.Role)
	if role == RoleUnknown {
		role = info.Role
	}

	m.current = &Session{
		Token:     rec.Token,
		Username:  username,
		Role:      role,
		ExpiresAt: info.ExpiresAt,
	}
	m.scheduleLocked()
	m.mu.Unlock()

	slog.Debug("Session restored", "user", username, "expires_at", info.ExpiresAt)
	return nil
}

// Touch records user activity and pushes the inactivity deadline out
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.scheduleLocked()
}

// Guard reports whether a protected view may render. A session whose token
// expiry has passed is ended first.
func (m *Manager) Guard() bool {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return false
	}
	exp := m.current.ExpiresAt
	expired := !exp.IsZero() && !exp.After(m.clock.Now())
	m.mu.Unlock()

	if expired {
		m.end(ReasonExpired)
		return false
	}
	return true
}

// Authenticated reports whether a user is logged in
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Current returns a copy of the session, or nil when anonymous
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Role returns the current role, RoleUnknown when anonymous
func (m *Manager) Role() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return RoleUnknown
	}
	return m.current.Role
}

// Token implements client.TokenSource
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Deadline returns when the idle timer fires; zero when anonymous
func (m *Manager) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline
}

// Close stops the inactivity timer without touching persisted state
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// scheduleLocked replaces the live timer. The generation bump makes a
// superseded callback that already started a no-op.
func (m *Manager) scheduleLocked() {
	m.stopLocked()
	m.gen++
	gen := m.gen
	m.deadline = m.clock.Now().Add(m.idle)
	m.timer = m.clock.AfterFunc(m.idle, func() { m.expire(gen) })
}

func (m *Manager) stopLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	m.deadline = time.Time{}
}

func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.current == nil {
		m.mu.Unlock()
		return
	}
	_, hook := m.clearLocked()
	m.mu.Unlock()

	slog.Info("Session ended", "reason", string(ReasonInactivity), "idle_timeout", m.idle)
	if hook != nil {
		hook(ReasonInactivity)
	}
}

func (m *Manager) end(reason Reason) {
	m.mu.Lock()
	ended, hook := m.clearLocked()
	m.mu.Unlock()

	if !ended {
		return
	}
	slog.Info("Session ended", "reason", string(reason))
	if hook != nil {
		hook(reason)
	}
}

// clearLocked wipes storage and memory. ended is true when an authenticated
// session was actually ended; hook is the logout notification to run then.
func (m *Manager) clearLocked() (ended bool, hook func(Reason)) {
	ended = m.current != nil
	if err := m.store.Clear(); err != nil {
		slog.Warn("Failed to clear session storage", "error", err)
	}
	m.current = nil
	m.stopLocked()

	if ended {
		hook = m.onLogout
	}
	return ended, hook
}
