// Package auth keeps track of who is signed in. A Manager turns an identity
// provider profile into a persisted user and session, and hands the browser
// a signed token naming that session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"roomy-backend/internal/model"
	"roomy-backend/internal/store"
)

// ErrUnauthenticated is returned when a token does not name a live session.
var ErrUnauthenticated = errors.New("not authenticated")

// Profile is what an identity provider reports about a person.
type Profile struct {
	GoogleID string
	Email    string
	Name     string
	Avatar   string
}

// SessionEventKind tells listeners what happened to a session.
type SessionEventKind int

const (
	SessionStarted SessionEventKind = iota
	SessionEnded
)

func (k SessionEventKind) String() string {
	switch k {
	case SessionStarted:
		return "started"
	case SessionEnded:
		return "ended"
	}
	return fmt.Sprintf("SessionEventKind(%d)", int(k))
}

// SessionEvent is delivered to OnSessionChange listeners.
type SessionEvent struct {
	Kind      SessionEventKind
	SessionID string
	User      *model.User
	At        time.Time
}

// Identity is the session capability the HTTP layer depends on.
type Identity interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
	Login(ctx context.Context, p Profile) (string, *model.User, error)
	Logout(ctx context.Context, token string) error
	OnSessionChange(fn func(SessionEvent)) (unsubscribe func())
}

// Manager implements Identity on top of a Store.
type Manager struct {
	store  store.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	listeners map[int]func(SessionEvent)
	nextID    int
}

var _ Identity = (*Manager)(nil)

// NewManager creates a session manager issuing tokens valid for ttl.
func NewManager(s store.Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:     s,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
		listeners: make(map[int]func(SessionEvent)),
	}
}

// TTL is how long a new session lasts.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login records p as a user, opens a session for it and returns the token
// the browser should present from now on.
func (m *Manager) Login(ctx context.Context, p Profile) (string, *model.User, error) {
	if p.GoogleID == "" || p.Email == "" {
		return "", nil, fmt.Errorf("incomplete profile: %w", ErrUnauthenticated)
	}

	user := &model.User{GoogleID: p.GoogleID, Email: p.Email, Name: p.Name, Avatar: p.Avatar}
	if err := m.store.UpsertUser(ctx, user); err != nil {
		return "", nil, err
	}

	now := m.now()
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return "", nil, err
	}

	token, err := m.sign(sess, user.ID)
	if err != nil {
		return "", nil, err
	}

	m.emit(SessionEvent{Kind: SessionStarted, SessionID: sess.ID, User: user, At: now})
	return token, user, nil
}

// CurrentUser resolves token to the signed-in user.
func (m *Manager) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	sess, err := m.store.GetSession(ctx, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("session revoked: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.Subject || !m.now().Before(sess.ExpiresAt) {
		return nil, fmt.Errorf("session expired: %w", ErrUnauthenticated)
	}

	user, err := m.store.GetUser(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user gone: %w", ErrUnauthenticated)
	}
	return user, err
}

// Logout revokes the session token names. Unknown or malformed tokens are
// ignored.
func (m *Manager) Logout(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	if err := m.store.DeleteSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	user, err := m.store.GetUser(ctx, claims.Subject)
	if err != nil {
		user = &model.User{ID: claims.Subject}
	}
	m.emit(SessionEvent{Kind: SessionEnded, SessionID: claims.ID, User: user, At: m.now()})
	return nil
}

// OnSessionChange registers fn for every later session event. Listeners run
// synchronously on the goroutine that caused the event.
func (m *Manager) OnSessionChange(fn func(SessionEvent)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// RunSweeper deletes expired sessions every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := m.store.DeleteExpiredSessions(ctx, m.now())
			if err != nil {
				log.Printf("Error sweeping expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Removed %d expired sessions", n)
			}
		case <-ctx.Done():
			log.Println("Session sweeper stopping.")
			return
		}
	}
}

func (m *Manager) emit(ev SessionEvent) {
	m.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (m *Manager) sign(sess *model.Session, userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("token without session: %w", ErrUnauthenticated)
	}
	return claims, nil
}
