package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"roomy-backend/internal/db"
	"roomy-backend/internal/store"
)

var anaProfile = Profile{GoogleID: "g-123", Email: "ana@example.com", Name: "Ana", Avatar: "https://example.com/ana.png"}

func newTestManager(t *testing.T) (*Manager, store.Store, *time.Time) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	sqlDB, _ := gormDB.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s := store.NewGormStore(gormDB)
	m := NewManager(s, "session-secret", time.Hour)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, s, &now
}

func TestManager_LoginAndCurrentUser(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	var events []SessionEvent
	m.OnSessionChange(func(ev SessionEvent) { events = append(events, ev) })

	token, user, err := m.Login(ctx, anaProfile)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "ana@example.com", user.Email)

	got, err := m.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ana", got.Name)

	require.Len(t, events, 1)
	assert.Equal(t, SessionStarted, events[0].Kind)
	assert.Equal(t, user.ID, events[0].User.ID)
}

func TestManager_LoginTwiceKeepsUser(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, first, err := m.Login(ctx, anaProfile)
	require.NoError(t, err)

	renamed := anaProfile
	renamed.Name = "Ana María"
	_, second, err := m.Login(ctx, renamed)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ana María", second.Name)
}

func TestManager_Logout(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	token, user, err := m.Login(ctx, anaProfile)
	require.NoError(t, err)

	var ended []SessionEvent
	unsubscribe := m.OnSessionChange(func(ev SessionEvent) {
		if ev.Kind == SessionEnded {
			ended = append(ended, ev)
		}
	})

	require.NoError(t, m.Logout(ctx, token))
	_, err = m.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.Len(t, ended, 1)
	assert.Equal(t, user.ID, ended[0].User.ID)

	unsubscribe()
	token, _, err = m.Login(ctx, anaProfile)
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, token))
	assert.Len(t, ended, 1)

	assert.NoError(t, m.Logout(ctx, "garbage"))
}

func TestManager_RejectsBadTokens(t *testing.T) {
	m, _, now := newTestManager(t)
	ctx := context.Background()

	token, _, err := m.Login(ctx, anaProfile)
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID: "x", Subject: "y", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"Empty":          "",
		"Malformed":      "not.a.jwt",
		"Wrong secret":   foreign,
		"Tampered token": token + "x",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.CurrentUser(ctx, tok)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}

	t.Run("Expired", func(t *testing.T) {
		later := now.Add(2 * time.Hour)
		m.now = func() time.Time { return later }
		_, err := m.CurrentUser(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestManager_LoginRejectsIncompleteProfile(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, _, err := m.Login(context.Background(), Profile{GoogleID: "g-1"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestManager_RunSweeper(t *testing.T) {
	m, s, now := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())

	token, _, err := m.Login(ctx, anaProfile)
	require.NoError(t, err)
	claims, err := m.parse(token)
	require.NoError(t, err)

	later := now.Add(2 * time.Hour)
	m.now = func() time.Time { return later }

	done := make(chan struct{})
	go func() {
		m.RunSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := s.GetSession(context.Background(), claims.ID)
		return err == store.ErrNotFound
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSessionEventKind_String(t *testing.T) {
	assert.Equal(t, "started", SessionStarted.String())
	assert.Equal(t, "ended", SessionEnded.String())
}
