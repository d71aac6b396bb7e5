// ABOUTME: Shared helpers for command tests
// ABOUTME: Builds runtimes against httptest servers with in-memory sessions

package cmd

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ptisa/inventory-admin/internal/config"
	"github.com/ptisa/inventory-admin/internal/session"
)

func newTestRuntime(t *testing.T, url string) (*runtime, *session.MemoryStore) {
	t.Helper()
	cfg := &config.Config{
		APIURL:         url,
		IdleTimeout:    time.Minute,
		RequestTimeout: 5 * time.Second,
	}
	store := &session.MemoryStore{}
	rt := newRuntime(cfg, store)
	t.Cleanup(rt.sess.Close)
	return rt, store
}

func testToken(t *testing.T, username, role string, exp time.Time) string {
	t.Helper()
	claims := session.Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// signIn stores a session the way a previous 'login' run would have
func signIn(t *testing.T, rt *runtime, role string) string {
	t.Helper()
	token := testToken(t, "ana", role, time.Now().Add(time.Hour))
	if err := rt.sess.Login(session.Identity{Username: "ana", UserType: role}, token); err != nil {
		t.Fatal(err)
	}
	return token
}
