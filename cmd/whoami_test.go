// ABOUTME: Tests for the whoami command
// ABOUTME: Verifies session display and fail-closed restore

package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ptisa/inventory-admin/internal/session"
)

func TestRunWhoami_SignedIn(t *testing.T) {
	rt, _ := newTestRuntime(t, "http://inventory.example.com")
	signIn(t, rt, "TECHNICIAN")

	var buf bytes.Buffer
	if exitCode := runWhoami(&buf, rt); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, want := range []string{"ana", "TECHNICIAN", "http://inventory.example.com"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got %s", want, buf.String())
		}
	}
}

func TestRunWhoami_NotSignedIn(t *testing.T) {
	rt, _ := newTestRuntime(t, "http://inventory.example.com")

	var buf bytes.Buffer
	if exitCode := runWhoami(&buf, rt); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Not signed in") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRunWhoami_StoredSessionInvalid(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"expired", func(t *testing.T) string { return testToken(t, "ana", "ADMIN", time.Now().Add(-time.Minute)) }},
		{"opaque", func(t *testing.T) string { return "not-a-jwt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, store := newTestRuntime(t, "http://inventory.example.com")
			if err := store.Save(session.Record{Token: tt.token(t), Username: "ana", Role: "ADMIN"}); err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			if exitCode := runWhoami(&buf, rt); exitCode != 1 {
				t.Errorf("expected exit code 1, got %d", exitCode)
			}
			if !strings.Contains(buf.String(), "Session ended") {
				t.Errorf("unexpected output: %s", buf.String())
			}
			if rec, _ := store.Load(); rec.Token != "" {
				t.Error("expected invalid session cleared")
			}
		})
	}
}

func TestFormatSessionHuman(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	t.Run("with expiry", func(t *testing.T) {
		s := &session.Session{Username: "ana", Role: session.RoleAdmin, ExpiresAt: now.Add(2 * time.Hour)}
		out := formatSessionHuman("http://x", s, now)
		if !strings.Contains(out, "in 2h0m0s") {
			t.Errorf("expected remaining time, got %s", out)
		}
	})

	t.Run("without expiry", func(t *testing.T) {
		s := &session.Session{Username: "ana", Role: session.RoleUser}
		out := formatSessionHuman("http://x", s, now)
		if !strings.Contains(out, "no expiry") {
			t.Errorf("expected no expiry, got %s", out)
		}
	})
}
