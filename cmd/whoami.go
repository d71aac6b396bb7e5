// ABOUTME: Whoami command for the inventory-admin CLI
// ABOUTME: Shows the stored session's user, role, and token expiry

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the user, role, and token expiry of the stored session.

Exit codes:
  0 - Signed in
  1 - Not signed in, or the stored session expired`,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, logStderr, func(ctx context.Context, w io.Writer, rt *runtime) int {
			return runWhoami(w, rt)
		})
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// sessionInfo is the JSON shape of a session
type sessionInfo struct {
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Backend   string     `json:"backend"`
}

// runWhoami executes the session check and returns exit code
func runWhoami(w io.Writer, rt *runtime) int {
	if !requireSession(w, rt) {
		return exitAuth
	}

	cur := rt.sess.Current()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(rt.client.BaseURL(), cur))
	} else {
		fmt.Fprintln(w, formatSessionHuman(rt.client.BaseURL(), cur, time.Now()))
	}
	return exitOK
}

// formatSessionHuman formats a session for human readability
func formatSessionHuman(backend string, s *session.Session, now time.Time) string {
	expires := "no expiry"
	if !s.ExpiresAt.IsZero() {
		expires = fmt.Sprintf("%s (in %s)", s.ExpiresAt.Local().Format("2006-01-02 15:04"), s.ExpiresAt.Sub(now).Round(time.Minute))
	}
	return fmt.Sprintf(`User:     %s
Role:     %s
Expires:  %s
Backend:  %s`, s.Username, s.Role, expires, backend)
}

// formatSessionJSON formats a session as JSON
func formatSessionJSON(backend string, s *session.Session) string {
	info := sessionInfo{
		Username: s.Username,
		Role:     s.Role.String(),
		Backend:  backend,
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt.UTC()
		info.ExpiresAt = &exp
	}
	data, _ := json.MarshalIndent(info, "", "  ")
	return string(data)
}
