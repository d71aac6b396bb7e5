// ABOUTME: Login and logout commands for the inventory-admin CLI
// ABOUTME: Exchanges credentials for a token and stores or clears the session

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/ptisa/inventory-admin/internal/client"
	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in with an email and password. The password is prompted for when
--password is omitted.

Exit codes:
  0 - Signed in
  1 - Credentials rejected
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, logStderr, func(ctx context.Context, w io.Writer, rt *runtime) int {
			email, password := loginEmail, loginPassword
			if email == "" || password == "" {
				var err error
				email, password, err = promptCredentials(email)
				if err != nil {
					fmt.Fprintf(w, "Error: %v\n", err)
					return exitError
				}
			}
			return runLogin(ctx, w, rt, email, password)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, logStderr, func(ctx context.Context, w io.Writer, rt *runtime) int {
			return runLogout(w, rt)
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
}

// promptCredentials asks for whatever the flags did not supply
func promptCredentials(email string) (string, string, error) {
	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("prompt: %w", err)
	}
	return email, password, nil
}

// runLogin authenticates and returns exit code
func runLogin(ctx context.Context, w io.Writer, rt *runtime, email, password string) int {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		fmt.Fprintln(w, "Error: email and password are required")
		return exitError
	}

	resp, err := rt.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintf(w, "Login failed: %s\n", loginFailure(err))
			return exitAuth
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	identity := session.Identity{Username: resp.User.Username, UserType: resp.User.UserType}
	if err := rt.sess.Login(identity, resp.Token); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	cur := rt.sess.Current()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(rt.client.BaseURL(), cur))
	} else {
		fmt.Fprintf(w, "Signed in as %s (%s)\n", cur.Username, cur.Role)
	}
	return exitOK
}

// runLogout clears the stored session and returns exit code
func runLogout(w io.Writer, rt *runtime) int {
	restoreErr := rt.sess.Restore()
	wasSignedIn := rt.sess.Authenticated()
	rt.sess.Logout()

	switch {
	case wasSignedIn:
		fmt.Fprintln(w, "Signed out")
	case restoreErr != nil:
		fmt.Fprintln(w, "Stored session was no longer valid and has been cleared")
	default:
		fmt.Fprintln(w, "Not signed in")
	}
	return exitOK
}

// loginFailure is the server's explanation, or a generic one without it
func loginFailure(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "invalid email or password"
}
