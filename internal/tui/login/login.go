// ABOUTME: Login screen as a bubbletea model wrapping a huh form
// ABOUTME: Collects credentials and hands them to the app for authentication

package login

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
)

// SubmittedMsg carries the credentials entered by the user
type SubmittedMsg struct {
	Email    string
	Password string
}

// CancelledMsg is sent when the user aborts the form
type CancelledMsg struct{}

// Login is the unauthenticated entry screen
type Login struct {
	form     *huh.Form
	spinner  spinner.Model
	email    string
	password string
	err      string
	notice   string
	pending  bool
	width    int
}

// New creates a login screen, prefilling the email when known
func New(email string) *Login {
	s := spinner.New()
	s.Spinner = spinner.Dot
	l := &Login{email: email, spinner: s}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("name@pti-sa.com.co").
				Value(&l.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(validateRequired("password")),
		).Title("Sign in").
			Description("Inventory administration"),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.pending {
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd
	}

	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		l.width = ws.Width
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	switch l.form.State {
	case huh.StateCompleted:
		return l, l.submit()
	case huh.StateAborted:
		return l, func() tea.Msg { return CancelledMsg{} }
	}
	return l, cmd
}

func (l *Login) submit() tea.Cmd {
	l.pending = true
	l.err = ""
	email, password := strings.TrimSpace(l.email), l.password
	submitted := func() tea.Msg { return SubmittedMsg{Email: email, Password: password} }
	return tea.Batch(submitted, l.spinner.Tick)
}

// Fail shows the authentication error and reopens the form. The password is cleared.
func (l *Login) Fail(message string) tea.Cmd {
	l.pending = false
	l.err = message
	l.password = ""
	l.form = l.createForm()
	return l.form.Init()
}

// SetNotice shows an informational line, e.g. why the last session ended
func (l *Login) SetNotice(notice string) {
	l.notice = notice
}

// Pending reports whether credentials are being checked
func (l *Login) Pending() bool { return l.pending }

// Err returns the last authentication error
func (l *Login) Err() string { return l.err }

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	if l.notice != "" {
		sb.WriteString(styles.StatusWarning.Render(l.notice))
		sb.WriteString("\n\n")
	}
	if l.pending {
		sb.WriteString(l.spinner.View() + " Signing in...")
		return sb.String()
	}
	sb.WriteString(l.form.View())
	if l.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(l.err))
	}
	return sb.String()
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if at := strings.Index(s, "@"); at <= 0 || at == len(s)-1 {
		return errors.New("enter a valid email")
	}
	return nil
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
