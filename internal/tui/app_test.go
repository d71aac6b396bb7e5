// ABOUTME: Integration tests for TUI app
// ABOUTME: Tests screen transitions, the session guard, and API error handling

package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ptisa/inventory-admin/internal/client"
	"github.com/ptisa/inventory-admin/internal/deviceform"
	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/ptisa/inventory-admin/internal/tui/devices"
	"github.com/ptisa/inventory-admin/internal/tui/editor"
	"github.com/ptisa/inventory-admin/internal/tui/login"
	"github.com/ptisa/inventory-admin/internal/tui/menu"
)

type fakeBackend struct {
	mu         sync.Mutex
	loginResp  *client.LoginResponse
	loginErr   error
	devices    []client.Device
	devicesErr error
	deleteErr  error
	deleted    []int
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Devices(ctx context.Context) ([]client.Device, error) {
	return f.devices, f.devicesErr
}

func (f *fakeBackend) DeleteDevice(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) SearchUsers(ctx context.Context, partial string) ([]client.User, error) {
	return nil, nil
}

func (f *fakeBackend) UserByEmail(ctx context.Context, email string) (*client.User, error) {
	return nil, nil
}

func (f *fakeBackend) Locations(ctx context.Context) ([]client.CatalogItem, error) {
	return []client.CatalogItem{{ID: 1, Name: "Bogotá"}}, nil
}

func (f *fakeBackend) Statuses(ctx context.Context) ([]client.CatalogItem, error) {
	return []client.CatalogItem{{ID: 1, Name: "Active"}}, nil
}

func (f *fakeBackend) Brands(ctx context.Context) ([]client.CatalogItem, error) {
	return []client.CatalogItem{{ID: 1, Name: "Dell"}}, nil
}

func (f *fakeBackend) Models(ctx context.Context) ([]client.CatalogItem, error) {
	return []client.CatalogItem{{ID: 1, Name: "Latitude"}}, nil
}

func (f *fakeBackend) CreateDevice(ctx context.Context, in *client.DevicePayload) (*client.Device, error) {
	return &client.Device{ID: 1, Code: in.Code}, nil
}

func (f *fakeBackend) UpdateDevice(ctx context.Context, id int, in *client.DevicePayload) (*client.Device, error) {
	return &client.Device{ID: id, Code: in.Code}, nil
}

// stepClock never fires timers; tests move time with advance
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) AfterFunc(d time.Duration, f func()) session.Timer { return idleTimer{} }

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var sampleDevices = []client.Device{
	{ID: 7, Code: "PC-007", Brand: "Dell", Model: "Latitude", Status: "Active", Location: "Bogotá", Price: 1500000},
	{ID: 8, Code: "PC-008", Brand: "HP", Model: "EliteBook", Status: "Repair", Location: "Medellín", Price: 900000},
}

func newManager(t *testing.T, clock session.Clock) *session.Manager {
	t.Helper()
	m := session.NewManager(session.Options{Store: &session.MemoryStore{}, Clock: clock})
	t.Cleanup(m.Close)
	return m
}

func signedIn(t *testing.T, role session.Role) (*App, *fakeBackend, *session.Manager) {
	t.Helper()
	sess := newManager(t, nil)
	if err := sess.Login(session.Identity{Username: "ana", UserType: string(role)}, "opaque-token"); err != nil {
		t.Fatalf("login: %v", err)
	}
	backend := &fakeBackend{devices: sampleDevices}
	app := New(backend, sess, WithFormOptions(deviceform.WithDebounce(0)))
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, backend, sess
}

// runCmd executes c, giving up on commands that wait on a timer
func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(100 * time.Millisecond):
		return nil, false
	}
}

// drain feeds every message the command chain produces back into the app
func drain(a *App, cmd tea.Cmd) []tea.Msg {
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for n := 0; len(queue) > 0 && n < 200; n++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok {
			continue
		}
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
			continue
		case spinner.TickMsg, nil:
			continue
		}
		seen = append(seen, msg)
		_, next := a.Update(msg)
		queue = append(queue, next)
	}
	return seen
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInitialState(t *testing.T) {
	t.Run("anonymous starts on login", func(t *testing.T) {
		app := New(&fakeBackend{}, newManager(t, nil))
		if app.Screen() != ScreenLogin {
			t.Errorf("expected ScreenLogin, got %d", app.Screen())
		}
		if app.Init() == nil {
			t.Error("expected login form init command")
		}
	})

	t.Run("restored session starts on menu", func(t *testing.T) {
		app, _, _ := signedIn(t, session.RoleAdmin)
		if app.Screen() != ScreenMenu {
			t.Errorf("expected ScreenMenu, got %d", app.Screen())
		}
		if app.menu == nil {
			t.Error("expected menu to be initialized")
		}
	})
}

func TestAppLogin(t *testing.T) {
	sess := newManager(t, nil)
	backend := &fakeBackend{loginResp: &client.LoginResponse{
		Token: "opaque-token",
		User:  client.LoginUser{Username: "ana", UserType: "TECHNICIAN"},
	}}
	app := New(backend, sess)

	_, cmd := app.Update(login.SubmittedMsg{Email: "ana@pti-sa.com.co", Password: "secret"})
	drain(app, cmd)

	if app.Screen() != ScreenMenu {
		t.Fatalf("expected ScreenMenu after login, got %d", app.Screen())
	}
	if sess.Role() != session.RoleTechnician {
		t.Errorf("expected TECHNICIAN role, got %s", sess.Role())
	}
	if sess.Token() != "opaque-token" {
		t.Errorf("expected token stored, got %q", sess.Token())
	}
	if !strings.Contains(app.toast.Text(), "Signed in as ana") {
		t.Errorf("expected welcome toast, got %q", app.toast.Text())
	}
	if !strings.Contains(app.View(), "ana") {
		t.Error("expected header to show the username")
	}
}

func TestAppLoginFailure(t *testing.T) {
	tests := []struct {
		name string
		resp *client.LoginResponse
		err  error
		want string
	}{
		{
			name: "server message",
			err:  &client.APIError{Status: 401, Message: "Credenciales inválidas"},
			want: "Credenciales inválidas",
		},
		{
			name: "unauthorized without message",
			err:  &client.APIError{Status: 401},
			want: "Invalid email or password",
		},
		{
			name: "identity without username",
			resp: &client.LoginResponse{Token: "opaque-token"},
			want: "identity has no username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newManager(t, nil)
			app := New(&fakeBackend{loginResp: tt.resp, loginErr: tt.err}, sess)

			_, cmd := app.Update(login.SubmittedMsg{Email: "ana@pti-sa.com.co", Password: "wrong"})
			msg, _ := runCmd(cmd)
			app.Update(msg)

			if app.Screen() != ScreenLogin {
				t.Errorf("expected to stay on login, got %d", app.Screen())
			}
			if sess.Authenticated() {
				t.Error("expected no session")
			}
			if !strings.Contains(app.login.Err(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, app.login.Err())
			}
		})
	}
}

func TestAppGuardRedirectsToLogin(t *testing.T) {
	app, _, sess := signedIn(t, session.RoleAdmin)

	// Logout without a hook: nothing tells the app, the guard must catch it
	sess.Logout()
	if !strings.Contains(app.View(), "Sign") {
		t.Error("expected login view once the session is gone")
	}

	app.Update(key("j"))
	if app.Screen() != ScreenLogin {
		t.Errorf("expected ScreenLogin after guard, got %d", app.Screen())
	}
}

func TestAppGuardEndsExpiredToken(t *testing.T) {
	clock := &stepClock{now: time.Now()}
	sess := newManager(t, clock)
	token := testToken(t, clock.Now().Add(time.Minute))
	if err := sess.Login(session.Identity{Username: "ana", UserType: "ADMIN"}, token); err != nil {
		t.Fatal(err)
	}
	app := New(&fakeBackend{}, sess)

	clock.advance(2 * time.Minute)
	app.Update(key("j"))

	if sess.Authenticated() {
		t.Error("expected expired session to end")
	}
	if app.Screen() != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.Screen())
	}
}

func TestAppLoggedOutMsg(t *testing.T) {
	app, _, sess := signedIn(t, session.RoleAdmin)
	sess.Logout()

	app.Update(LoggedOutMsg{Reason: session.ReasonInactivity})

	if app.Screen() != ScreenLogin {
		t.Fatalf("expected ScreenLogin, got %d", app.Screen())
	}
	if !strings.Contains(app.View(), "Signed out after inactivity") {
		t.Error("expected inactivity notice on login screen")
	}
}

func TestAppActivityPushesIdleDeadline(t *testing.T) {
	clock := &stepClock{now: time.Now()}
	sess := newManager(t, clock)
	if err := sess.Login(session.Identity{Username: "ana", UserType: "ADMIN"}, "opaque-token"); err != nil {
		t.Fatal(err)
	}
	app := New(&fakeBackend{}, sess)
	before := sess.Deadline()

	clock.advance(time.Minute)
	app.Update(key("j"))
	afterKey := sess.Deadline()
	if !afterKey.After(before) {
		t.Errorf("expected key press to push the deadline, before %s after %s", before, afterKey)
	}

	clock.advance(time.Minute)
	app.Update(tea.MouseMsg{Action: tea.MouseActionMotion, Button: tea.MouseButtonNone, X: 10, Y: 4})
	afterMotion := sess.Deadline()
	if !afterMotion.After(afterKey) {
		t.Error("expected pointer movement without a button to push the deadline")
	}

	clock.advance(time.Minute)
	app.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !sess.Deadline().After(afterMotion) {
		t.Error("expected a click to push the deadline")
	}
}

func TestAppDevicesFlow(t *testing.T) {
	app, _, _ := signedIn(t, session.RoleAdmin)

	_, cmd := app.Update(menu.SelectedMsg{Action: menu.ActionDevices})
	drain(app, cmd)

	if app.Screen() != ScreenDevices {
		t.Fatalf("expected ScreenDevices, got %d", app.Screen())
	}
	if app.devices.Len() != 2 {
		t.Fatalf("expected 2 devices, got %d", app.devices.Len())
	}
	view := app.View()
	for _, want := range []string{"PC-007", "Updated", "d Delete"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	_, cmd = app.Update(key("b"))
	drain(app, cmd)
	if app.Screen() != ScreenMenu {
		t.Errorf("expected back to menu, got %d", app.Screen())
	}
}

func TestAppDeleteDevice(t *testing.T) {
	app, backend, _ := signedIn(t, session.RoleAdmin)
	drain(app, app.loadDevices())
	app.screen = ScreenDevices

	app.Update(key("d"))
	if !app.devices.Confirming() {
		t.Fatal("expected delete confirmation")
	}
	_, cmd := app.Update(key("y"))
	drain(app, cmd)

	if len(backend.deleted) != 1 || backend.deleted[0] != 7 {
		t.Errorf("expected device 7 deleted, got %v", backend.deleted)
	}
	if !strings.Contains(app.toast.Text(), "PC-007 deleted") {
		t.Errorf("expected delete toast, got %q", app.toast.Text())
	}
}

func TestAppDeleteFailureShowsToast(t *testing.T) {
	app, backend, _ := signedIn(t, session.RoleAdmin)
	backend.deleteErr = &client.APIError{Status: 409, Message: "Device has open assignments"}

	_, cmd := app.Update(devices.DeleteRequestedMsg{Device: sampleDevices[0]})
	drain(app, cmd)

	if app.toast.Text() != "Device has open assignments" {
		t.Errorf("expected server message toast, got %q", app.toast.Text())
	}
}

func TestAppRolePermissions(t *testing.T) {
	app, backend, _ := signedIn(t, session.RoleUser)
	drain(app, app.loadDevices())
	app.screen = ScreenDevices

	tests := []struct {
		name string
		msg  tea.Msg
	}{
		{"create", devices.CreateRequestedMsg{}},
		{"edit", devices.EditRequestedMsg{Device: sampleDevices[0]}},
		{"delete", devices.DeleteRequestedMsg{Device: sampleDevices[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := app.Update(tt.msg)
			drain(app, cmd)
			if app.Screen() != ScreenDevices {
				t.Errorf("expected to stay on devices, got %d", app.Screen())
			}
		})
	}
	if len(backend.deleted) != 0 {
		t.Errorf("expected no deletes, got %v", backend.deleted)
	}
}

func TestAppUnauthorizedEndsSession(t *testing.T) {
	app, backend, sess := signedIn(t, session.RoleAdmin)
	backend.devicesErr = &client.APIError{Status: 401, Message: "token expired"}

	_, cmd := app.Update(menu.SelectedMsg{Action: menu.ActionDevices})
	drain(app, cmd)

	if sess.Authenticated() {
		t.Error("expected rejected session to end")
	}
	if app.Screen() != ScreenLogin {
		t.Fatalf("expected ScreenLogin, got %d", app.Screen())
	}
	if !strings.Contains(app.View(), "Session no longer valid") {
		t.Error("expected rejected notice")
	}
}

func TestAppEditorLifecycle(t *testing.T) {
	app, _, _ := signedIn(t, session.RoleTechnician)
	drain(app, app.loadDevices())
	app.screen = ScreenDevices

	app.Update(devices.CreateRequestedMsg{})
	if app.Screen() != ScreenEditor || app.editor == nil {
		t.Fatalf("expected editor open, got screen %d", app.Screen())
	}
	form := app.editor.Form()

	app.Update(editor.CancelledMsg{})
	if app.Screen() != ScreenDevices {
		t.Errorf("expected return to devices, got %d", app.Screen())
	}
	if app.editor != nil {
		t.Error("expected editor cleared")
	}
	if !form.Closed() {
		t.Error("expected form closed on cancel")
	}
}

func TestAppSaveOutcomes(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		app, _, _ := signedIn(t, session.RoleAdmin)
		app.Update(menu.SelectedMsg{Action: menu.ActionNewDevice})
		if app.Screen() != ScreenEditor {
			t.Fatalf("expected editor, got %d", app.Screen())
		}

		_, cmd := app.Update(deviceform.SavedMsg{Mode: deviceform.ModeEdit, Device: &client.Device{Code: "PC-007"}})
		drain(app, cmd)

		if app.Screen() != ScreenDevices {
			t.Errorf("expected devices after save, got %d", app.Screen())
		}
		if app.editor != nil {
			t.Error("expected editor closed")
		}
		if app.toast.Text() != "Device updated: PC-007" {
			t.Errorf("unexpected toast %q", app.toast.Text())
		}
		if app.devices.Len() != 2 {
			t.Errorf("expected list reloaded, got %d", app.devices.Len())
		}
	})

	t.Run("failed keeps the form", func(t *testing.T) {
		app, _, sess := signedIn(t, session.RoleAdmin)
		app.Update(menu.SelectedMsg{Action: menu.ActionNewDevice})

		_, cmd := app.Update(deviceform.SaveFailedMsg{Message: "Serial already registered", Err: &client.APIError{Status: 409}})
		drain(app, cmd)

		if app.Screen() != ScreenEditor {
			t.Errorf("expected to stay in editor, got %d", app.Screen())
		}
		if app.toast.Text() != "Serial already registered" {
			t.Errorf("unexpected toast %q", app.toast.Text())
		}
		if !sess.Authenticated() {
			t.Error("expected session kept")
		}
	})

	t.Run("unauthorized logs out", func(t *testing.T) {
		app, _, sess := signedIn(t, session.RoleAdmin)
		app.Update(menu.SelectedMsg{Action: menu.ActionNewDevice})

		_, cmd := app.Update(deviceform.SaveFailedMsg{Message: "expired", Err: &client.APIError{Status: 401}})
		drain(app, cmd)

		if sess.Authenticated() || app.Screen() != ScreenLogin {
			t.Errorf("expected logout, screen %d", app.Screen())
		}
	})
}

func TestAppSummary(t *testing.T) {
	app, _, _ := signedIn(t, session.RoleUser)

	_, cmd := app.Update(menu.SelectedMsg{Action: menu.ActionSummary})
	if !strings.Contains(app.View(), "Loading") {
		t.Error("expected loading state before data arrives")
	}
	drain(app, cmd)

	view := app.View()
	for _, want := range []string{"Inventory Summary", "2 devices", "Repair", "r Refresh"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected summary view to contain %q", want)
		}
	}

	app.Update(key("b"))
	if app.Screen() != ScreenMenu {
		t.Errorf("expected menu, got %d", app.Screen())
	}
}

func TestAppLogoutAction(t *testing.T) {
	app, _, sess := signedIn(t, session.RoleAdmin)
	app.lastEmail = "ana@pti-sa.com.co"

	app.Update(menu.SelectedMsg{Action: menu.ActionLogout})

	if sess.Authenticated() {
		t.Error("expected session ended")
	}
	if app.Screen() != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.Screen())
	}
}

func TestAppLogoutActionIgnoresLateHookMsg(t *testing.T) {
	app, _, sess := signedIn(t, session.RoleAdmin)
	var reasons []session.Reason
	sess.SetLogoutHook(func(r session.Reason) { reasons = append(reasons, r) })

	app.Update(menu.SelectedMsg{Action: menu.ActionLogout})
	before := app.login
	if len(reasons) != 1 || reasons[0] != session.ReasonExplicit {
		t.Fatalf("expected one explicit logout notification, got %v", reasons)
	}

	_, cmd := app.Update(LoggedOutMsg{Reason: reasons[0]})
	if cmd != nil {
		t.Error("expected no command for a logout already shown")
	}
	if app.login != before {
		t.Error("expected login screen kept, not rebuilt")
	}
	if app.Screen() != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.Screen())
	}
}

func TestAppToastDismiss(t *testing.T) {
	app, _, _ := signedIn(t, session.RoleAdmin)
	app.Update(menu.SelectedMsg{Action: menu.ActionDevices})

	_, cmd := app.Update(devicesLoadedMsg{err: errors.New("backend down")})
	drain(app, cmd)
	if app.toast.Text() != "backend down" {
		t.Fatalf("expected error toast, got %q", app.toast.Text())
	}
	if !strings.Contains(app.View(), "ctrl+x Dismiss") {
		t.Error("expected dismiss shortcut while a toast is shown")
	}

	app.Update(key("ctrl+x"))
	if app.toast.Visible() {
		t.Error("expected toast dismissed")
	}
	if app.Screen() != ScreenDevices {
		t.Errorf("expected dismiss to keep the screen, got %d", app.Screen())
	}
}

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "ana", "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestLogoutNotice(t *testing.T) {
	tests := []struct {
		reason session.Reason
		want   string
	}{
		{session.ReasonInactivity, "inactivity"},
		{session.ReasonExpired, "expired"},
		{session.ReasonRejected, "no longer valid"},
		{session.ReasonExplicit, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			got := logoutNotice(tt.reason)
			if tt.want == "" && got != "" {
				t.Errorf("expected no notice, got %q", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected notice containing %q, got %q", tt.want, got)
			}
		})
	}
}
