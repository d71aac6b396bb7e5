// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state, guards protected screens, and routes input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ptisa/inventory-admin/internal/client"
	"github.com/ptisa/inventory-admin/internal/deviceform"
	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/ptisa/inventory-admin/internal/summary"
	"github.com/ptisa/inventory-admin/internal/tui/dashboard"
	"github.com/ptisa/inventory-admin/internal/tui/devices"
	"github.com/ptisa/inventory-admin/internal/tui/editor"
	"github.com/ptisa/inventory-admin/internal/tui/icons"
	"github.com/ptisa/inventory-admin/internal/tui/login"
	"github.com/ptisa/inventory-admin/internal/tui/menu"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
	"github.com/ptisa/inventory-admin/internal/tui/toast"
	"github.com/ptisa/inventory-admin/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenMenu
	ScreenDevices
	ScreenEditor
	ScreenSummary
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before the frame stops shrinking
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// Backend is everything the screens call on the inventory API
type Backend interface {
	deviceform.Backend
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Devices(ctx context.Context) ([]client.Device, error)
	DeleteDevice(ctx context.Context, id int) error
}

// LoggedOutMsg is sent by the session manager's logout hook
type LoggedOutMsg struct {
	Reason session.Reason
}

// loginResultMsg is sent when the authentication call returns
type loginResultMsg struct {
	email string
	resp  *client.LoginResponse
	err   error
}

// devicesLoadedMsg is sent when the device list is fetched
type devicesLoadedMsg struct {
	devices []client.Device
	err     error
}

// summaryLoadedMsg is sent when the summary screen's data is fetched
type summaryLoadedMsg struct {
	summary *summary.Summary
	err     error
}

// deletedMsg is sent when a delete request completes
type deletedMsg struct {
	device client.Device
	err    error
}

// Option configures an App
type Option func(*App)

// WithFormOptions passes options to every device form the app opens
func WithFormOptions(opts ...deviceform.Option) Option {
	return func(a *App) { a.formOpts = append(a.formOpts, opts...) }
}

// App is the root model for the TUI
type App struct {
	backend    Backend
	sess       *session.Manager
	screen     Screen
	returnTo   Screen
	width      int
	height     int
	lastEmail  string
	lastUpdate time.Time
	formOpts   []deviceform.Option

	// Child models
	login     *login.Login
	menu      *menu.Menu
	devices   *devices.Devices
	editor    *editor.Editor
	dashboard *dashboard.Dashboard
	toast     toast.Model
}

// New creates the TUI application. A restored session starts on the menu.
func New(backend Backend, sess *session.Manager, opts ...Option) *App {
	a := &App{
		backend: backend,
		sess:    sess,
		screen:  ScreenLogin,
		login:   login.New(""),
		toast:   toast.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if cur := sess.Current(); cur != nil {
		a.lastEmail = cur.Username
		a.menu = menu.New(cur.Role)
		a.screen = ScreenMenu
	}
	return a
}

// Screen returns the active screen
func (a *App) Screen() Screen { return a.screen }

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenLogin {
		return a.login.Init()
	}
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var toastCmd tea.Cmd
	a.toast, toastCmd = a.toast.Update(msg)
	model, cmd := a.update(msg)
	return model, tea.Batch(toastCmd, cmd)
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		if a.screen == ScreenLogin {
			return a.updateLogin(msg)
		}
		return a, nil

	case LoggedOutMsg:
		// Logout and rejection switch to login synchronously; the hook's copy is late
		if a.screen == ScreenLogin {
			return a, nil
		}
		return a, a.toLogin(msg.Reason)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		a.sess.Touch()
		if msg.String() == "ctrl+x" && a.toast.Visible() {
			a.toast = a.toast.Dismiss()
			return a, nil
		}

	case tea.MouseMsg:
		a.sess.Touch()
		return a, nil
	}

	if a.screen != ScreenLogin && !a.sess.Guard() {
		return a, a.toLogin(session.ReasonExpired)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.updateKey(msg)

	case login.SubmittedMsg:
		a.lastEmail = msg.Email
		return a, a.authenticate(msg.Email, msg.Password)

	case login.CancelledMsg:
		return a, tea.Quit

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case menu.SelectedMsg:
		return a.handleMenuAction(msg.Action)

	case menu.CancelledMsg:
		return a, tea.Quit

	case devices.BackMsg:
		a.screen = ScreenMenu
		return a, nil

	case devices.RefreshRequestedMsg:
		return a, a.loadDevices()

	case devices.CreateRequestedMsg:
		return a, a.openCreate()

	case devices.EditRequestedMsg:
		if !menu.CanEdit(a.sess.Role()) {
			return a, nil
		}
		return a, a.openEditor(deviceform.NewEdit(a.backend, msg.Device, a.formOpts...))

	case devices.DeleteRequestedMsg:
		if !menu.CanDelete(a.sess.Role()) {
			return a, nil
		}
		return a, a.deleteDevice(msg.Device)

	case devicesLoadedMsg:
		return a.handleDevicesLoaded(msg)

	case summaryLoadedMsg:
		return a.handleSummaryLoaded(msg)

	case deletedMsg:
		if msg.err != nil {
			return a, a.handleAPIError(msg.err)
		}
		return a, tea.Batch(
			toast.Show(fmt.Sprintf("Device %s deleted", msg.device.Code), toast.LevelSuccess),
			a.loadDevices(),
		)

	case deviceform.SavedMsg:
		return a.handleSaved(msg)

	case deviceform.SaveFailedMsg:
		if errors.Is(msg.Err, client.ErrUnauthorized) {
			return a, a.handleAPIError(msg.Err)
		}
		return a, toast.Error(msg.Message)

	case editor.CancelledMsg:
		a.closeEditor()
		a.screen = a.returnTo
		return a, nil
	}

	// Everything else belongs to a child component's internals
	return a.forward(msg)
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		return a.updateLogin(msg)
	case ScreenMenu:
		return a.updateMenu(msg)
	case ScreenDevices:
		return a.updateDevices(msg)
	case ScreenEditor:
		return a.updateEditor(msg)
	case ScreenSummary:
		return a.updateSummary(msg)
	}
	return a, nil
}

// forward routes component-internal messages. Form results go to the open
// editor even when another screen is showing; the form drops what it does not own.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		return a.updateLogin(msg)
	case ScreenDevices:
		return a.updateDevices(msg)
	}
	if a.editor != nil {
		return a.updateEditor(msg)
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.login.Update(msg)
	a.login = model.(*login.Login)
	return a, cmd
}

func (a *App) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.menu == nil {
		return a, nil
	}
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateDevices(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.devices == nil {
		return a, nil
	}
	model, cmd := a.devices.Update(msg)
	a.devices = model.(*devices.Devices)
	return a, cmd
}

func (a *App) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.editor == nil {
		return a, nil
	}
	model, cmd := a.editor.Update(msg)
	a.editor = model.(*editor.Editor)
	return a, cmd
}

func (a *App) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		return a, a.loadSummary()
	case "b", "esc":
		a.screen = ScreenMenu
		return a, nil
	}
	return a, nil
}

func (a *App) handleMenuAction(action menu.Action) (tea.Model, tea.Cmd) {
	switch action {
	case menu.ActionDevices:
		a.screen = ScreenDevices
		return a, a.loadDevices()
	case menu.ActionNewDevice:
		return a, a.openCreate()
	case menu.ActionSummary:
		a.dashboard = dashboard.New(nil, a.contentWidth(), a.contentHeight())
		a.screen = ScreenSummary
		return a, a.loadSummary()
	case menu.ActionLogout:
		a.sess.Logout()
		return a, a.toLogin(session.ReasonExplicit)
	case menu.ActionQuit:
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		slog.Debug("Login failed", "email", msg.email, "error", msg.err)
		return a, a.login.Fail(loginMessage(msg.err))
	}

	identity := session.Identity{Username: msg.resp.User.Username, UserType: msg.resp.User.UserType}
	if err := a.sess.Login(identity, msg.resp.Token); err != nil {
		slog.Warn("Login response refused", "email", msg.email, "error", err)
		return a, a.login.Fail("Sign-in failed: " + err.Error())
	}

	a.menu = menu.New(a.sess.Role())
	a.devices = nil
	a.dashboard = nil
	a.screen = ScreenMenu
	return a, toast.Show("Signed in as "+identity.Username, toast.LevelSuccess)
}

func (a *App) handleDevicesLoaded(msg devicesLoadedMsg) (tea.Model, tea.Cmd) {
	if a.devices == nil {
		return a, nil
	}
	if msg.err != nil {
		a.devices.SetError(msg.err.Error())
		return a, a.handleAPIError(msg.err)
	}
	a.devices.SetDevices(msg.devices)
	a.lastUpdate = time.Now()
	return a, nil
}

func (a *App) handleSummaryLoaded(msg summaryLoadedMsg) (tea.Model, tea.Cmd) {
	if a.dashboard == nil {
		return a, nil
	}
	if msg.err != nil {
		return a, a.handleAPIError(msg.err)
	}
	a.dashboard.Update(msg.summary)
	a.lastUpdate = time.Now()
	return a, nil
}

func (a *App) handleSaved(msg deviceform.SavedMsg) (tea.Model, tea.Cmd) {
	a.closeEditor()
	text := "Device registered"
	if msg.Mode == deviceform.ModeEdit {
		text = "Device updated"
	}
	if msg.Device != nil && msg.Device.Code != "" {
		text += ": " + msg.Device.Code
	}
	a.screen = ScreenDevices
	return a, tea.Batch(toast.Show(text, toast.LevelSuccess), a.loadDevices())
}

// handleAPIError turns a failed call into a toast. A rejected token ends the
// session and returns to login.
func (a *App) handleAPIError(err error) tea.Cmd {
	if errors.Is(err, client.ErrUnauthorized) {
		a.sess.Reject()
		return a.toLogin(session.ReasonRejected)
	}
	return toast.Error(err.Error())
}

// toLogin shows the login screen with a notice for reason. Already being on
// the login screen only updates the notice so typed input survives.
func (a *App) toLogin(reason session.Reason) tea.Cmd {
	a.closeEditor()
	a.devices = nil
	a.dashboard = nil
	if a.screen == ScreenLogin && !a.login.Pending() {
		a.login.SetNotice(logoutNotice(reason))
		return nil
	}
	a.screen = ScreenLogin
	a.login = login.New(a.lastEmail)
	a.login.SetNotice(logoutNotice(reason))
	return a.login.Init()
}

func (a *App) openCreate() tea.Cmd {
	if !menu.CanCreate(a.sess.Role()) {
		return nil
	}
	return a.openEditor(deviceform.New(a.backend, a.formOpts...))
}

func (a *App) openEditor(form *deviceform.Form) tea.Cmd {
	a.closeEditor()
	a.returnTo = a.screen
	a.editor = editor.New(form)
	a.screen = ScreenEditor
	return a.editor.Init()
}

func (a *App) closeEditor() {
	if a.editor != nil {
		a.editor.Close()
		a.editor = nil
	}
}

func (a *App) resize() {
	if a.devices != nil {
		a.devices.SetSize(a.contentWidth(), a.contentHeight())
	}
	if a.dashboard != nil {
		a.dashboard.SetSize(a.contentWidth(), a.contentHeight())
	}
}

// authenticate creates a command that calls the login endpoint
func (a *App) authenticate(email, password string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.backend.Login(context.Background(), email, password)
		return loginResultMsg{email: email, resp: resp, err: err}
	}
}

// loadDevices creates a command to fetch the device list
func (a *App) loadDevices() tea.Cmd {
	if a.devices == nil {
		a.devices = devices.New(a.sess.Role())
		a.devices.SetSize(a.contentWidth(), a.contentHeight())
	}
	fetch := func() tea.Msg {
		list, err := a.backend.Devices(context.Background())
		return devicesLoadedMsg{devices: list, err: err}
	}
	return tea.Batch(a.devices.SetLoading(), fetch)
}

// loadSummary creates a command to fetch devices and aggregate them
func (a *App) loadSummary() tea.Cmd {
	return func() tea.Msg {
		list, err := a.backend.Devices(context.Background())
		if err != nil {
			return summaryLoadedMsg{err: err}
		}
		s := summary.Build(list)
		return summaryLoadedMsg{summary: &s}
	}
}

// deleteDevice creates a command to remove a device
func (a *App) deleteDevice(dev client.Device) tea.Cmd {
	return func() tea.Msg {
		err := a.backend.DeleteDevice(context.Background(), dev.ID)
		return deletedMsg{device: dev, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.visibleScreen() {
	case ScreenLogin:
		content = a.login.View()
	case ScreenMenu:
		if a.menu != nil {
			content = a.menu.View()
		}
	case ScreenDevices:
		if a.devices != nil {
			content = styles.ActivePanel.Width(a.width - panelPadding).Render(a.devices.View())
		}
	case ScreenEditor:
		if a.editor != nil {
			content = a.editor.View()
		}
	case ScreenSummary:
		if a.dashboard != nil {
			content = styles.ActivePanel.Width(a.width - panelPadding).Render(a.dashboard.View())
		}
	}

	if a.toast.Visible() {
		content = a.toast.View() + "\n" + content
	}
	return a.wrapWithFrame(content)
}

// visibleScreen never lets a protected screen render without a session
func (a *App) visibleScreen() Screen {
	if a.screen != ScreenLogin && !a.sess.Authenticated() {
		return ScreenLogin
	}
	return a.screen
}

// frameWidth is the width used by header and footer. One column short of the
// terminal prevents wrapping on some terminals.
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

// contentWidth is the width inside a bordered, padded panel
func (a *App) contentWidth() int {
	return a.width - 2*panelPadding
}

// contentHeight calculates the height available between header and footer
func (a *App) contentHeight() int {
	// Header, footer, the newlines around content, and panel border+padding
	return a.height - 8
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Inventory Admin"))

	rightText := ""
	if cur := a.sess.Current(); cur != nil {
		rightText = " " + icons.User.String() + " " + contextStyle.Render(cur.Username) + " " + widgets.RoleBadge(cur.Role) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}
	leftText := " " + strings.Join(styledShortcuts, "  ") + " "

	rightText := ""
	screen := a.visibleScreen()
	if !a.lastUpdate.IsZero() && (screen == ScreenDevices || screen == ScreenSummary) {
		rightText = " " + statusStyle.Render("Updated "+formatTimeSince(a.lastUpdate)) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╯")
}

// shortcuts lists the keys for the visible screen
func (a *App) shortcuts() []string {
	var keys []string
	switch a.visibleScreen() {
	case ScreenLogin:
		keys = []string{"Tab Next", "Enter Sign in", "ctrl+c Quit"}
	case ScreenMenu:
		keys = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case ScreenDevices:
		if a.devices != nil {
			keys = a.devices.Shortcuts()
		}
	case ScreenEditor:
		if a.editor != nil {
			keys = a.editor.Shortcuts()
		}
	case ScreenSummary:
		keys = []string{"r Refresh", "b Back", "q Quit"}
	}
	if a.toast.Visible() {
		keys = append(keys, "ctrl+x Dismiss")
	}
	return keys
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// loginMessage is the text shown under the login form for a failed attempt
func loginMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return "Invalid email or password"
	}
	return err.Error()
}

// logoutNotice explains on the login screen why the last session ended
func logoutNotice(reason session.Reason) string {
	switch reason {
	case session.ReasonInactivity:
		return "Signed out after inactivity"
	case session.ReasonExpired:
		return "Session expired, sign in again"
	case session.ReasonRejected:
		return "Session no longer valid, sign in again"
	}
	return ""
}

// Run starts the TUI. The session's logout hook is pointed at the program so
// timer-driven logouts reach the event loop.
func Run(backend Backend, sess *session.Manager, opts ...Option) error {
	app := New(backend, sess, opts...)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	// Send blocks until the loop reads it, and the hook can fire from inside Update
	sess.SetLogoutHook(func(r session.Reason) {
		go p.Send(LoggedOutMsg{Reason: r})
	})
	defer sess.SetLogoutHook(nil)

	_, err := p.Run()
	return err
}
