// ABOUTME: Main menu shown after login
// ABOUTME: Lists the actions the current role may use

package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/ptisa/inventory-admin/internal/tui/icons"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
)

// Action is a menu entry's target
type Action int

const (
	ActionDevices Action = iota
	ActionNewDevice
	ActionSummary
	ActionLogout
	ActionQuit
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case ActionDevices:
		return "devices"
	case ActionNewDevice:
		return "new-device"
	case ActionSummary:
		return "summary"
	case ActionLogout:
		return "logout"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// SelectedMsg is sent when an entry is chosen
type SelectedMsg struct {
	Action Action
}

// CancelledMsg is sent when the menu is dismissed
type CancelledMsg struct{}

type item struct {
	label  string
	icon   icons.Icon
	action Action
}

// CanCreate reports whether the role sees the new-device entry
func CanCreate(role session.Role) bool {
	return role == session.RoleAdmin || role == session.RoleTechnician
}

// CanEdit reports whether the role may open a device for editing
func CanEdit(role session.Role) bool {
	return role == session.RoleAdmin || role == session.RoleTechnician
}

// CanDelete reports whether the role sees the delete action
func CanDelete(role session.Role) bool {
	return role == session.RoleAdmin
}

// Menu is a cursor-driven list of actions
type Menu struct {
	role   session.Role
	items  []item
	cursor int
}

// New builds the menu for a role. The server still enforces every action.
func New(role session.Role) *Menu {
	items := []item{{label: "Devices", icon: icons.Device, action: ActionDevices}}
	if CanCreate(role) {
		items = append(items, item{label: "Register device", icon: icons.Add, action: ActionNewDevice})
	}
	items = append(items,
		item{label: "Inventory summary", icon: icons.Chart, action: ActionSummary},
		item{label: "Log out", icon: icons.Logout, action: ActionLogout},
		item{label: "Quit", icon: icons.Back, action: ActionQuit},
	)
	return &Menu{role: role, items: items}
}

// Actions lists the entries in display order
func (m *Menu) Actions() []Action {
	out := make([]Action, len(m.items))
	for i, it := range m.items {
		out[i] = it.action
	}
	return out
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		action := m.items[m.cursor].action
		return m, func() tea.Msg { return SelectedMsg{Action: action} }
	case "q", "esc":
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

// View implements tea.Model
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Inventory"))
	sb.WriteString("\n")

	for i, it := range m.items {
		line := it.icon.String() + " " + it.label
		if i == m.cursor {
			sb.WriteString(styles.Selected.Render("> " + line))
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(styles.Text).Render("  " + line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
