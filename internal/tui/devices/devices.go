// ABOUTME: Device list screen backed by a bubbles table
// ABOUTME: Emits edit, create, delete, and refresh requests for the app to run

package devices

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ptisa/inventory-admin/internal/client"
	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/ptisa/inventory-admin/internal/tui/menu"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
	"github.com/ptisa/inventory-admin/internal/tui/widgets"
)

// EditRequestedMsg asks the app to open a device in the form
type EditRequestedMsg struct {
	Device client.Device
}

// CreateRequestedMsg asks the app to open an empty form
type CreateRequestedMsg struct{}

// DeleteRequestedMsg asks the app to delete a confirmed device
type DeleteRequestedMsg struct {
	Device client.Device
}

// RefreshRequestedMsg asks the app to reload the list
type RefreshRequestedMsg struct{}

// BackMsg returns to the menu
type BackMsg struct{}

var columns = []table.Column{
	{Title: "Code", Width: 10},
	{Title: "Brand", Width: 10},
	{Title: "Model", Width: 16},
	{Title: "Serial", Width: 14},
	{Title: "Status", Width: 12},
	{Title: "Location", Width: 12},
	{Title: "User", Width: 24},
	{Title: "Price", Width: 12},
}

// Devices lists the inventory
type Devices struct {
	role    session.Role
	table   table.Model
	spinner spinner.Model
	devices []client.Device
	loading bool
	confirm *client.Device
	err     string
}

// New creates an empty list for a role; call SetLoading before fetching
func New(role session.Role) *Devices {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithWidth(120),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.Text).
		Background(styles.Primary)
	t.SetStyles(ts)

	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Devices{role: role, table: t, spinner: s}
}

// SetLoading shows the spinner until SetDevices or SetError
func (d *Devices) SetLoading() tea.Cmd {
	d.loading = true
	d.err = ""
	return d.spinner.Tick
}

// SetDevices replaces the rows
func (d *Devices) SetDevices(devices []client.Device) {
	d.loading = false
	d.err = ""
	d.devices = devices
	d.confirm = nil

	rows := make([]table.Row, 0, len(devices))
	for _, dev := range devices {
		rows = append(rows, table.Row{
			dev.Code,
			dev.Brand,
			dev.Model,
			dev.Serial,
			dev.Status,
			dev.Location,
			dev.UserEmail,
			FormatPrice(dev.Price),
		})
	}
	d.table.SetRows(rows)
	if d.table.Cursor() >= len(rows) {
		d.table.SetCursor(max(0, len(rows)-1))
	}
}

// SetError stops loading and shows a message in place of the table
func (d *Devices) SetError(message string) {
	d.loading = false
	d.err = message
}

// SetSize fits the table to the content area
func (d *Devices) SetSize(width, height int) {
	if height > 6 {
		d.table.SetHeight(height - 6)
	}
	d.table.SetWidth(width)
}

// Selected returns the device under the cursor
func (d *Devices) Selected() (client.Device, bool) {
	i := d.table.Cursor()
	if i < 0 || i >= len(d.devices) {
		return client.Device{}, false
	}
	return d.devices[i], true
}

// Len returns the number of listed devices
func (d *Devices) Len() int { return len(d.devices) }

// Confirming reports whether a delete confirmation is open
func (d *Devices) Confirming() bool { return d.confirm != nil }

// Init implements tea.Model
func (d *Devices) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (d *Devices) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok {
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	if d.confirm != nil {
		return d.updateConfirm(key)
	}

	switch key.String() {
	case "b", "esc":
		return d, func() tea.Msg { return BackMsg{} }
	case "r":
		return d, func() tea.Msg { return RefreshRequestedMsg{} }
	case "n":
		if menu.CanCreate(d.role) {
			return d, func() tea.Msg { return CreateRequestedMsg{} }
		}
		return d, nil
	case "enter", "e":
		if dev, ok := d.Selected(); ok && menu.CanEdit(d.role) {
			return d, func() tea.Msg { return EditRequestedMsg{Device: dev} }
		}
		return d, nil
	case "d":
		if dev, ok := d.Selected(); ok && menu.CanDelete(d.role) {
			d.confirm = &dev
		}
		return d, nil
	}

	var cmd tea.Cmd
	d.table, cmd = d.table.Update(msg)
	return d, cmd
}

func (d *Devices) updateConfirm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	dev := *d.confirm
	d.confirm = nil
	if key.String() == "y" {
		return d, func() tea.Msg { return DeleteRequestedMsg{Device: dev} }
	}
	return d, nil
}

// View implements tea.Model
func (d *Devices) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(fmt.Sprintf("Devices (%d)", len(d.devices))))
	sb.WriteString("\n")

	switch {
	case d.loading:
		sb.WriteString(d.spinner.View() + " Loading devices...")
	case d.err != "":
		sb.WriteString(styles.StatusCritical.Render("Error: " + d.err))
	case len(d.devices) == 0:
		sb.WriteString(styles.Subtitle.Render("No devices registered"))
	default:
		sb.WriteString(d.table.View())
		if dev, ok := d.Selected(); ok {
			sb.WriteString("\n")
			sb.WriteString(widgets.StatusText(dev.Status))
			if dev.Note != "" {
				sb.WriteString("  " + styles.Subtitle.Render(dev.Note))
			}
		}
	}

	if d.confirm != nil {
		sb.WriteString("\n\n")
		sb.WriteString(styles.StatusWarning.Render(fmt.Sprintf("Delete %s? (y/N)", d.confirm.Code)))
	}
	return sb.String()
}

// Shortcuts lists the keys available to the role
func (d *Devices) Shortcuts() []string {
	keys := []string{"↑↓ Navigate"}
	if menu.CanEdit(d.role) {
		keys = append(keys, "e Edit")
	}
	if menu.CanCreate(d.role) {
		keys = append(keys, "n New")
	}
	if menu.CanDelete(d.role) {
		keys = append(keys, "d Delete")
	}
	return append(keys, "r Refresh", "b Back")
}

// FormatPrice renders a price with thousands separators
func FormatPrice(price float64) string {
	whole := strconv.FormatInt(int64(price), 10)
	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	out := "$" + sb.String()
	if neg {
		out = "-" + out
	}
	return out
}
