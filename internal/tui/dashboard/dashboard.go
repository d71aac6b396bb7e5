// ABOUTME: Dashboard component showing the inventory composition
// ABOUTME: Renders device counts per status and per brand as bars

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ptisa/inventory-admin/internal/summary"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
	"github.com/ptisa/inventory-admin/internal/tui/widgets"
)

const (
	nameWidth = 16
	minBar    = 10
)

// Dashboard displays the summary of the device inventory
type Dashboard struct {
	summary *summary.Summary
	width   int
	height  int
}

// New creates a dashboard; a nil summary shows the loading state
func New(s *summary.Summary, width, height int) *Dashboard {
	return &Dashboard{
		summary: s,
		width:   width,
		height:  height,
	}
}

// Update replaces the summary
func (d *Dashboard) Update(s *summary.Summary) {
	d.summary = s
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.summary == nil {
		return styles.Panel.Width(d.width).Render("Loading inventory...")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Inventory Summary"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d devices", d.summary.Total)))
	sb.WriteString("\n")

	left := d.section("By status", d.summary.ByStatus, true)
	right := d.section("By brand", d.summary.ByBrand, false)
	if d.width >= 2*(nameWidth+minBar+12) {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right))
	} else {
		sb.WriteString(left + "\n" + right)
	}

	style := lipgloss.NewStyle().Width(d.width)
	if d.height > 0 {
		style = style.MaxHeight(d.height)
	}
	return style.Render(sb.String())
}

func (d *Dashboard) barWidth() int {
	w := d.width/2 - nameWidth - 16
	if w < minBar {
		return minBar
	}
	return w
}

func (d *Dashboard) section(title string, buckets []summary.Bucket, withStatus bool) string {
	var sb strings.Builder
	sb.WriteString(styles.KeyStyle.Render(title))
	sb.WriteString("\n")
	if len(buckets) == 0 {
		sb.WriteString(styles.Subtitle.Render("no devices"))
		return sb.String()
	}

	for _, b := range buckets {
		name := b.Name
		if withStatus {
			name = widgets.StatusIcon(widgets.StatusLevel(b.Name)) + " " + name
		}
		pct := d.summary.Percent(b)
		sb.WriteString(lipgloss.NewStyle().Width(nameWidth).Render(name))
		sb.WriteString(styles.Bar(pct, d.barWidth()))
		sb.WriteString(fmt.Sprintf(" %3d  %5.1f%%\n", b.Count, pct))
	}
	return sb.String()
}
