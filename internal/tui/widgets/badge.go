// ABOUTME: Badge widgets for device status and user role
// ABOUTME: Renders colored inline labels used by the device table and header

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/ptisa/inventory-admin/internal/tui/icons"
)

// Level is the visual severity of a badge
type Level int

const (
	LevelOK Level = iota
	LevelWarning
	LevelCritical
	LevelInfo
	LevelNeutral
)

var (
	okBg      = lipgloss.Color("#10B981")
	warnBg    = lipgloss.Color("#F59E0B")
	critBg    = lipgloss.Color("#EF4444")
	infoBg    = lipgloss.Color("#3B82F6")
	neutralBg = lipgloss.Color("#6B7280")
	lightFg   = lipgloss.Color("#FFFFFF")
	darkFg    = lipgloss.Color("#000000")
)

func colors(level Level) (bg, fg lipgloss.Color) {
	switch level {
	case LevelOK:
		return okBg, lightFg
	case LevelWarning:
		return warnBg, darkFg
	case LevelCritical:
		return critBg, lightFg
	case LevelInfo:
		return infoBg, lightFg
	default:
		return neutralBg, lightFg
	}
}

// Badge renders a colored badge
func Badge(text string, level Level) string {
	bg, fg := colors(level)
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// statusLevels maps device status names, lowercased, to a badge level
var statusLevels = map[string]Level{
	"active":      LevelOK,
	"activo":      LevelOK,
	"assigned":    LevelOK,
	"asignado":    LevelOK,
	"available":   LevelInfo,
	"disponible":  LevelInfo,
	"repair":      LevelWarning,
	"reparación":  LevelWarning,
	"maintenance": LevelWarning,
	"retired":     LevelCritical,
	"baja":        LevelCritical,
	"lost":        LevelCritical,
}

// StatusLevel returns the badge level for a device status name
func StatusLevel(status string) Level {
	if l, ok := statusLevels[strings.ToLower(strings.TrimSpace(status))]; ok {
		return l
	}
	return LevelNeutral
}

// StatusIcon returns the icon for a badge level
func StatusIcon(level Level) string {
	bg, _ := colors(level)
	style := lipgloss.NewStyle().Foreground(bg)
	switch level {
	case LevelOK:
		return style.Render(icons.CheckOK.String())
	case LevelWarning:
		return style.Render(icons.Warning.String())
	case LevelCritical:
		return style.Render(icons.Critical.String())
	case LevelInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText renders a device status with its icon
func StatusText(status string) string {
	level := StatusLevel(status)
	bg, _ := colors(level)
	return fmt.Sprintf("%s %s", StatusIcon(level), lipgloss.NewStyle().Foreground(bg).Render(status))
}

// RoleBadge renders the session role
func RoleBadge(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return Badge("ADMIN", LevelCritical)
	case session.RoleTechnician:
		return Badge("TECH", LevelWarning)
	case session.RoleUser:
		return Badge("USER", LevelInfo)
	default:
		return Badge("--", LevelNeutral)
	}
}
