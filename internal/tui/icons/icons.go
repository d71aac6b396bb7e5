// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides the inventory iconography across terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// nerdFontTerminals commonly ship with a patched font
var nerdFontTerminals = []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}

// Detect reports whether Nerd Fonts should be used for the given environment
func Detect(getenv func(string) string) bool {
	if env := getenv("INVENTORY_NERD_FONTS"); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := getenv("TERM")
	termProgram := getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = Detect(os.Getenv)
	})
	return useNerdFonts
}

// Icon holds a Nerd Font glyph and its Unicode fallback
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Records
	Device   = Icon{"󰌢", "▣"} // nf-md-laptop
	User     = Icon{"", "●"} // nf-oct-person
	Location = Icon{"󰍎", "◎"} // nf-md-map_marker
	Lock     = Icon{"", "▪"} // nf-oct-lock

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info
	Clock    = Icon{"󰥔", "◷"} // nf-md-clock_outline

	// Actions
	Add     = Icon{"󰐕", "+"} // nf-md-plus
	Edit    = Icon{"󰏫", "✎"} // nf-md-pencil
	Delete  = Icon{"󰆴", "−"} // nf-md-delete
	Chart   = Icon{"󰄧", "▤"} // nf-md-chart_bar
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Logout  = Icon{"󰗼", "×"} // nf-md-exit_to_app

	// Application
	App = Icon{"󰆼", "◈"} // nf-md-database
)
