// ABOUTME: Tests for shared styles
// ABOUTME: Checks bar proportions and that the form theme builds

package styles

import (
	"strings"
	"testing"
)

func TestBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		width   int
		filled  int
	}{
		{"empty", 0, 10, 0},
		{"half", 50, 10, 5},
		{"full", 100, 10, 10},
		{"over", 150, 10, 10},
		{"negative", -5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := Bar(tt.percent, tt.width)
			if got := strings.Count(bar, "█"); got != tt.filled {
				t.Errorf("expected %d filled cells, got %d", tt.filled, got)
			}
			if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
				t.Errorf("expected width %d, got %d", tt.width, got)
			}
		})
	}
}

func TestBar_ZeroWidth(t *testing.T) {
	if Bar(50, 0) != "" {
		t.Error("expected empty bar for zero width")
	}
}

func TestFormTheme(t *testing.T) {
	if FormTheme() == nil {
		t.Fatal("expected theme")
	}
}
