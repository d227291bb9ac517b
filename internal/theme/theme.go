// Package theme holds the colors and status markers used in command output.
package theme

import (
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// Markers maps a status or payload kind to the glyph printed for it.
type Markers map[string]string

func (m Markers) clone() Markers {
	if m == nil {
		return nil
	}
	out := make(Markers, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Colors is the palette of command output.
type Colors struct {
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Text    lipgloss.Color
}

// Status selects a badge style.
type Status int

const (
	StatusInfo Status = iota
	StatusSuccess
	StatusError
	StatusSkipped
)

// Theme combines a palette with status markers. Plain themes render
// everything without escape sequences.
type Theme struct {
	colors   Colors
	markers  Markers
	fallback Markers
	plain    bool
}

// Option configures a Theme.
type Option func(*Theme)

// WithColors overrides the palette.
func WithColors(colors Colors) Option {
	return func(t *Theme) {
		t.colors = colors
	}
}

// WithMarkers overrides the markers.
func WithMarkers(markers Markers) Option {
	return func(t *Theme) {
		t.markers = markers.clone()
	}
}

// Plain disables colors, for output that is not a terminal.
func Plain() Option {
	return func(t *Theme) {
		t.plain = true
	}
}

// New constructs a Theme with the options applied over the defaults.
func New(opts ...Option) Theme {
	t := Theme{
		colors: Colors{
			Accent:  lipgloss.Color("#8fc279"),
			Muted:   lipgloss.Color("#9ba8c0"),
			Success: lipgloss.Color("#5dc796"),
			Error:   lipgloss.Color("#f04c56"),
			Text:    lipgloss.Color("#f8f8f8"),
		},
		markers:  defaultMarkers(),
		fallback: asciiMarkers.clone(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.plain {
		t.markers = asciiMarkers.clone()
	}
	return t
}

// Colors exposes the palette.
func (t Theme) Colors() Colors {
	return t.colors
}

// IsPlain reports whether the theme renders without colors.
func (t Theme) IsPlain() bool {
	return t.plain
}

// Marker returns the glyph for name, falling back to ASCII.
func (t Theme) Marker(name string) string {
	if m, ok := t.markers[name]; ok {
		return m
	}
	if m, ok := t.fallback[name]; ok {
		return m
	}
	return ""
}

// Badge renders label in the style of status.
func (t Theme) Badge(status Status, label string) string {
	if t.plain {
		return label
	}
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(t.colors.Text)
	switch status {
	case StatusSuccess:
		base = base.Background(t.colors.Success)
	case StatusError:
		base = base.Background(t.colors.Error)
	case StatusSkipped:
		base = base.Background(t.colors.Muted)
	default:
		base = base.Background(t.colors.Accent)
	}
	return base.Render(label)
}

// Faint renders secondary text such as error details.
func (t Theme) Faint(s string) string {
	if t.plain {
		return s
	}
	return lipgloss.NewStyle().Foreground(t.colors.Muted).Render(s)
}

func defaultMarkers() Markers {
	if isLimitedTerminal() {
		return asciiMarkers.clone()
	}
	return emojiMarkers.clone()
}

// isLimitedTerminal detects environments where ASCII markers are preferable.
func isLimitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiMarkers = Markers{
	"movie":   "🎬",
	"episode": "📺",
	"success": "✅",
	"error":   "❌",
	"skipped": "➖",
}

var asciiMarkers = Markers{
	"movie":   "[M]",
	"episode": "[E]",
	"success": "[v]",
	"error":   "[!]",
	"skipped": "[-]",
}
