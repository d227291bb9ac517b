package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
)

func TestMarkersCloneCreatesIndependentCopy(t *testing.T) {
	source := Markers{"movie": "🎬"}
	clone := source.clone()

	source["movie"] = "mutated"

	if got, want := clone["movie"], "🎬"; got != want {
		t.Errorf("Markers.clone()[%q] = %q, want %q", "movie", got, want)
	}
}

func TestWithMarkersCopiesInput(t *testing.T) {
	markers := Markers{"movie": "M"}
	th := New(WithMarkers(markers))

	markers["movie"] = "mutated"

	if got := th.Marker("movie"); got != "M" {
		t.Errorf("Marker(movie) = %q, want M", got)
	}
}

func TestMarkerLookupOrder(t *testing.T) {
	th := Theme{
		markers:  Markers{"primary": "p"},
		fallback: Markers{"fallback": "f"},
	}

	tests := []struct {
		key  string
		want string
	}{
		{"primary", "p"},
		{"fallback", "f"},
		{"missing", ""},
	}
	for _, tc := range tests {
		if got := th.Marker(tc.key); got != tc.want {
			t.Errorf("Marker(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestPlainThemeUsesASCII(t *testing.T) {
	th := New(Plain())

	if !th.IsPlain() {
		t.Fatal("IsPlain() = false")
	}
	for _, name := range []string{"movie", "episode", "success", "error", "skipped"} {
		if got, want := th.Marker(name), asciiMarkers[name]; got != want {
			t.Errorf("Marker(%q) = %q, want %q", name, got, want)
		}
	}
	if got := th.Badge(StatusError, "FAIL"); got != "FAIL" {
		t.Errorf("Badge() = %q, want plain label", got)
	}
	if got := th.Faint("detail"); got != "detail" {
		t.Errorf("Faint() = %q, want plain text", got)
	}
}

func TestBadgeKeepsLabel(t *testing.T) {
	th := New()
	for _, status := range []Status{StatusInfo, StatusSuccess, StatusError, StatusSkipped} {
		if got := th.Badge(status, "OK"); !strings.Contains(got, "OK") {
			t.Errorf("Badge(%d) = %q, missing label", status, got)
		}
	}
}

func TestWithColors(t *testing.T) {
	custom := Colors{
		Accent:  lipgloss.Color("#111111"),
		Muted:   lipgloss.Color("#222222"),
		Success: lipgloss.Color("#333333"),
		Error:   lipgloss.Color("#444444"),
		Text:    lipgloss.Color("#555555"),
	}
	th := New(WithColors(custom))
	if diff := cmp.Diff(custom, th.Colors()); diff != "" {
		t.Errorf("Colors() mismatch (-want +got)\n%s", diff)
	}
}
