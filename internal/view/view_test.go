package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/nexus/campusmap/internal/model"
)

func TestSelect(t *testing.T) {
	var transitions []Transition
	m := New(func(tr Transition) { transitions = append(transitions, tr) })

	if m.Mode() != ModeBuilding {
		t.Fatalf("initial mode = %v, want building", m.Mode())
	}

	if err := m.Select(ModeEvents); err != nil {
		t.Fatalf("Select(events): %v", err)
	}
	if m.Mode() != ModeEvents {
		t.Errorf("mode = %v, want events", m.Mode())
	}
	if len(transitions) != 1 || transitions[0].From != ModeBuilding || transitions[0].To != ModeEvents {
		t.Errorf("unexpected transitions: %+v", transitions)
	}

	// Selecting the active mode is a no-op and fires no transition.
	if err := m.Select(ModeEvents); err != nil {
		t.Fatalf("Select(same): %v", err)
	}
	if len(transitions) != 1 {
		t.Errorf("same-mode select fired a transition: %+v", transitions)
	}
}

func TestSelectUnknownMode(t *testing.T) {
	m := New(nil)
	err := m.Select(Mode(42))
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("Select(42) error = %v, want ErrUnknownMode", err)
	}
	if m.Mode() != ModeBuilding {
		t.Errorf("failed select changed mode to %v", m.Mode())
	}
}

func TestNavigate(t *testing.T) {
	var last Transition
	m := New(func(tr Transition) { last = tr })

	pos := model.Position{Lat: 36.632473, Lon: 127.453143}
	if err := m.Navigate("중앙도서관", pos); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if m.Mode() != ModeDirections {
		t.Errorf("mode = %v, want directions", m.Mode())
	}
	if last.DirectionsURL == "" {
		t.Fatal("transition carried no directions URL")
	}
	if !strings.HasPrefix(last.DirectionsURL, "https://map.kakao.com/link/to/") {
		t.Errorf("unexpected URL %q", last.DirectionsURL)
	}
	if !strings.HasSuffix(last.DirectionsURL, ",36.632473,127.453143") {
		t.Errorf("URL %q missing coordinate suffix", last.DirectionsURL)
	}
	if m.DirectionsURL() != last.DirectionsURL {
		t.Errorf("DirectionsURL() = %q, want %q", m.DirectionsURL(), last.DirectionsURL)
	}
}

func TestNavigateOnlyFromBuilding(t *testing.T) {
	m := New(nil)
	if err := m.Select(ModeEvents); err != nil {
		t.Fatal(err)
	}
	err := m.Navigate("Library", model.Position{Lat: 36.6, Lon: 127.4})
	if !errors.Is(err, ErrNavigateOutsideBuilding) {
		t.Fatalf("Navigate from events error = %v, want ErrNavigateOutsideBuilding", err)
	}
}

func TestNavigateInvalidPosition(t *testing.T) {
	m := New(nil)
	if err := m.Navigate("Library", model.Position{Lat: 200, Lon: 0}); err == nil {
		t.Fatal("Navigate with invalid position should fail")
	}
	if m.Mode() != ModeBuilding {
		t.Errorf("failed navigate changed mode to %v", m.Mode())
	}
}

func TestDirectionsURLEscaping(t *testing.T) {
	got := DirectionsURL("본관/강당", model.Position{Lat: 36.6, Lon: 127.4})
	if strings.Contains(got[len("https://"):], "/link/to/본관/") {
		t.Errorf("title slash not escaped: %q", got)
	}
	if !strings.Contains(got, "%2F") {
		t.Errorf("expected escaped slash in %q", got)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeBuilding, "building"},
		{ModeDirections, "directions"},
		{ModeEvents, "events"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.mode), got, tt.want)
		}
	}
}
