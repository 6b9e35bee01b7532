package tray

import (
	"testing"
)

func TestToggle(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("New() tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("IsEnabled() = false after two toggles")
	}
}

func TestCallbacks(t *testing.T) {
	tr := New()

	opened, cleared := 0, 0
	tr.OnOpen(func() { opened++ })
	tr.OnClear(func() { cleared++ })

	tr.call(func(t *Tray) func() { return t.onOpen })
	tr.call(func(t *Tray) func() { return t.onClear })
	tr.call(func(t *Tray) func() { return t.onClear })
	tr.call(func(t *Tray) func() { return t.onQuit }) // unset

	if opened != 1 || cleared != 2 {
		t.Errorf("opened = %d, cleared = %d; want 1, 2", opened, cleared)
	}
}

func TestTitles(t *testing.T) {
	if toggleTitle(true) != "● Enabled" || toggleTitle(false) != "○ Disabled" {
		t.Error("unexpected toggle titles")
	}

	tests := map[int]string{0: "0 sessions", 1: "1 session", 3: "3 sessions"}
	for n, want := range tests {
		if got := sessionsTitle(n); got != want {
			t.Errorf("sessionsTitle(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		name, args := BrowserCommand(tt.goos, "http://localhost:8080")
		if name != tt.name {
			t.Errorf("BrowserCommand(%s) = %s, want %s", tt.goos, name, tt.name)
		}
		if args[len(args)-1] != "http://localhost:8080" {
			t.Errorf("BrowserCommand(%s) args = %v", tt.goos, args)
		}
	}
}
