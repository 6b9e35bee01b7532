package gesture

import (
	"image/color"
	"testing"
)

func TestPalette(t *testing.T) {
	p := NewPalette()

	if p.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", p.Len())
	}
	if p.Current().Name != "red" {
		t.Errorf("default color = %s, want red", p.Current().Name)
	}

	want := []string{"green", "blue", "yellow", "magenta", "cyan", "red", "green"}
	for i, name := range want {
		if got := p.Advance(); got.Name != name {
			t.Errorf("Advance() #%d = %s, want %s", i+1, got.Name, name)
		}
	}
}

func TestPalette_Select(t *testing.T) {
	p := NewPalette()

	if !p.Select("blue") {
		t.Fatal("Select(blue) = false")
	}
	if p.Current().Name != "blue" || p.Index() != 2 {
		t.Errorf("after Select(blue) current = %s index = %d", p.Current().Name, p.Index())
	}
	if got := p.Advance(); got.Name != "yellow" {
		t.Errorf("Advance() after Select(blue) = %s, want yellow", got.Name)
	}

	if p.Select("mauve") {
		t.Error("Select(mauve) = true, want false")
	}
	if p.Current().Name != "yellow" {
		t.Errorf("unknown Select moved the palette to %s", p.Current().Name)
	}
}

func TestNamedColor_Hex(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"red", "#ff0000"},
		{"cyan", "#00ffff"},
		{"yellow", "#ffff00"},
	}

	for _, tt := range tests {
		c, ok := Lookup(tt.name)
		if !ok {
			t.Fatalf("Lookup(%q) failed", tt.name)
		}
		if got := c.Hex(); got != tt.want {
			t.Errorf("%s.Hex() = %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, ok := Lookup("purple"); ok {
		t.Error("Lookup(purple) should fail")
	}
}

func TestNameOf(t *testing.T) {
	for _, c := range DefaultColors {
		if got := NameOf(c.RGBA); got != c.Name {
			t.Errorf("NameOf(%v) = %q, want %q", c.RGBA, got, c.Name)
		}
	}
	if got := NameOf(color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}); got != "#123456" {
		t.Errorf("NameOf(custom) = %q, want #123456", got)
	}
}
