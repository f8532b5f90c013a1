// ABOUTME: Tests for key spec parsing and canonical key names.
// ABOUTME: Covers modifiers, aliases, rune specs, round trips, and unknown names.

package key

import (
	"errors"
	"testing"
)

func TestParseSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec string
		want Key
	}{
		{spec: "up", want: Key{Type: KeyUp}},
		{spec: "Escape", want: Key{Type: KeyEscape}},
		{spec: "esc", want: Key{Type: KeyEscape}},
		{spec: "ctrl+c", want: Key{Type: KeyRune, Rune: 'c', Ctrl: true}},
		{spec: "alt+shift+f5", want: Key{Type: KeyF5, Alt: true, Shift: true}},
		{spec: "ctrl+alt+delete", want: Key{Type: KeyDelete, Ctrl: true, Alt: true}},
		{spec: "shift+tab", want: Key{Type: KeyBackTab, Shift: true}},
		{spec: "backtab", want: Key{Type: KeyBackTab, Shift: true}},
		{spec: "space", want: Key{Type: KeyRune, Rune: ' '}},
		{spec: "ctrl+space", want: Key{Type: KeyRune, Rune: ' ', Ctrl: true}},
		{spec: "+", want: Key{Type: KeyRune, Rune: '+'}},
		{spec: "alt+é", want: Key{Type: KeyRune, Rune: 'é', Alt: true}},
		{spec: "pageup", want: Key{Type: KeyPageUp}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSpec(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpec(%q) unexpected error: %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("ParseSpec(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseSpec_Unknown(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"", "ctrl+", "hyper+x", "f13", "ab"} {
		if _, err := ParseSpec(spec); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("ParseSpec(%q) error = %v, want ErrUnknownKey", spec, err)
		}
	}
}

func TestSpec_RoundTrip(t *testing.T) {
	t.Parallel()

	keys := []Key{
		{Type: KeyUp},
		{Type: KeyRune, Rune: 'q', Ctrl: true},
		{Type: KeyF12, Shift: true, Alt: true},
		{Type: KeyRune, Rune: ' ', Alt: true},
		{Type: KeyBackTab, Shift: true},
		{Type: KeyPageDown, Ctrl: true},
	}
	for _, k := range keys {
		got, err := ParseSpec(k.Spec())
		if err != nil {
			t.Fatalf("ParseSpec(%q) unexpected error: %v", k.Spec(), err)
		}
		if got != k {
			t.Errorf("round trip of %+v via %q = %+v", k, k.Spec(), got)
		}
	}
}

func TestKeyByName(t *testing.T) {
	t.Parallel()

	if kt, ok := KeyByName("PGDOWN"); !ok || kt != KeyPageDown {
		t.Errorf("KeyByName(PGDOWN) = %v, %v", kt, ok)
	}
	if _, ok := KeyByName("nope"); ok {
		t.Error("KeyByName(nope) should fail")
	}
	if KeyName(KeyRune) != "" {
		t.Error("KeyName(KeyRune) should be empty")
	}
}
