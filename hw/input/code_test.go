package input

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veandco/go-sdl2/sdl"
)

func TestInputCodeMarshalRoundTrip(t *testing.T) {
	tests := []struct {
		text string
		code *Code // nil for unmarshal errors
	}{
		{"", &Code{Type: Unset}},
		{"key W", &Code{Type: KeyCode, Scancode: sdl.SCANCODE_W}},
		{"key Up", &Code{Type: KeyCode, Scancode: sdl.SCANCODE_UP}},
		{"key Return", &Code{Type: KeyCode, Scancode: sdl.SCANCODE_RETURN}},
		{"key Left Shift", &Code{Type: KeyCode, Scancode: sdl.SCANCODE_LSHIFT}},
		{"mouse left", &Code{Type: MouseCode, Button: sdl.BUTTON_LEFT}},
		{"mouse right", &Code{Type: MouseCode, Button: sdl.BUTTON_RIGHT}},
		{"mouse x2", &Code{Type: MouseCode, Button: sdl.BUTTON_X2}},

		// unmarshal errors
		{"key   ", nil},
		{"key NotAKey", nil},
		{"mouse wheel", nil},
		{"mouse", nil},
		{"joybtn a 030000004c050000cc0900", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var code Code
			if err := code.UnmarshalText([]byte(tt.text)); err != nil {
				if tt.code != nil {
					t.Fatalf("UnmarshalText(%q) error: %v", tt.text, err)
				}
				t.Log("UnmarshalText error:", err)
				return
			}
			if tt.code == nil {
				t.Fatalf("UnmarshalText(%q) should have failed, got %+v", tt.text, code)
			}

			if diff := cmp.Diff(*tt.code, code); diff != "" {
				t.Fatalf("UnmarshalText(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}

			text, err := code.MarshalText()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.text, string(text)); diff != "" {
				t.Fatalf("MarshalText(%+v) mismatch (-want +got):\n%s", code, diff)
			}
		})
	}
}
