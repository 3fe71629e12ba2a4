package dock

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func windowOf(v uint32) xproto.Window { return xproto.Window(v) }

func TestBindingState(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr uint32
		want       State
	}{
		{"docked", 5, 5, Docked},
		{"undocked", 5, 0, Undocked},
		{"never docked", 0, 0, Undocked},
		{"switching", 5, 7, Switching},
		{"first dock", 0, 7, Switching},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Binding{Previous: windowOf(tt.prev), Current: windowOf(tt.curr)}
			if got := b.State(); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampedOffset(t *testing.T) {
	tests := []struct{ side, size, want int }{
		{24, 16, 4},
		{24, 24, 0},
		{24, 32, 0}, // oversized pixmap clamps to zero, never negative
	}
	for _, tt := range tests {
		if got := clampedOffset(tt.side, tt.size); got != tt.want {
			t.Errorf("clampedOffset(%d, %d) = %d, want %d", tt.side, tt.size, got, tt.want)
		}
	}
}
