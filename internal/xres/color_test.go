package xres

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		spec          string
		r, g, b       uint16
		wantErr       bool
	}{
		{"#1a1a1a", 0x1a1a, 0x1a1a, 0x1a1a, false},
		{"#000000", 0, 0, 0, false},
		{"#ffffff", 0xffff, 0xffff, 0xffff, false},
		{"#ff0000", 0xffff, 0, 0, false},
		{"1a1a1a", 0, 0, 0, true},
		{"#gggggg", 0, 0, 0, true},
		{"#12345", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			r, g, b, err := ParseColor(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("ParseColor(%q) = %04x,%04x,%04x, want %04x,%04x,%04x", tt.spec, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}
