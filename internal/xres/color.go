package xres

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// ParseColor accepts a "#rrggbb" colour spec for allocation via AllocColor.
// It does not attempt to resolve X11 named colors; the config layer's
// Background default is always a hex triplet.
func ParseColor(spec string) (r, g, b uint16, err error) {
	if len(spec) != 7 || spec[0] != '#' {
		return 0, 0, 0, fmt.Errorf("xres: invalid color %q, want #rrggbb", spec)
	}
	var rr, gg, bb uint8
	if _, err := fmt.Sscanf(spec[1:], "%02x%02x%02x", &rr, &gg, &bb); err != nil {
		return 0, 0, 0, fmt.Errorf("xres: invalid color %q: %w", spec, err)
	}
	// X11 color components are scaled to 16 bits.
	return uint16(rr) * 0x101, uint16(gg) * 0x101, uint16(bb) * 0x101, nil
}

// AllocColor resolves spec against the default colormap and returns the
// allocated pixel value, suitable for WindowConfig.Background.
func AllocColor(d *Display, spec string) (uint32, error) {
	r, g, b, err := ParseColor(spec)
	if err != nil {
		return 0, err
	}
	reply, err := xproto.AllocColor(d.Conn, d.Screen.DefaultColormap, r, g, b).Reply()
	if err != nil {
		return 0, fmt.Errorf("xres: alloc color %q: %w", spec, err)
	}
	return reply.Pixel, nil
}
