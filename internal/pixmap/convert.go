// Package pixmap implements icon pixmap ingest: fetching the IconPixmap
// property over the bus, selecting the best-fit tuple, and converting it
// from SNI's straight-alpha ARGB into the BGRX the X server's PutImage
// expects.
//
// Select and Convert are pure functions with no I/O, kept separate from
// Fetch so the resampling and channel-reordering math can be tested without
// a bus connection or display.
package pixmap

// Tuple is one (width, height, ARGB-bytes) entry from an IconPixmap property
// value, in network byte order, one byte per channel, straight alpha.
type Tuple struct {
	Width  int
	Height int
	Data   []byte
}

func (t Tuple) valid() bool {
	return t.Width > 0 && t.Height > 0 && len(t.Data) == t.Width*t.Height*4
}

// Select chooses the tuple minimizing abs(width - targetSize), breaking ties
// in favor of the larger width. Tuples that fail the basic shape check
// (non-positive dimensions, or a byte length that doesn't match width*height*4)
// are skipped. ok is false if no tuple qualifies.
func Select(tuples []Tuple, targetSize int) (best Tuple, ok bool) {
	bestDiff := -1
	for _, t := range tuples {
		if !t.valid() {
			continue
		}
		diff := t.Width - targetSize
		if diff < 0 {
			diff = -diff
		}
		switch {
		case bestDiff < 0 || diff < bestDiff:
			best, bestDiff, ok = t, diff, true
		case diff == bestDiff && t.Width > best.Width:
			best = t
		}
	}
	return best, ok
}

// Convert resamples src (sw x sh, ARGB straight alpha) down to dw x dh
// (clamped by the caller to the configured icon size) using nearest-neighbour
// sampling, and reorders each sampled pixel into BGRX: fully transparent
// source pixels become four zero bytes, everything else becomes (B, G, R, 0)
// with alpha dropped. The result is dw*dh*4 bytes, ready for PutImage at the
// screen's default depth.
func Convert(src []byte, sw, sh, dw, dh int) []byte {
	out := make([]byte, dw*dh*4)
	for dy := 0; dy < dh; dy++ {
		sy := dy * sh / dh
		for dx := 0; dx < dw; dx++ {
			sx := dx * sw / dw
			si := (sy*sw + sx) * 4
			a, r, g, b := src[si], src[si+1], src[si+2], src[si+3]

			di := (dy*dw + dx) * 4
			if a == 0 {
				continue // already zero
			}
			out[di+0] = b
			out[di+1] = g
			out[di+2] = r
			out[di+3] = 0
		}
	}
	return out
}
