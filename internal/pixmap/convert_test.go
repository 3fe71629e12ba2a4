package pixmap

import (
	"bytes"
	"testing"
)

func solid(w, h int, a, r, g, b byte) []byte {
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		out[i*4+0] = a
		out[i*4+1] = r
		out[i*4+2] = g
		out[i*4+3] = b
	}
	return out
}

func TestSelectPrefersClosestSize(t *testing.T) {
	tuples := []Tuple{
		{16, 16, solid(16, 16, 255, 1, 1, 1)},
		{32, 32, solid(32, 32, 255, 1, 1, 1)},
		{48, 48, solid(48, 48, 255, 1, 1, 1)},
	}
	got, ok := Select(tuples, 22)
	if !ok || got.Width != 16 {
		t.Fatalf("Select = %+v, %v; want width 16", got, ok)
	}
}

func TestSelectTieBreaksOnLargerWidth(t *testing.T) {
	tuples := []Tuple{
		{18, 18, solid(18, 18, 255, 1, 1, 1)},
		{26, 26, solid(26, 26, 255, 1, 1, 1)},
	}
	// |18-22|=4, |26-22|=4: tie, prefer larger width.
	got, ok := Select(tuples, 22)
	if !ok || got.Width != 26 {
		t.Fatalf("Select = %+v, %v; want width 26", got, ok)
	}
}

func TestSelectSkipsMalformedTuples(t *testing.T) {
	tuples := []Tuple{
		{16, 16, []byte{1, 2, 3}}, // wrong length
		{0, 0, nil},               // zero dims
		{20, 20, solid(20, 20, 255, 1, 1, 1)},
	}
	got, ok := Select(tuples, 22)
	if !ok || got.Width != 20 {
		t.Fatalf("Select = %+v, %v; want width 20", got, ok)
	}
}

func TestSelectNoneQualify(t *testing.T) {
	tuples := []Tuple{{16, 16, []byte{1}}}
	if _, ok := Select(tuples, 22); ok {
		t.Error("Select should fail when no tuple qualifies")
	}
}

func TestConvertTransparentPixelIsZero(t *testing.T) {
	src := solid(2, 2, 0, 200, 150, 100) // alpha 0
	out := Convert(src, 2, 2, 2, 2)
	if !bytes.Equal(out, make([]byte, 2*2*4)) {
		t.Errorf("Convert of fully transparent source = %v, want all zero", out)
	}
}

func TestConvertReordersChannels(t *testing.T) {
	src := solid(1, 1, 255, 0x11, 0x22, 0x33) // A=ff R=11 G=22 B=33
	out := Convert(src, 1, 1, 1, 1)
	want := []byte{0x33, 0x22, 0x11, 0x00} // B, G, R, 0
	if !bytes.Equal(out, want) {
		t.Errorf("Convert = %x, want %x", out, want)
	}
}

func TestConvertIsPureAndDeterministic(t *testing.T) {
	src := make([]byte, 4*4*4)
	for i := range src {
		src[i] = byte(i * 7)
	}
	out1 := Convert(src, 4, 4, 3, 2)
	out2 := Convert(src, 4, 4, 3, 2)
	if !bytes.Equal(out1, out2) {
		t.Error("Convert is not deterministic for identical inputs")
	}
	if len(out1) != 3*2*4 {
		t.Errorf("len(out) = %d, want %d", len(out1), 3*2*4)
	}
}

func TestConvertClampsWithinTargetSize(t *testing.T) {
	src := solid(48, 48, 255, 1, 2, 3)
	out := Convert(src, 48, 48, 22, 22)
	if len(out) != 22*22*4 {
		t.Errorf("len(out) = %d, want %d (width/height must be <= configured size)", len(out), 22*22*4)
	}
}
