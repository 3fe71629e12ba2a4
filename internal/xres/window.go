package xres

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
)

// WindowConfig describes a tray-icon window.
type WindowConfig struct {
	Size       uint16
	Background uint32 // an allocated colormap pixel, see AllocColor
}

// CreateIconWindow creates an unmapped, override-redirect-false, input/output
// window sized Size x Size, selecting for the button and expose events the
// input translator reacts to, plus its dedicated GC.
func CreateIconWindow(d *Display, cfg WindowConfig) (xproto.Window, xproto.Gcontext, error) {
	wid, err := d.Conn.NewId()
	if err != nil {
		return 0, 0, fmt.Errorf("xres: allocate window id: %w", err)
	}
	win := xproto.Window(wid)

	valueMask := uint32(xproto.CwBackPixel | xproto.CwColormap | xproto.CwEventMask)
	valueList := []uint32{ // in CW bit order: BackPixel, EventMask, Colormap
		cfg.Background,
		uint32(xproto.EventMaskButtonPress | xproto.EventMaskExposure),
		uint32(d.Screen.DefaultColormap),
	}

	err = xproto.CreateWindowChecked(
		d.Conn,
		d.Screen.RootDepth,
		win,
		d.Root,
		0, 0,
		cfg.Size, cfg.Size,
		0,
		xproto.WindowClassInputOutput,
		d.Screen.RootVisual,
		valueMask,
		valueList,
	).Check()
	if err != nil {
		return 0, 0, fmt.Errorf("xres: create window: %w", err)
	}

	gid, err := d.Conn.NewId()
	if err != nil {
		DestroyWindow(d, win, 0)
		return 0, 0, fmt.Errorf("xres: allocate gc id: %w", err)
	}
	gc := xproto.Gcontext(gid)
	err = xproto.CreateGCChecked(d.Conn, gc, xproto.Drawable(win), xproto.GcGraphicsExposures, []uint32{0}).Check()
	if err != nil {
		DestroyWindow(d, win, 0)
		return 0, 0, fmt.Errorf("xres: create gc: %w", err)
	}
	return win, gc, nil
}

// DestroyWindow releases a window and its GC. Safe to call with a zero win or
// gc (a no-op for that handle). Errors are logged, not returned: by the time
// callers tear down resources the underlying connection may already be
// going away, and there is nothing useful to do with a failed cleanup.
func DestroyWindow(d *Display, win xproto.Window, gc xproto.Gcontext) {
	if gc != 0 {
		if err := xproto.FreeGCChecked(d.Conn, gc).Check(); err != nil {
			slog.Debug("free gc", "error", err)
		}
	}
	if win != 0 {
		if err := xproto.DestroyWindowChecked(d.Conn, win).Check(); err != nil {
			slog.Debug("destroy window", "error", err)
		}
	}
}

// MapWindow maps a window, making it visible once the window manager (or, for
// a docked tray icon, the embedder) processes the MapNotify.
func MapWindow(d *Display, win xproto.Window) error {
	if err := xproto.MapWindowChecked(d.Conn, win).Check(); err != nil {
		return fmt.Errorf("xres: map window: %w", err)
	}
	return nil
}

// UnmapWindow hides a window. Errors are logged only, matching DestroyWindow.
func UnmapWindow(d *Display, win xproto.Window) {
	if err := xproto.UnmapWindowChecked(d.Conn, win).Check(); err != nil {
		slog.Debug("unmap window", "error", err)
	}
}
