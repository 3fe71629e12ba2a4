// Package input translates display-server events on tray-icon windows into
// repaints and SNI method calls.
package input

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/godbus/dbus/v5"

	"github.com/dtray/dtray/internal/catalogue"
	"github.com/dtray/dtray/internal/xres"
)

const itemInterface = "org.kde.StatusNotifierItem"

// HandleExpose repaints icon's window on an Expose event with count == 0:
// clear, then blit the pixmap centred at ((side-w)/2, (side-h)/2), clamped
// to zero. side is the configured icon square side length.
func HandleExpose(d *xres.Display, icon *catalogue.Icon, side int, count uint16) {
	if count != 0 || icon.Pixmap == 0 {
		return
	}
	if err := xres.ClearWindow(d, icon.Window); err != nil {
		slog.Debug("expose: clear window failed", "service", icon.Service, "error", err)
		return
	}
	x := clampedOffset(side, icon.Width)
	y := clampedOffset(side, icon.Height)
	if err := xres.CopyPixmapToWindow(d, icon.Pixmap, icon.Window, icon.GC, uint16(icon.Width), uint16(icon.Height), int16(x), int16(y)); err != nil {
		slog.Debug("expose: copy area failed", "service", icon.Service, "error", err)
	}
}

func clampedOffset(side, size int) int {
	v := (side - size) / 2
	if v < 0 {
		return 0
	}
	return v
}

// method maps an X11 button number to the SNI method it dispatches.
func method(button byte) string {
	switch button {
	case 1:
		return "Activate"
	case 2:
		return "SecondaryActivate"
	case 3:
		return "ContextMenu"
	default:
		return ""
	}
}

// HandleButtonPress translates a ButtonPress event's root coordinates into a
// fire-and-forget SNI method call on icon's service+path. Unknown buttons
// are dropped.
func HandleButtonPress(conn *dbus.Conn, icon *catalogue.Icon, rootX, rootY int16, button byte) {
	name := method(button)
	if name == "" {
		return
	}
	obj := conn.Object(icon.Service, dbus.ObjectPath(icon.Path))
	call := obj.Go(itemInterface+"."+name, dbus.FlagNoReplyExpected, nil, int32(rootX), int32(rootY))
	if call.Err != nil {
		slog.Debug("input: dispatch failed", "service", icon.Service, "method", name, "error", call.Err)
	}
}

// TranslateToRoot converts a pointer event's window-relative coordinates to
// root coordinates via TranslateCoordinates.
func TranslateToRoot(d *xres.Display, win xproto.Window, eventX, eventY int16) (int16, int16, error) {
	reply, err := xproto.TranslateCoordinates(d.Conn, win, d.Root, eventX, eventY).Reply()
	if err != nil {
		return 0, 0, err
	}
	return reply.DstX, reply.DstY, nil
}
