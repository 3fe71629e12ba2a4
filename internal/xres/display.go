// Package xres wraps the pure-Go X11 client connection and the handful of
// protocol requests the bridge needs: window, graphics context, and pixmap
// lifecycle.
//
// Everything in this package is a thin, synchronous wrapper around
// github.com/BurntSushi/xgb/xproto. It does not know about StatusNotifierItem,
// the catalogue, or docking; it only knows how to talk to the X server.
package xres

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Display is a single X11 connection plus the background goroutine that
// drains its event stream. xgb has no global error-handler hooks, so
// Display classifies errors returned from WaitForEvent itself: a protocol
// error (xgb.Error) is logged and skipped, anything else is treated as a
// fatal connection loss.
type Display struct {
	Conn   *xgb.Conn
	Screen *xproto.ScreenInfo
	Root   xproto.Window

	// XUtil wraps Conn for xgbutil/xprop's atom cache, used by the docker to
	// resolve the tray-selection and opcode atoms without re-interning them
	// on every poll.
	XUtil *xgbutil.XUtil

	events chan xgb.Event
	fatal  chan error
	closed atomic.Bool
}

// Open connects to the named X display ("" selects $DISPLAY) and starts the
// event pump. Callers must call Close when done.
func Open(name string) (*Display, error) {
	conn, err := newConn(name)
	if err != nil {
		return nil, fmt.Errorf("xres: open display: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	xu, err := xgbutil.NewConnXgb(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("xres: wrap connection for atom cache: %w", err)
	}

	d := &Display{
		Conn:   conn,
		Screen: screen,
		Root:   screen.Root,
		XUtil:  xu,
		events: make(chan xgb.Event, 32),
		fatal:  make(chan error, 1),
	}
	go d.pump()
	return d, nil
}

func newConn(name string) (*xgb.Conn, error) {
	if name == "" {
		return xgb.NewConn()
	}
	return xgb.NewConnDisplay(name)
}

func (d *Display) pump() {
	for {
		ev, err := d.Conn.WaitForEvent()
		if d.closed.Load() {
			return
		}
		if err != nil {
			if _, ok := err.(xgb.Error); ok {
				slog.Debug("discarding non-fatal X protocol error", "error", err)
				continue
			}
			slog.Error("fatal X connection error", "error", err)
			select {
			case d.fatal <- err:
			default:
			}
			return
		}
		if ev == nil {
			continue
		}
		d.events <- ev
	}
}

// Events yields X11 events as they arrive. The channel is never closed; a
// lost connection is reported on Fatal instead.
func (d *Display) Events() <-chan xgb.Event { return d.events }

// Fatal receives exactly one value if the connection is lost unrecoverably.
func (d *Display) Fatal() <-chan error { return d.fatal }

// Sync performs a round trip, flushing queued requests and surfacing any
// protocol errors generated by them before returning.
func (d *Display) Sync() {
	if _, err := xproto.GetInputFocus(d.Conn).Reply(); err != nil {
		slog.Debug("sync", "error", err)
	}
}

// Close tears down the connection. The pump goroutine observes closed and
// exits on its next wakeup rather than reporting a fatal error.
func (d *Display) Close() {
	d.closed.Store(true)
	d.Conn.Close()
}
