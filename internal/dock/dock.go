// Package dock implements the XEMBED docking protocol and redock state
// machine: finding the system tray selection owner, asking it to embed a
// tray-icon window, and recreating every window when the tray owner
// changes.
package dock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/godbus/dbus/v5"

	"github.com/dtray/dtray/internal/catalogue"
	"github.com/dtray/dtray/internal/pixmap"
	"github.com/dtray/dtray/internal/xres"
)

const opcodeRequestDock = 0 // SYSTEM_TRAY_REQUEST_DOCK

// RedockDelay is the pause between observing a new tray owner and
// recreating every icon window, giving the new tray time to initialise its
// selection machinery. It is a package variable rather than a constant so
// config.RedockDelay can override it.
var RedockDelay = 100 * time.Millisecond

// Atoms caches the two atoms the docker reads and writes.
type Atoms struct {
	Selection xproto.Atom // _NET_SYSTEM_TRAY_S<screen>
	Opcode    xproto.Atom // _NET_SYSTEM_TRAY_OPCODE
}

// Intern resolves the tray selection atom for the given screen number and
// the opcode atom.
func Intern(d *xres.Display, screen int) (Atoms, error) {
	sel, err := xres.InternAtom(d, fmt.Sprintf("_NET_SYSTEM_TRAY_S%d", screen))
	if err != nil {
		return Atoms{}, err
	}
	op, err := xres.InternAtom(d, "_NET_SYSTEM_TRAY_OPCODE")
	if err != nil {
		return Atoms{}, err
	}
	return Atoms{Selection: sel, Opcode: op}, nil
}

// Binding tracks the tray-selection owner across ticks.
type Binding struct {
	Previous xproto.Window
	Current  xproto.Window
}

// State classifies a Binding.
type State int

const (
	Docked State = iota
	Undocked
	Switching
)

func (b Binding) State() State {
	switch {
	case b.Current == 0:
		return Undocked
	case b.Current != b.Previous:
		return Switching
	default:
		return Docked
	}
}

// Poll re-reads the selection owner into b.Current, leaving b.Previous
// untouched until Tick settles the binding.
func (b *Binding) Poll(d *xres.Display, atoms Atoms) error {
	owner, err := xres.SelectionOwner(d, atoms.Selection)
	if err != nil {
		return fmt.Errorf("dock: poll tray owner: %w", err)
	}
	b.Current = owner
	return nil
}

func (b *Binding) settle() { b.Previous = b.Current }

// SendRequest sends the dock ClientMessage to tray for icon win: format 32,
// payload [server-time, REQUEST_DOCK, window, 0, 0]. The timestamp field is
// CurrentTime (0) rather than a fetched server timestamp.
func SendRequest(d *xres.Display, atoms Atoms, tray, win xproto.Window) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: tray,
		Type:   atoms.Opcode,
		Data: xproto.ClientMessageDataUnionData32New([5]uint32{
			uint32(xproto.TimeCurrentTime),
			opcodeRequestDock,
			uint32(win),
			0,
			0,
		}),
	}
	if err := xproto.SendEventChecked(d.Conn, false, tray, 0, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("dock: send dock request: %w", err)
	}
	return nil
}

// CreateAndDock creates a tray-icon window, requests docking against tray
// (if non-zero), and maps it. Send-before-map ordering matters: some tray
// implementations reparent synchronously on receipt of the message.
func CreateAndDock(d *xres.Display, atoms Atoms, tray xproto.Window, cfg xres.WindowConfig) (xproto.Window, xproto.Gcontext, error) {
	win, gc, err := xres.CreateIconWindow(d, cfg)
	if err != nil {
		return 0, 0, err
	}
	if tray != 0 {
		if err := SendRequest(d, atoms, tray, win); err != nil {
			slog.Debug("dock request failed", "error", err)
		}
	}
	if err := xres.MapWindow(d, win); err != nil {
		slog.Debug("map icon window failed", "error", err)
	}
	return win, gc, nil
}

// Tick evaluates the redock state machine once. It may mutate every Icon in
// cat (new window/GC/pixmap) when the tray owner has switched, or unmap
// every icon window when the tray has vanished.
func Tick(ctx context.Context, d *xres.Display, conn *dbus.Conn, cat *catalogue.Catalogue, atoms Atoms, b *Binding, cfg xres.WindowConfig, targetSize int) {
	switch b.State() {
	case Docked:
		// no-op
	case Undocked:
		if b.Previous == 0 {
			return
		}
		for icon := range cat.All() {
			if icon.Window != 0 {
				xres.UnmapWindow(d, icon.Window)
			}
		}
		d.Sync()
		b.settle()
	case Switching:
		time.Sleep(RedockDelay)
		for icon := range cat.All() {
			xres.DestroyWindow(d, icon.Window, icon.GC)
			icon.Window, icon.GC = 0, 0

			win, gc, err := CreateAndDock(d, atoms, b.Current, cfg)
			if err != nil {
				slog.Error("redock: create icon window failed", "service", icon.Service, "error", err)
				continue
			}
			icon.Window, icon.GC = win, gc

			xres.FreePixmap(d, icon.Pixmap)
			icon.Pixmap, icon.Width, icon.Height = 0, 0, 0

			if err := pixmap.Ingest(ctx, conn, d, icon, targetSize); err != nil {
				slog.Debug("redock: pixmap ingest failed", "service", icon.Service, "error", err)
				continue
			}
			if err := repaint(d, icon, cfg.Size); err != nil {
				slog.Debug("redock: repaint failed", "service", icon.Service, "error", err)
			}
		}
		d.Sync()
		b.settle()
	}
}

// repaint clears and re-blits icon's pixmap centred in its window, the same
// sequence the input translator runs on Expose.
func repaint(d *xres.Display, icon *catalogue.Icon, side uint16) error {
	if icon.Pixmap == 0 {
		return nil
	}
	if err := xres.ClearWindow(d, icon.Window); err != nil {
		return err
	}
	x := clampedOffset(int(side), icon.Width)
	y := clampedOffset(int(side), icon.Height)
	return xres.CopyPixmapToWindow(d, icon.Pixmap, icon.Window, icon.GC, uint16(icon.Width), uint16(icon.Height), int16(x), int16(y))
}

func clampedOffset(side, size int) int {
	v := (side - size) / 2
	if v < 0 {
		return 0
	}
	return v
}
