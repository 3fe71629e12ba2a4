// Package bridge wires the catalogue, display connection, bus connection,
// watcher, and docker together and drives the single cooperative event loop.
//
// godbus dispatches exported methods and delivered signals on goroutines it
// manages internally, not on the goroutine that calls Run. Run is the one
// goroutine that is ever allowed to touch the catalogue or the display
// connection directly; everything else reaches it through Exec, which
// marshals a closure onto that single owning loop instead of taking a lock.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/godbus/dbus/v5"

	"github.com/dtray/dtray/internal/catalogue"
	"github.com/dtray/dtray/internal/config"
	"github.com/dtray/dtray/internal/dock"
	"github.com/dtray/dtray/internal/input"
	"github.com/dtray/dtray/internal/pixmap"
	"github.com/dtray/dtray/internal/reactor"
	"github.com/dtray/dtray/internal/watcher"
	"github.com/dtray/dtray/internal/xres"
)

const pollInterval = time.Second

type job struct {
	fn   func()
	done chan struct{}
}

// Bridge owns every shared resource: the display connection, the bus
// connection, the icon catalogue, and the tray-selection binding.
type Bridge struct {
	cfg config.Config

	display *xres.Display
	conn    *dbus.Conn
	cat     *catalogue.Catalogue
	watcher *watcher.Watcher
	atoms   dock.Atoms
	binding dock.Binding
	winCfg  xres.WindowConfig

	// ctx is the context passed to Run, used by callbacks (such as
	// dockNewIcon) that can fire from a bus dispatch before Run's select
	// loop itself reaches the code driving them. context.Background() until
	// Run starts.
	ctx context.Context

	cmdCh chan job
	sigCh chan *dbus.Signal
}

// New opens the display and bus connections, allocates the catalogue,
// resolves the tray atoms, and claims the watcher bus names. Any failure
// here aborts startup before Run is ever called.
func New(cfg config.Config) (*Bridge, error) {
	display, err := xres.Open(cfg.Display)
	if err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		display.Close()
		return nil, fmt.Errorf("bridge: connect session bus: %w", err)
	}

	bg, err := xres.AllocColor(display, cfg.Background)
	if err != nil {
		conn.Close()
		display.Close()
		return nil, fmt.Errorf("bridge: %w", err)
	}

	atoms, err := dock.Intern(display, defaultScreenNumber(display))
	if err != nil {
		conn.Close()
		display.Close()
		return nil, fmt.Errorf("bridge: %w", err)
	}

	b := &Bridge{
		cfg:     cfg,
		display: display,
		conn:    conn,
		cat:     catalogue.New(),
		atoms:   atoms,
		winCfg:  xres.WindowConfig{Size: uint16(cfg.IconSize), Background: bg},
		ctx:     context.Background(),
		cmdCh:   make(chan job),
		sigCh:   make(chan *dbus.Signal, 16),
	}
	dock.RedockDelay = cfg.RedockDelay

	w, err := watcher.New(conn, b.cat, b.Exec, b.dockNewIcon)
	if err != nil {
		conn.Close()
		display.Close()
		return nil, fmt.Errorf("bridge: %w", err)
	}
	b.watcher = w

	if err := reactor.AddMatches(conn); err != nil {
		conn.Close()
		display.Close()
		return nil, fmt.Errorf("bridge: subscribe signals: %w", err)
	}
	conn.Signal(b.sigCh)

	return b, nil
}

// Exec marshals fn onto Run's goroutine and blocks until it has executed.
// Called from watcher code running on godbus's dispatch goroutines.
func (b *Bridge) Exec(fn func()) {
	j := job{fn: fn, done: make(chan struct{})}
	b.cmdCh <- j
	<-j.done
}

// Run drives the event loop until ctx is cancelled or the display connection
// fails fatally. It is the single goroutine permitted to touch b.cat and
// b.display directly.
func (b *Bridge) Run(ctx context.Context) error {
	b.ctx = ctx
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-b.display.Fatal():
			return fmt.Errorf("bridge: fatal display error: %w", err)

		case j := <-b.cmdCh:
			j.fn()
			close(j.done)

		case sig := <-b.sigCh:
			b.handleSignal(ctx, sig)

		case ev := <-b.display.Events():
			b.handleEvent(ev)

		case <-ticker.C:
			b.tick(ctx)
		}
	}
}

// tick polls the tray binding and advances the redock state machine.
func (b *Bridge) tick(ctx context.Context) {
	if err := b.binding.Poll(b.display, b.atoms); err != nil {
		slog.Debug("poll tray binding failed", "error", err)
		return
	}
	dock.Tick(ctx, b.display, b.conn, b.cat, b.atoms, &b.binding, b.winCfg, b.cfg.IconSize)
}

// dockNewIcon runs add_item's synchronous sequence for a freshly registered
// icon: create its window, request docking against the current tray owner
// (if any), map it, then fetch and render its pixmap. It runs on Run's
// goroutine via watcher's exec, so it may touch the display connection and
// icon directly.
func (b *Bridge) dockNewIcon(icon *catalogue.Icon) {
	win, gc, err := dock.CreateAndDock(b.display, b.atoms, b.binding.Current, b.winCfg)
	if err != nil {
		slog.Error("register: create icon window failed", "service", icon.Service, "error", err)
		return
	}
	icon.Window, icon.GC = win, gc

	if err := pixmap.Ingest(b.ctx, b.conn, b.display, icon, b.cfg.IconSize); err != nil {
		slog.Debug("register: pixmap ingest failed", "service", icon.Service, "error", err)
		return
	}
	input.HandleExpose(b.display, icon, b.cfg.IconSize, 0)
}

func (b *Bridge) handleSignal(ctx context.Context, sig *dbus.Signal) {
	kind, name := reactor.Classify(sig)
	switch kind {
	case reactor.OwnerVanished:
		icon, ok := b.cat.FindByService(name)
		if !ok {
			return
		}
		release(b.display, icon)
		b.watcher.Unregister(name)
	case reactor.IconChanged:
		icon, ok := b.cat.FindByService(name)
		if !ok {
			return
		}
		if err := pixmap.Ingest(ctx, b.conn, b.display, icon, b.cfg.IconSize); err != nil {
			slog.Debug("re-ingest on NewIcon failed", "service", name, "error", err)
			return
		}
		input.HandleExpose(b.display, icon, b.cfg.IconSize, 0)
	}
}

func (b *Bridge) handleEvent(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ExposeEvent:
		icon, ok := b.cat.FindByWindow(e.Window)
		if !ok {
			return
		}
		input.HandleExpose(b.display, icon, b.cfg.IconSize, e.Count)

	case xproto.ButtonPressEvent:
		icon, ok := b.cat.FindByWindow(e.Event)
		if !ok {
			return
		}
		rootX, rootY, err := input.TranslateToRoot(b.display, e.Event, e.EventX, e.EventY)
		if err != nil {
			slog.Debug("translate coordinates failed", "error", err)
			return
		}
		input.HandleButtonPress(b.conn, icon, rootX, rootY, e.Detail)
	}
}

// Cleanup releases every present icon's resources in reverse acquisition
// order, then the shared bus and display connections.
func (b *Bridge) Cleanup() {
	for icon := range b.cat.All() {
		release(b.display, icon)
	}
	b.conn.Close()
	b.display.Close()
}

func release(d *xres.Display, icon *catalogue.Icon) {
	xres.FreePixmap(d, icon.Pixmap)
	xres.DestroyWindow(d, icon.Window, icon.GC)
	icon.Pixmap, icon.Window, icon.GC, icon.Width, icon.Height = 0, 0, 0, 0, 0
}

func defaultScreenNumber(d *xres.Display) int {
	setup := xproto.Setup(d.Conn)
	for i, s := range setup.Roots {
		if s.Root == d.Root {
			return i
		}
	}
	return 0
}
