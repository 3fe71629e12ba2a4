// Package catalogue implements the fixed-capacity table of registered
// StatusNotifierItem icons.
//
// Catalogue is not safe for concurrent use. Every call must come from the
// single goroutine that owns the display and bus connections; see
// internal/bridge for how dbus-triggered mutations are marshaled onto that
// goroutine.
package catalogue

import (
	"errors"
	"iter"

	"github.com/BurntSushi/xgb/xproto"
)

// Capacity is the fixed number of icon slots.
const Capacity = 64

// ErrAlreadyPresent is returned by Insert when the service already has a slot.
var ErrAlreadyPresent = errors.New("catalogue: service already registered")

// ErrCapacityExceeded is returned by Insert when no slot is free.
var ErrCapacityExceeded = errors.New("catalogue: capacity exceeded")

// Icon represents one registered SNI publisher.
//
// Window is present (non-zero) iff GC is present; Pixmap is present only
// when Width>0 and Height>0. Service is non-empty iff the slot is in use.
type Icon struct {
	Service string
	Path    string

	Window xproto.Window
	GC     xproto.Gcontext

	Pixmap        xproto.Pixmap
	Width, Height int
}

func (i *Icon) hasWindow() bool { return i.Window != 0 }
func (i *Icon) hasPixmap() bool { return i.Pixmap != 0 && i.Width > 0 && i.Height > 0 }

// FullName is the service+path identity used in SNI registration signals and
// in the RegisteredStatusNotifierItems property.
func (i *Icon) FullName() string { return i.Service + i.Path }

// Catalogue is the fixed-capacity slot table.
type Catalogue struct {
	slots     [Capacity]Icon
	present   [Capacity]bool
	highWater int // one past the highest slot ever used
}

// New returns an empty catalogue.
func New() *Catalogue {
	return &Catalogue{}
}

// Insert allocates the lowest empty slot for service/path. It fails with
// ErrAlreadyPresent if service already has a slot, or ErrCapacityExceeded if
// none is free.
func (c *Catalogue) Insert(service, path string) (*Icon, error) {
	if _, ok := c.FindByService(service); ok {
		return nil, ErrAlreadyPresent
	}

	for i := 0; i < Capacity; i++ {
		if c.present[i] {
			continue
		}
		c.slots[i] = Icon{Service: service, Path: path}
		c.present[i] = true
		if i+1 > c.highWater {
			c.highWater = i + 1
		}
		return &c.slots[i], nil
	}
	return nil, ErrCapacityExceeded
}

// FindByService returns the icon registered under service, if any.
func (c *Catalogue) FindByService(service string) (*Icon, bool) {
	for i := 0; i < c.highWater; i++ {
		if c.present[i] && c.slots[i].Service == service {
			return &c.slots[i], true
		}
	}
	return nil, false
}

// FindByWindow linearly scans present icons for one owning window w.
func (c *Catalogue) FindByWindow(w xproto.Window) (*Icon, bool) {
	if w == 0 {
		return nil, false
	}
	for i := 0; i < c.highWater; i++ {
		if c.present[i] && c.slots[i].Window == w {
			return &c.slots[i], true
		}
	}
	return nil, false
}

// Remove marks service's slot empty and returns a copy of the Icon it held
// so the caller can release its display-server resources (pixmap, GC,
// window, in that order). The high-water mark is never lowered; removed
// slots are tombstones reused by later Insert calls.
func (c *Catalogue) Remove(service string) (Icon, bool) {
	for i := 0; i < c.highWater; i++ {
		if c.present[i] && c.slots[i].Service == service {
			removed := c.slots[i]
			c.slots[i] = Icon{}
			c.present[i] = false
			return removed, true
		}
	}
	return Icon{}, false
}

// All iterates present icons in slot order. The sequence is finite. Each
// range over it re-scans the table from the start, so ranging twice is safe;
// it yields pointers into the live table, not a frozen copy.
func (c *Catalogue) All() iter.Seq[*Icon] {
	return func(yield func(*Icon) bool) {
		for i := 0; i < c.highWater; i++ {
			if !c.present[i] {
				continue
			}
			if !yield(&c.slots[i]) {
				return
			}
		}
	}
}

// Services returns service+path for every present icon, in slot order. This
// backs the Watcher's RegisteredStatusNotifierItems property.
func (c *Catalogue) Services() []string {
	var out []string
	for icon := range c.All() {
		out = append(out, icon.FullName())
	}
	return out
}
