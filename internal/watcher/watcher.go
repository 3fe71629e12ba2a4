// Package watcher implements the StatusNotifierWatcher object: claiming the
// well-known bus names, exposing introspection and properties, and accepting
// RegisterStatusNotifierItem/RegisterStatusNotifierHost calls.
//
// The bus package (godbus) dispatches exported methods on its own
// goroutine, separate from whatever goroutine owns the display connection
// and the icon catalogue. Every method here runs its catalogue-touching
// logic through Exec, a caller-supplied function that marshals the closure
// onto the single owning goroutine and blocks until it has run, keeping
// catalogue mutation confined to one goroutine without a literal OS-thread
// affinity or a lock.
package watcher

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/dtray/dtray/internal/catalogue"
)

const (
	watcherInterface = "org.kde.StatusNotifierWatcher"
	watcherPath      = "/StatusNotifierWatcher"
	kdeBusName       = "org.kde.StatusNotifierWatcher"
	fdoBusName       = "org.freedesktop.StatusNotifierWatcher"
	propertiesIface  = "org.freedesktop.DBus.Properties"
	introspectIface  = "org.freedesktop.DBus.Introspectable"
)

// Watcher is the exported D-Bus object backing both well-known names.
type Watcher struct {
	conn       *dbus.Conn
	cat        *catalogue.Catalogue
	exec       func(func())
	onRegister func(*catalogue.Icon)

	hostRegistered bool
}

// New claims org.kde.StatusNotifierWatcher (required, as primary owner) and
// org.freedesktop.StatusNotifierWatcher (best-effort), then exports the
// object path. exec must run its argument on the goroutine that owns cat and
// block until it returns. onRegister is invoked from within that same exec
// closure immediately after a successful insert, so a newly registered icon
// is docked, mapped, and painted before RegisterStatusNotifierItem replies —
// mirroring add_item's synchronous sequence in the original daemon.
func New(conn *dbus.Conn, cat *catalogue.Catalogue, exec func(func()), onRegister func(*catalogue.Icon)) (*Watcher, error) {
	reply, err := conn.RequestName(kdeBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("watcher: request %s: %w", kdeBusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("watcher: %s already owned by another process", kdeBusName)
	}

	// Best-effort: failure to claim the FDO alias is advisory only.
	if _, err := conn.RequestName(fdoBusName, dbus.NameFlagDoNotQueue); err != nil {
		slog.Debug("could not claim best-effort FDO watcher name", "error", err)
	}

	w := &Watcher{conn: conn, cat: cat, exec: exec, onRegister: onRegister}

	if err := conn.Export(w, watcherPath, watcherInterface); err != nil {
		return nil, fmt.Errorf("watcher: export %s: %w", watcherInterface, err)
	}
	// Tolerate method calls with no interface name set by the caller.
	if err := conn.Export(w, watcherPath, ""); err != nil {
		return nil, fmt.Errorf("watcher: export fallback interface: %w", err)
	}
	if err := conn.Export(w, watcherPath, propertiesIface); err != nil {
		return nil, fmt.Errorf("watcher: export %s: %w", propertiesIface, err)
	}
	if err := conn.Export(introspectable(introspectXML), watcherPath, introspectIface); err != nil {
		return nil, fmt.Errorf("watcher: export %s: %w", introspectIface, err)
	}

	return w, nil
}

// RegisterStatusNotifierItem implements the Watcher.RegisterStatusNotifierItem
// method. Resolution rules:
//   - argument starting with '/': it is a path, service is the sender.
//   - argument starting with ':': it is the service, path defaults to
//     /StatusNotifierItem.
//   - otherwise: service is the argument, or the sender if empty; path
//     defaults to /StatusNotifierItem.
func (w *Watcher) RegisterStatusNotifierItem(arg string, sender dbus.Sender) *dbus.Error {
	service, path := resolveServiceAndPath(arg, string(sender))

	var insertErr error
	w.exec(func() {
		var icon *catalogue.Icon
		icon, insertErr = w.cat.Insert(service, path)
		if insertErr == nil && w.onRegister != nil {
			w.onRegister(icon)
		}
	})
	if insertErr == catalogue.ErrAlreadyPresent {
		return nil // re-registering an existing service is a no-op
	}
	if insertErr == catalogue.ErrCapacityExceeded {
		slog.Warn("watcher: capacity exceeded, registration refused", "service", service)
		return nil // still an empty reply
	}

	full := service + path
	if err := w.conn.Emit(watcherPath, watcherInterface+".StatusNotifierItemRegistered", full); err != nil {
		slog.Debug("emit StatusNotifierItemRegistered failed", "error", err)
	}
	return nil
}

// RegisterStatusNotifierHost implements Watcher.RegisterStatusNotifierHost.
// The host registry itself is not modeled beyond the boolean property; any
// caller succeeds.
func (w *Watcher) RegisterStatusNotifierHost(service string) *dbus.Error {
	w.exec(func() { w.hostRegistered = true })
	if err := w.conn.Emit(watcherPath, watcherInterface+".StatusNotifierHostRegistered"); err != nil {
		slog.Debug("emit StatusNotifierHostRegistered failed", "error", err)
	}
	return nil
}

// Unregister deregisters service and emits StatusNotifierItemUnregistered.
// Called by the bridge's signal handler on owner-vanish, which already runs
// on the loop goroutine that owns cat — unlike the bus-method handlers
// above, it talks to cat directly rather than through exec.
func (w *Watcher) Unregister(service string) {
	removed, ok := w.cat.Remove(service)
	if !ok {
		return
	}
	full := removed.FullName()
	if err := w.conn.Emit(watcherPath, watcherInterface+".StatusNotifierItemUnregistered", full); err != nil {
		slog.Debug("emit StatusNotifierItemUnregistered failed", "error", err)
	}
}

func resolveServiceAndPath(arg, sender string) (service, path string) {
	switch {
	case strings.HasPrefix(arg, "/"):
		return sender, arg
	case strings.HasPrefix(arg, ":"):
		return arg, "/StatusNotifierItem"
	case arg == "":
		return sender, "/StatusNotifierItem"
	default:
		return arg, "/StatusNotifierItem"
	}
}

// Get implements org.freedesktop.DBus.Properties.Get for the Watcher
// interface. Properties.Export from godbus/dbus/v5/prop would serve Get and
// GetAll identically, but GetAll here must omit RegisteredStatusNotifierItems
// while Get still serves it individually — a distinction the prop package
// has no hook for — so both are hand-written.
func (w *Watcher) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	if iface != "" && iface != watcherInterface {
		return dbus.Variant{}, dbus.NewError(propertiesIface+".Error.UnknownProperty", []interface{}{property})
	}
	switch property {
	case "IsStatusNotifierHostRegistered":
		var v bool
		w.exec(func() { v = w.hostRegistered })
		return dbus.MakeVariant(v), nil
	case "ProtocolVersion":
		return dbus.MakeVariant(int32(0)), nil
	case "RegisteredStatusNotifierItems":
		var services []string
		w.exec(func() { services = w.cat.Services() })
		return dbus.MakeVariant(services), nil
	default:
		return dbus.Variant{}, dbus.NewError(propertiesIface+".Error.UnknownProperty", []interface{}{property})
	}
}

// GetAll implements Properties.GetAll, omitting the array-valued property.
func (w *Watcher) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	var hostRegistered bool
	w.exec(func() { hostRegistered = w.hostRegistered })
	return map[string]dbus.Variant{
		"IsStatusNotifierHostRegistered": dbus.MakeVariant(hostRegistered),
		"ProtocolVersion":                dbus.MakeVariant(int32(0)),
	}, nil
}

// introspectXML is the static introspection document for the
// StatusNotifierWatcher object path. It must be byte-identical to the
// original daemon's introspect_xml for interoperability with current SNI
// clients, so it is a literal rather than anything built through the
// introspect package's XML marshaling (which disagrees with it on argument
// names, attribute order, and indentation).
const introspectXML = `<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"
"http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">
<node>
  <interface name="org.kde.StatusNotifierWatcher">
    <method name="RegisterStatusNotifierItem">
      <arg direction="in" name="service" type="s"/>
    </method>
    <method name="RegisterStatusNotifierHost">
      <arg direction="in" name="service" type="s"/>
    </method>
    <property name="IsStatusNotifierHostRegistered" type="b" access="read"/>
    <property name="ProtocolVersion" type="i" access="read"/>
    <property name="RegisteredStatusNotifierItems" type="as" access="read"/>
    <signal name="StatusNotifierItemRegistered">
      <arg type="s"/>
    </signal>
    <signal name="StatusNotifierItemUnregistered">
      <arg type="s"/>
    </signal>
    <signal name="StatusNotifierHostRegistered"/>
  </interface>
  <interface name="org.freedesktop.DBus.Properties">
    <method name="Get">
      <arg direction="in" name="interface" type="s"/>
      <arg direction="in" name="property" type="s"/>
      <arg direction="out" name="value" type="v"/>
    </method>
    <method name="GetAll">
      <arg direction="in" name="interface" type="s"/>
      <arg direction="out" name="properties" type="a{sv}"/>
    </method>
  </interface>
  <interface name="org.freedesktop.DBus.Introspectable">
    <method name="Introspect">
      <arg direction="out" name="xml" type="s"/>
    </method>
  </interface>
</node>
`

// introspectable exports a fixed XML document on Introspect.
type introspectable string

func (x introspectable) Introspect() (string, *dbus.Error) {
	return string(x), nil
}
