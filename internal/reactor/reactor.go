// Package reactor classifies bus signals the daemon subscribes to: owner loss
// (deregister) and NewIcon (re-ingest). Everything else is ignored.
package reactor

import "github.com/godbus/dbus/v5"

const (
	nameOwnerChanged = "org.freedesktop.DBus.NameOwnerChanged"
	newIcon          = "org.kde.StatusNotifierItem.NewIcon"
)

// Kind classifies a bus signal for dispatch.
type Kind int

const (
	Ignored Kind = iota
	OwnerVanished
	IconChanged
)

// Classify inspects sig and returns its Kind plus the service name relevant
// to that kind (the vanished name for OwnerVanished, the signal sender for
// IconChanged).
func Classify(sig *dbus.Signal) (Kind, string) {
	switch sig.Name {
	case nameOwnerChanged:
		if len(sig.Body) != 3 {
			return Ignored, ""
		}
		name, ok := sig.Body[0].(string)
		if !ok {
			return Ignored, ""
		}
		newOwner, ok := sig.Body[2].(string)
		if !ok || newOwner != "" {
			return Ignored, ""
		}
		return OwnerVanished, name
	case newIcon:
		return IconChanged, string(sig.Sender)
	default:
		return Ignored, ""
	}
}

// AddMatches subscribes conn to the two signals this package classifies.
func AddMatches(conn *dbus.Conn) error {
	rules := []string{
		"type='signal',interface='org.freedesktop.DBus',member='NameOwnerChanged'",
		"type='signal',interface='org.kde.StatusNotifierItem',member='NewIcon'",
	}
	for _, rule := range rules {
		if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
			return err
		}
	}
	return nil
}
