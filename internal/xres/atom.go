package xres

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// InternAtom resolves name to an atom through xgbutil's atom cache, used by
// the docker to resolve _NET_SYSTEM_TRAY_S<n> and _NET_SYSTEM_TRAY_OPCODE
// without a round trip on every redock poll.
func InternAtom(d *Display, name string) (xproto.Atom, error) {
	atom, err := xprop.Atm(d.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("xres: intern atom %q: %w", name, err)
	}
	return atom, nil
}

// SelectionOwner returns the current owner of the selection named by atom,
// or the zero window if unowned.
func SelectionOwner(d *Display, atom xproto.Atom) (xproto.Window, error) {
	reply, err := xproto.GetSelectionOwner(d.Conn, atom).Reply()
	if err != nil {
		return 0, fmt.Errorf("xres: get selection owner: %w", err)
	}
	return reply.Owner, nil
}
