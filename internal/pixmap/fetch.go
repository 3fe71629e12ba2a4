package pixmap

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/dtray/dtray/internal/catalogue"
	"github.com/dtray/dtray/internal/xres"
)

const (
	itemInterface  = "org.kde.StatusNotifierItem"
	propertiesIfce = "org.freedesktop.DBus.Properties"
	fetchTimeout   = time.Second
)

// Ingest fetches icon.Service/icon.Path's IconPixmap property, selects and
// converts the best-fit tuple, and replaces icon's server-side pixmap. Any
// failure (timeout, malformed reply, missing property, no qualifying tuple,
// allocation failure) leaves icon visually unchanged and returns a non-nil
// error purely for logging; callers must not treat it as fatal.
func Ingest(ctx context.Context, conn *dbus.Conn, d *xres.Display, icon *catalogue.Icon, targetSize int) error {
	tuples, err := fetchIconPixmap(ctx, conn, icon.Service, icon.Path)
	if err != nil {
		return fmt.Errorf("pixmap: fetch %s: %w", icon.FullName(), err)
	}

	selected, ok := Select(tuples, targetSize)
	if !ok {
		return fmt.Errorf("pixmap: no qualifying tuple for %s", icon.FullName())
	}

	w := min(selected.Width, targetSize)
	h := min(selected.Height, targetSize)
	converted := Convert(selected.Data, selected.Width, selected.Height, w, h)

	pm, err := xres.CreatePixmap(d, icon.GC, converted, w, h)
	if err != nil {
		return fmt.Errorf("pixmap: upload %s: %w", icon.FullName(), err)
	}

	xres.FreePixmap(d, icon.Pixmap)
	icon.Pixmap = pm
	icon.Width = w
	icon.Height = h
	return nil
}

func fetchIconPixmap(ctx context.Context, conn *dbus.Conn, service, path string) ([]Tuple, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	obj := conn.Object(service, dbus.ObjectPath(path))
	var variant dbus.Variant
	err := obj.CallWithContext(ctx, propertiesIfce+".Get", 0, itemInterface, "IconPixmap").Store(&variant)
	if err != nil {
		return nil, err
	}

	// godbus decodes an a(iiay) inside a variant as [][]interface{}.
	var raw []interface{}
	switch v := variant.Value().(type) {
	case [][]interface{}:
		for _, fields := range v {
			raw = append(raw, fields)
		}
	case []interface{}:
		raw = v
	default:
		return nil, fmt.Errorf("malformed IconPixmap reply: %T", variant.Value())
	}

	tuples := make([]Tuple, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.([]interface{})
		if !ok || len(fields) != 3 {
			continue
		}
		w, ok1 := fields[0].(int32)
		h, ok2 := fields[1].(int32)
		data, ok3 := fields[2].([]byte)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		tuples = append(tuples, Tuple{Width: int(w), Height: int(h), Data: data})
	}
	if len(tuples) == 0 {
		return nil, fmt.Errorf("empty or unparseable IconPixmap array")
	}
	return tuples, nil
}
