package reactor

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestClassifyOwnerVanished(t *testing.T) {
	sig := &dbus.Signal{
		Name: nameOwnerChanged,
		Body: []interface{}{":1.42", ":1.42", ""},
	}
	kind, name := Classify(sig)
	if kind != OwnerVanished || name != ":1.42" {
		t.Errorf("Classify = %v, %q; want OwnerVanished, :1.42", kind, name)
	}
}

func TestClassifyOwnerChangeIsIgnored(t *testing.T) {
	sig := &dbus.Signal{
		Name: nameOwnerChanged,
		Body: []interface{}{":1.42", "", ":1.43"},
	}
	kind, _ := Classify(sig)
	if kind != Ignored {
		t.Errorf("Classify = %v, want Ignored for a non-empty new owner", kind)
	}
}

func TestClassifyNewIcon(t *testing.T) {
	sig := &dbus.Signal{
		Name:   newIcon,
		Sender: ":1.42",
	}
	kind, service := Classify(sig)
	if kind != IconChanged || service != ":1.42" {
		t.Errorf("Classify = %v, %q; want IconChanged, :1.42", kind, service)
	}
}

func TestClassifyUnrelatedSignalIgnored(t *testing.T) {
	sig := &dbus.Signal{Name: "org.freedesktop.DBus.NameAcquired"}
	kind, _ := Classify(sig)
	if kind != Ignored {
		t.Errorf("Classify = %v, want Ignored", kind)
	}
}

func TestClassifyMalformedOwnerChangedIgnored(t *testing.T) {
	sig := &dbus.Signal{Name: nameOwnerChanged, Body: []interface{}{":1.42"}}
	kind, _ := Classify(sig)
	if kind != Ignored {
		t.Errorf("Classify = %v, want Ignored for malformed body", kind)
	}
}
