package catalogue

import "testing"

func TestInsertFindRemove(t *testing.T) {
	c := New()

	icon, err := c.Insert(":1.42", "/StatusNotifierItem")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if icon.FullName() != ":1.42/StatusNotifierItem" {
		t.Errorf("FullName = %q", icon.FullName())
	}

	got, ok := c.FindByService(":1.42")
	if !ok || got.Path != "/StatusNotifierItem" {
		t.Fatalf("FindByService failed: %+v %v", got, ok)
	}

	removed, ok := c.Remove(":1.42")
	if !ok || removed.Service != ":1.42" {
		t.Fatalf("Remove failed: %+v %v", removed, ok)
	}

	if _, ok := c.FindByService(":1.42"); ok {
		t.Error("service still present after Remove")
	}
}

func TestInsertDuplicateFails(t *testing.T) {
	c := New()
	if _, err := c.Insert(":1.1", "/StatusNotifierItem"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Insert(":1.1", "/StatusNotifierItem"); err != ErrAlreadyPresent {
		t.Errorf("Insert duplicate: got %v, want ErrAlreadyPresent", err)
	}
}

func TestIdempotentRegistration(t *testing.T) {
	c := New()
	c.Insert(":1.1", "/StatusNotifierItem")
	before := c.Services()
	c.Insert(":1.1", "/StatusNotifierItem") // ignored by caller since err != nil, catalogue unchanged
	after := c.Services()

	if len(before) != 1 || len(after) != 1 || before[0] != after[0] {
		t.Errorf("catalogue changed after duplicate insert: before=%v after=%v", before, after)
	}
}

func TestCapacityExceeded(t *testing.T) {
	c := New()
	for i := 0; i < Capacity; i++ {
		svc := string(rune('a' + i%26))
		if _, err := c.Insert(svc+string(rune(i)), "/p"); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if _, err := c.Insert("overflow", "/p"); err != ErrCapacityExceeded {
		t.Errorf("got %v, want ErrCapacityExceeded", err)
	}
}

func TestTombstoneReuse(t *testing.T) {
	c := New()
	c.Insert("a", "/p")
	c.Insert("b", "/p")
	c.Remove("a")

	icon, err := c.Insert("c", "/p")
	if err != nil {
		t.Fatal(err)
	}
	if icon.Service != "c" {
		t.Fatalf("unexpected icon %+v", icon)
	}

	// High-water mark is not lowered: iterating must still see exactly {b, c}.
	services := c.Services()
	if len(services) != 2 {
		t.Errorf("Services() = %v, want 2 entries", services)
	}
}

func TestLowestSlotTieBreak(t *testing.T) {
	c := New()
	c.Insert("a", "/p")
	c.Insert("b", "/p")
	c.Insert("c", "/p")
	c.Remove("a") // frees slot 0

	icon, err := c.Insert("d", "/p")
	if err != nil {
		t.Fatal(err)
	}
	if icon != &c.slots[0] {
		t.Error("Insert did not reuse the lowest empty slot")
	}
}

func TestFindByWindowZeroNeverMatches(t *testing.T) {
	c := New()
	c.Insert("a", "/p") // Window is zero-value (unset)
	if _, ok := c.FindByWindow(0); ok {
		t.Error("FindByWindow(0) should never match, even for icons without a window yet")
	}
}

func TestAllSafeToReRange(t *testing.T) {
	c := New()
	c.Insert("a", "/p")
	c.Insert("b", "/p")

	var first, second []string
	for icon := range c.All() {
		first = append(first, icon.Service)
	}
	for icon := range c.All() {
		second = append(second, icon.Service)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("All() did not yield all present icons on each range: %v / %v", first, second)
	}
}
