package model

import "testing"

func TestDeviceDefaults(t *testing.T) {
	d := NewDevice("wb-mr6c_123")
	if d.DisplayName != "wb-mr6c_123" {
		t.Fatalf("expected DisplayName to default to raw id, got %q", d.DisplayName)
	}
	if d.Manufacturer != "Wiren Board" {
		t.Fatalf("expected default manufacturer, got %q", d.Manufacturer)
	}
}

func TestDeviceSetDisplayName(t *testing.T) {
	d := NewDevice("wb-mr6c_123")
	if !d.SetDisplayName("Relay module") {
		t.Fatalf("expected first SetDisplayName to report changed")
	}
	if d.DisplayName != "Wiren Board Relay module" {
		t.Fatalf("unexpected display name: %q", d.DisplayName)
	}
	if d.SetDisplayName("Relay module") {
		t.Fatalf("expected repeat SetDisplayName to report unchanged")
	}
}

func TestDeviceControlGetOrCreate(t *testing.T) {
	d := NewDevice("wb-mr6c_123")
	c1, existed := d.Control("K1")
	if existed {
		t.Fatalf("expected first lookup to report not-existed")
	}
	c2, existed := d.Control("K1")
	if !existed {
		t.Fatalf("expected second lookup to report existed")
	}
	if c1 != c2 {
		t.Fatalf("expected get-or-create to return the same control instance")
	}
}

func TestDeviceHWVersionAndModel(t *testing.T) {
	d := NewDevice("wb-mr6c_123")
	if !d.SetHWVersionAndModel("WB-MR6C") {
		t.Fatalf("expected first SetHWVersionAndModel to report changed")
	}
	if d.HWVersion != "WB-MR6C" || d.Model != "WB-MR6C" {
		t.Fatalf("expected both HWVersion and Model set, got %q / %q", d.HWVersion, d.Model)
	}
	if d.SetHWVersionAndModel("WB-MR6C") {
		t.Fatalf("expected repeat SetHWVersionAndModel to report unchanged")
	}
}
