package model

// Device represents one Wiren Board device (spec.md §3). DisplayName
// defaults to the raw device ID until a "name" meta arrives, at which
// point it becomes "Wiren Board <raw-name>".
type Device struct {
	ID             string
	DisplayName    string
	Manufacturer   string
	HasModel       bool
	Model          string
	HasHWVersion   bool
	HWVersion      string
	HasSWVersion   bool
	SWVersion      string
	HasSerial      bool
	SerialNumber   string
	controls       map[string]*Control
}

// NewDevice creates a Device defaulting DisplayName to its raw ID and
// Manufacturer to "Wiren Board", per spec.md §3.
func NewDevice(id string) *Device {
	return &Device{
		ID:           id,
		DisplayName:  id,
		Manufacturer: "Wiren Board",
		controls:     make(map[string]*Control),
	}
}

// SetDisplayName applies the Wiren "name" device meta.
func (d *Device) SetDisplayName(name string) bool {
	newName := "Wiren Board " + name
	if d.DisplayName == newName {
		return false
	}
	d.DisplayName = newName
	return true
}

// SetHWVersionAndModel applies the "system/hw_revision" state enrichment
// (spec.md §4.3), which sets both HWVersion and Model from one value.
func (d *Device) SetHWVersionAndModel(v string) bool {
	changed := false
	if !d.HasHWVersion || d.HWVersion != v {
		d.HWVersion = v
		d.HasHWVersion = true
		changed = true
	}
	if !d.HasModel || d.Model != v {
		d.Model = v
		d.HasModel = true
		changed = true
	}
	return changed
}

// SetSWVersion applies the "system/release_name" state enrichment.
func (d *Device) SetSWVersion(v string) bool {
	if d.HasSWVersion && d.SWVersion == v {
		return false
	}
	d.SWVersion = v
	d.HasSWVersion = true
	return true
}

// SetSerialNumber applies either "system/short_sn" or a "serial" control's
// state enrichment.
func (d *Device) SetSerialNumber(v string) bool {
	if d.HasSerial && d.SerialNumber == v {
		return false
	}
	d.SerialNumber = v
	d.HasSerial = true
	return true
}

// Control gets or creates the named control, per spec.md §3's
// get-or-create lookup.
func (d *Device) Control(id string) (*Control, bool) {
	c, existed := d.controls[id]
	if !existed {
		c = NewControl(d.ID, id)
		d.controls[id] = c
	}
	return c, existed
}

// Controls returns all controls currently known for this device. Order
// is not meaningful, per spec.md §3.
func (d *Device) Controls() []*Control {
	out := make([]*Control, 0, len(d.controls))
	for _, c := range d.controls {
		out = append(out, c)
	}
	return out
}
