package model

// Control represents one reading or actuator on one device (spec.md §3).
// Every setter has set-if-changed semantics: it returns whether the
// value actually changed, which ingress uses to decide whether to
// request an egress republish.
type Control struct {
	ID        string
	DeviceID  string
	Type      ControlType
	ReadOnly  TriBool
	Error     TriBool
	Units     string
	HasUnits  bool
	Max       int
	HasMax    bool
	LastState string
	HasState  bool
}

// NewControl creates a Control with no fields populated.
func NewControl(deviceID, id string) *Control {
	return &Control{DeviceID: deviceID, ID: id}
}

// SetType applies a newly parsed type, reporting whether it changed.
func (c *Control) SetType(t ControlType) bool {
	if c.Type == t {
		return false
	}
	c.Type = t
	return true
}

// SetReadOnly applies a newly parsed readonly flag.
func (c *Control) SetReadOnly(v bool) bool {
	nv := FromBool(v)
	if c.ReadOnly == nv {
		return false
	}
	c.ReadOnly = nv
	return true
}

// SetError applies a newly parsed error flag. Per spec.md §9's preserved
// quirk, the caller is responsible for truthiness rules (any non-empty
// string, including "0", counts as true) — SetError itself just compares
// TriBool values.
func (c *Control) SetError(v bool) bool {
	nv := FromBool(v)
	if c.Error == nv {
		return false
	}
	c.Error = nv
	return true
}

// EnsureErrorKnown sets Error to False if it is still Unknown, per the
// "initial-assumption invariant" in spec.md §4.3, reporting whether it
// changed.
func (c *Control) EnsureErrorKnown() bool {
	if c.Error != Unknown {
		return false
	}
	c.Error = False
	return true
}

// SetUnits applies a units override.
func (c *Control) SetUnits(units string) bool {
	if c.HasUnits && c.Units == units {
		return false
	}
	c.Units = units
	c.HasUnits = true
	return true
}

// SetMax applies a parsed max value; ok=false clears it (the spec's
// "empty value -> none").
func (c *Control) SetMax(max int, ok bool) bool {
	if !ok {
		changed := c.HasMax
		c.HasMax = false
		c.Max = 0
		return changed
	}
	if c.HasMax && c.Max == max {
		return false
	}
	c.Max = max
	c.HasMax = true
	return true
}

// SetState applies the latest control state value.
func (c *Control) SetState(state string) bool {
	if c.HasState && c.LastState == state {
		return false
	}
	c.LastState = state
	c.HasState = true
	return true
}

// IsAvailable reports the availability payload per spec.md §3's invariant:
// "1" iff error is false.
func (c *Control) IsAvailable() bool {
	return c.Error == False
}
