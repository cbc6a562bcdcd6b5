package model

import "strings"

// CombinedDevice is one entry of the combined_devices customisation map
// (spec.md §3).
type CombinedDevice struct {
	NewDeviceID string
	NewName     string
}

// Customisation is the immutable-after-construction policy the HA egress
// applies to every (device, control) pair, in the fixed precedence order
// ignore > split > combine (spec.md §3, §9).
type Customisation struct {
	ignoredDeviceIDs        map[string]struct{}
	ignoredDeviceControlIDs map[string]struct{}
	splittedDeviceIDs       map[string]struct{}
	combinedDevices         map[string]CombinedDevice
}

// defaultCombinedDevices is the fixed list of system pseudo-devices that
// are combined into "wirenboard" unless disabled, per spec.md §3.
var defaultCombinedDevices = []string{
	"wb_adc", "wbrules", "wb_gpio", "power_status", "network",
	"system", "hwmon", "buzzer", "alarms", "metrics",
}

// CustomisationOptions mirrors the homeassistant.* config keys in
// spec.md §6.
type CustomisationOptions struct {
	IgnoredDeviceIDs           []string
	IgnoredDeviceControlIDs    []string
	SplittedDeviceIDs          []string
	CombinedDevices            map[string]CombinedDevice
	EnableDefaultCombined      bool
}

// NewCustomisation builds an immutable Customisation from config options.
func NewCustomisation(opts CustomisationOptions) *Customisation {
	c := &Customisation{
		ignoredDeviceIDs:        toSet(opts.IgnoredDeviceIDs),
		ignoredDeviceControlIDs: toSet(opts.IgnoredDeviceControlIDs),
		splittedDeviceIDs:       toSet(opts.SplittedDeviceIDs),
		combinedDevices:         make(map[string]CombinedDevice),
	}

	if opts.EnableDefaultCombined {
		for _, id := range defaultCombinedDevices {
			c.combinedDevices[Normalise(id)] = CombinedDevice{NewDeviceID: "wirenboard", NewName: "Wiren Board"}
		}
	}
	for id, cd := range opts.CombinedDevices {
		c.combinedDevices[Normalise(id)] = cd
	}
	return c
}

func toSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[Normalise(id)] = struct{}{}
	}
	return s
}

// IsDeviceIgnored reports whether the normalised device unique id is
// fully suppressed.
func (c *Customisation) IsDeviceIgnored(deviceUniqueID string) bool {
	_, ok := c.ignoredDeviceIDs[deviceUniqueID]
	return ok
}

// IsEntityIgnored reports whether the normalised entity unique id is
// suppressed.
func (c *Customisation) IsEntityIgnored(entityUniqueID string) bool {
	_, ok := c.ignoredDeviceControlIDs[entityUniqueID]
	return ok
}

// IsSplit reports whether the normalised device unique id should be
// split so each control becomes its own HA device.
func (c *Customisation) IsSplit(deviceUniqueID string) bool {
	_, ok := c.splittedDeviceIDs[deviceUniqueID]
	return ok
}

// Combined returns the combination target for a normalised device unique
// id, if one exists.
func (c *Customisation) Combined(deviceUniqueID string) (CombinedDevice, bool) {
	cd, ok := c.combinedDevices[deviceUniqueID]
	return cd, ok
}

// Normalise lowercases and replaces spaces and hyphens with underscores,
// per spec.md §4.3.
func Normalise(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
