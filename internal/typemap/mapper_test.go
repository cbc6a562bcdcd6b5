package typemap

import (
	"testing"

	"wb-ha-bridge/internal/model"
)

func TestComponentFor(t *testing.T) {
	cases := []struct {
		name     string
		ctype    model.ControlType
		readOnly model.TriBool
		want     Component
	}{
		{"writable switch", model.ControlTypeSwitch, model.False, Switch},
		{"readonly switch", model.ControlTypeSwitch, model.True, BinarySensor},
		{"readonly range", model.ControlTypeRange, model.True, Sensor},
		{"writable range", model.ControlTypeRange, model.False, None},
		{"alarm always binary sensor", model.ControlTypeAlarm, model.False, BinarySensor},
		{"pushbutton always button", model.ControlTypePushbutton, model.True, Button},
		{"text is sensor", model.ControlTypeText, model.True, Sensor},
		{"value is sensor", model.ControlTypeValue, model.False, Sensor},
		{"temperature is sensor", model.ControlTypeTemperature, model.True, Sensor},
		{"unknown type maps to none", model.ControlTypeUnknown, model.False, None},
		{"unset type maps to none", model.ControlTypeUnset, model.False, None},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComponentFor(tc.ctype, tc.readOnly); got != tc.want {
				t.Errorf("ComponentFor(%v, %v) = %v, want %v", tc.ctype, tc.readOnly, got, tc.want)
			}
		})
	}
}
