package model

import "sync"

// Registry is the process-scoped device/control model, mutated only from
// the single ingress goroutine per broker side (spec.md §3, §5). The
// mutex exists only to let read-mostly consumers (the snapshot renderer,
// "publish_all_devices") take a safe range over Devices() from another
// goroutine; the ingress side never contends on it under normal load
// since it is the sole writer.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Device gets or creates the device with the given raw ID.
func (r *Registry) Device(id string) *Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		d = NewDevice(id)
		r.devices[id] = d
	}
	return d
}

// Devices returns a snapshot slice of all known devices.
func (r *Registry) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}
