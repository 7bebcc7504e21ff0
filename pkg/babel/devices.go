package babel

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrDeviceNotFound is returned when a named device does not exist.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceExists is returned when adding a device under a taken name.
	ErrDeviceExists = errors.New("device already exists")
)

// DeviceSet is a name-keyed collection of devices. Names are listed in
// sorted order. It is safe for concurrent use.
type DeviceSet struct {
	mu      sync.RWMutex
	devices map[string]*DeviceFormat
}

// NewDeviceSet creates a set holding devs. Later devices replace earlier
// ones with the same name.
func NewDeviceSet(devs ...*DeviceFormat) *DeviceSet {
	s := &DeviceSet{devices: make(map[string]*DeviceFormat, len(devs))}
	for _, d := range devs {
		s.devices[d.Name()] = d
	}
	return s
}

// Get returns the named device.
func (s *DeviceSet) Get(name string) (*DeviceFormat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[name]
	return d, ok
}

// Names returns the device names in sorted order.
func (s *DeviceSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.devices))
}

// Len returns the number of devices.
func (s *DeviceSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

// Add inserts a new device.
func (s *DeviceSet) Add(d *DeviceFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[d.Name()]; ok {
		return fmt.Errorf("add %q: %w", d.Name(), ErrDeviceExists)
	}
	s.devices[d.Name()] = d
	return nil
}

// Update replaces the device named old with d, which may carry a new name.
func (s *DeviceSet) Update(old string, d *DeviceFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[old]; !ok {
		return fmt.Errorf("update %q: %w", old, ErrDeviceNotFound)
	}
	if d.Name() != old {
		if _, ok := s.devices[d.Name()]; ok {
			return fmt.Errorf("rename %q to %q: %w", old, d.Name(), ErrDeviceExists)
		}
	}
	delete(s.devices, old)
	s.devices[d.Name()] = d
	return nil
}

// Remove deletes the named device.
func (s *DeviceSet) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[name]; !ok {
		return fmt.Errorf("remove %q: %w", name, ErrDeviceNotFound)
	}
	delete(s.devices, name)
	return nil
}

// NewDeviceName returns the first free name of the form "New device N",
// counting from 1.
func (s *DeviceSet) NewDeviceName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := 1; ; i++ {
		name := fmt.Sprintf("New device %d", i)
		if _, ok := s.devices[name]; !ok {
			return name
		}
	}
}

// Commands returns the authored templates of every device, keyed by name.
func (s *DeviceSet) Commands() map[string]DeviceCommands {
	_, cmds := s.Snapshot()
	return cmds
}

// Snapshot returns the sorted names and the templates of every device,
// taken under one lock so both describe the same set.
func (s *DeviceSet) Snapshot() ([]string, map[string]DeviceCommands) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cmds := make(map[string]DeviceCommands, len(s.devices))
	for name, d := range s.devices {
		cmds[name] = d.Commands()
	}
	return slices.Sorted(maps.Keys(s.devices)), cmds
}
