package gpib

import (
	"errors"

	"github.com/puzpuzpuz/xsync/v3"
)

// ErrNilBus indicates that a BusFactory returned a nil Bus without an error.
var ErrNilBus = errors.New("bus factory returned nil bus")

// BusFactory creates the bus session for a physical adapter identified by port.
type BusFactory func(port string) (Bus, error)

type registryEntry struct {
	bus  *SerializedBus
	refs int
}

// Registry keeps at most one bus session per physical adapter.
//
// Drivers sharing an adapter Acquire the same serialized session and Release
// it when done; the session is disposed when the last reference is released.
type Registry struct {
	entries *xsync.MapOf[string, registryEntry]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: xsync.NewMapOf[string, registryEntry]()}
}

// Acquire returns the session for port, creating it with factory if none exists.
//
// The factory runs outside the registry's locks, so it may block on opening
// the port and may use the registry itself. If two callers create a session
// for the same port concurrently, the later one is disposed and both get the
// earlier one. The returned bus is serialized, so drivers holding it from
// different goroutines never interleave on the wire.
func (r *Registry) Acquire(port string, factory BusFactory) (Bus, error) {
	if bus, ok := r.retain(port); ok {
		return bus, nil
	}

	bus, err := factory(port)
	if err == nil && bus == nil {
		err = ErrNilBus
	}
	if err != nil {
		return nil, err
	}

	created := Serialized(bus)
	lost := false
	entry, _ := r.entries.Compute(port, func(old registryEntry, loaded bool) (registryEntry, bool) {
		if loaded {
			old.refs++
			lost = true
			return old, false
		}

		return registryEntry{bus: created, refs: 1}, false
	})

	if lost {
		created.Dispose()
	}

	return entry.bus, nil
}

// retain adds a reference to an existing session for port.
func (r *Registry) retain(port string) (*SerializedBus, bool) {
	found := false
	entry, _ := r.entries.Compute(port, func(old registryEntry, loaded bool) (registryEntry, bool) {
		if !loaded {
			return old, true
		}
		old.refs++
		found = true

		return old, false
	})

	return entry.bus, found
}

// Release drops one reference to the session for port and disposes the session
// once no references remain. Releasing an unknown port is a no-op.
func (r *Registry) Release(port string) {
	var disposed *SerializedBus

	r.entries.Compute(port, func(old registryEntry, loaded bool) (registryEntry, bool) {
		if !loaded {
			return old, true
		}

		old.refs--
		if old.refs > 0 {
			return old, false
		}

		disposed = old.bus
		return registryEntry{}, true
	})

	if disposed != nil {
		disposed.Dispose()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.entries.Size()
}

// Close disposes every live session regardless of outstanding references.
func (r *Registry) Close() {
	r.entries.Range(func(port string, _ registryEntry) bool {
		if entry, ok := r.entries.LoadAndDelete(port); ok {
			entry.bus.Dispose()
		}
		return true
	})
}
