package gpib

import "sync"

// SerializedBus wraps a Bus so every operation runs under one mutex.
//
// It is the simplest way to satisfy the single-owner requirement when several
// goroutines drive instruments on the same adapter. Holding the lock for a
// whole Query means other callers wait for the full idle window as well.
type SerializedBus struct {
	mu  sync.Mutex
	bus Bus
}

var _ Bus = (*SerializedBus)(nil)

// Serialized returns bus wrapped with a mutex. Wrapping an already
// serialized bus returns it unchanged.
func Serialized(bus Bus) *SerializedBus {
	if sb, ok := bus.(*SerializedBus); ok {
		return sb
	}

	return &SerializedBus{bus: bus}
}

// Unwrap returns the wrapped bus.
func (s *SerializedBus) Unwrap() Bus {
	return s.bus
}

// Open opens the wrapped bus under the lock.
func (s *SerializedBus) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bus.Open()
}

// Close closes the wrapped bus under the lock.
func (s *SerializedBus) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bus.Close()
}

// Write runs a Write transaction on the wrapped bus under the lock.
func (s *SerializedBus) Write(address int, command string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bus.Write(address, command)
}

// Query runs a Query transaction on the wrapped bus, holding the lock until the reply is complete.
func (s *SerializedBus) Query(address int, command string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bus.Query(address, command)
}

// Dispose disposes the wrapped bus under the lock.
func (s *SerializedBus) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bus.Dispose()
}
