package gpib

// Bus is the capability set exposed by a GPIB bus adapter strategy.
//
// Failures never surface as panics or returned errors from Write and Query:
// they are logged by the implementation and reported as a false ok flag.
// A caller that receives ok == false should treat the device as unreachable
// and apply its own retry policy, if any.
type Bus interface {
	// Open opens the underlying channel. Write and Query open it lazily, so
	// calling Open is optional.
	Open() error
	// Close closes the underlying channel and waits until it may be reopened.
	Close()
	// Write sends command to the device at address.
	// It returns false if the command could not be delivered.
	Write(address int, command string) bool
	// Query sends command to the device at address and returns its reply.
	//
	// ok is false if a transport fault occurred. An empty reply with ok == true
	// means the device didn't answer within the idle window.
	Query(address int, command string) (reply string, ok bool)
	// Dispose releases the adapter. It is safe to call more than once; only
	// the first call has an effect.
	Dispose()
}
