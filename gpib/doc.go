// Package gpib defines the bus-facing contract that instrument drivers
// program against.
//
// A driver (pump, delay generator, detector, ...) only ever needs two
// operations from the bus: deliver a command to an addressed device, and
// deliver a command then read the device's reply. Both are expressed by the
// [Bus] interface, which concrete adapter strategies implement. The
// prologix package provides the strategy for USB-serial GPIB controllers, and
// [Dummy] provides a hardware-free strategy for development.
//
// # Addressing
//
// Devices on the bus are identified by their primary address in the range
// [MinAddress, MaxAddress]. A controller can only address one device at a
// time, so every transaction re-asserts its own target address.
//
// # Concurrency
//
// Bus implementations are not goroutine-safe. The serial channel and the
// controller's currently addressed device are process-wide, single-owner
// resources: two goroutines talking to different addresses at the same time
// would interleave on the wire and corrupt both exchanges. Callers must route
// every transaction through a single owner, for example by wrapping the bus
// with [Serialized]. A [Registry] ensures only one session exists per
// physical adapter.
package gpib
