// Package prologix implements a GPIB bus adapter for USB-serial GPIB
// controllers of the Prologix GPIB-USB family.
//
// The controller appears to the host as a serial port. Everything written to
// the port is either a controller-local meta-command or data to forward onto
// the GPIB bus:
//
//	meta-command:        "++" keyword [" " arg ...] "\r\n"   (never escaped)
//	device transaction:  "++addr " N "\r\n"  escaped(payload) "\r\n"
//
// Payload bytes that collide with the controller's framing (CR, LF, ESC and
// '+') are each prefixed with one ESC byte before being sent; see [Escape].
//
// # Session lifecycle
//
// A [Controller] is created once per physical adapter. Construction runs the
// bootstrap handshake exactly once:
//
//	++ifc      assert controller-in-charge
//	++mode 1   controller mode
//	++eoi 1    assert EOI with the last byte
//	++eos 0    CR-LF end-of-string convention
//
// The serial port is opened lazily by the first command that needs it. Closing
// the port always incurs a settle delay before it may be reopened, because
// the adapter's USB-serial bridge needs time to finish its own close cycle.
// [Controller.Close] sleeps for it; [Controller.CloseAsync] returns the time
// at which the port becomes ready again so callers can poll [Controller.Ready].
//
// # Responses
//
// The protocol supplies neither a length field nor a reliable terminator, so
// the end of a device response is inferred from a period of silence on the
// line (the read idle timeout, 500ms by default). Every query therefore costs
// at least one idle timeout, and a reply whose inter-byte gaps exceed the
// timeout is truncated. See [IdleReader].
//
// # Errors
//
// Transport faults never escape Write or Query. They are logged at error
// level and reported as a false ok flag. There are no retries and no
// automatic reconnection.
//
// # Concurrency
//
// A Controller is NOT goroutine-safe and starts no goroutines of its own. All
// transactions must be serialized by the caller, for example with
// gpib.Serialized.
package prologix
