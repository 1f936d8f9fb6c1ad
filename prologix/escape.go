package prologix

// Bytes reserved by the controller's framing.
const (
	LF   byte = 0x0A
	CR   byte = 0x0D
	ESC  byte = 0x1B
	Plus byte = 0x2B
)

// Terminator ends every line sent to the controller.
const Terminator = "\r\n"

func isReserved(b byte) bool {
	return b == LF || b == CR || b == ESC || b == Plus
}

// EscapedLen returns the length of Escape(payload) without allocating.
func EscapedLen(payload []byte) int {
	n := len(payload)
	for _, b := range payload {
		if isReserved(b) {
			n++
		}
	}

	return n
}

// Escape returns payload with one ESC byte inserted before every CR, LF, ESC
// and '+' byte. All other bytes are copied unchanged and in order.
//
// An ESC already present in payload is itself reserved, so it goes out as two
// consecutive ESC bytes. This mirrors the controller's framing rule literally;
// how instruments react to that exact sequence has not been verified.
func Escape(payload []byte) []byte {
	out := make([]byte, 0, EscapedLen(payload))
	for _, b := range payload {
		if isReserved(b) {
			out = append(out, ESC)
		}
		out = append(out, b)
	}

	return out
}

// EscapeAndTerminate escapes command and appends the line terminator.
// The terminator itself is never escaped.
func EscapeAndTerminate(command string) []byte {
	payload := []byte(command)
	out := make([]byte, 0, EscapedLen(payload)+len(Terminator))
	out = append(out, Escape(payload)...)

	return append(out, Terminator...)
}
