package prologix

import (
	"strconv"
)

const commandInitiator = "++"

// Controller meta-command keywords.
const (
	cmdAddress = "addr"
	cmdIFC     = "ifc"
	cmdMode    = "mode"
	cmdEOI     = "eoi"
	cmdEOS     = "eos"
)

// Meta-command arguments.
const (
	modeController = 1 // "++mode 0" would put the adapter in device mode
	eoiEnable      = 1
	eosCRLF        = 0 // CR-LF end-of-string convention
)

// FormatCommand renders a controller meta-command: the "++" initiator, the
// keyword, the space-separated integer arguments if any, and the terminator.
// Meta-commands are never escaped.
func FormatCommand(keyword string, args ...int) []byte {
	buf := make([]byte, 0, len(commandInitiator)+len(keyword)+4*len(args)+len(Terminator))
	buf = append(buf, commandInitiator...)
	buf = append(buf, keyword...)
	for _, arg := range args {
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(arg), 10)
	}

	return append(buf, Terminator...)
}

// controllerCommand sends a meta-command to the controller on a best-effort
// basis. Failures are logged and reported only through the return value,
// which callers outside a device transaction ignore.
func (c *Controller) controllerCommand(keyword string, args ...int) bool {
	data := FormatCommand(keyword, args...)
	c.logger.Debug("controller command", "data", string(data))
	c.metrics.incControllerCommandCount()

	if err := c.ensureOpen(); err != nil {
		c.fault("controller command failed", err, "keyword", keyword)
		return false
	}

	if err := c.writeAll(data); err != nil {
		c.fault("controller command failed", err, "keyword", keyword)
		return false
	}

	return true
}
