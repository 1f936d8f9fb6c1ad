package logger

import "os"

var defLogger = NewSlog(os.Stdout, InfoLevel, false)

// GetLogger returns the package default logger, used by components that were
// not given a logger explicitly.
func GetLogger() Logger {
	return defLogger
}
