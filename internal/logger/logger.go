// Package logger is the process-wide log for the glaximini server.
//
// Errors are always written. Everything else is written only in verbose mode,
// which is toggled by --verbose, the [log] section of the config file, or a
// config reload while the server runs.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the destination of all log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs protocol level detail: individual messages, ignored commands.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] ", format, args...)
}

// Info logs lifecycle events such as joins, saves and evictions.
func Info(format string, args ...any) {
	write(false, "[INFO] ", format, args...)
}

// Warn logs recoverable failures, e.g. a broadcast to one dead connection.
func Warn(format string, args ...any) {
	write(false, "[WARN] ", format, args...)
}

// Error logs failures that lose data or stop a component. Always written.
func Error(format string, args ...any) {
	write(true, "[ERROR] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// write holds the exclusive lock so concurrent lines never interleave.
func write(always bool, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}
