// Package warn emits non-fatal warnings to a process-wide sink. Warnings
// never alter control flow; callers that need to fail return errors
// instead.
package warn

import (
	"fmt"
	"os"
	"sync"
)

// Sink receives formatted warning lines.
type Sink func(msg string)

var (
	mu   sync.Mutex
	sink Sink = func(msg string) {
		fmt.Fprintln(os.Stderr, "WARNING: "+msg)
	}
)

// SetSink replaces the process-wide sink and returns the previous one.
// Tests use this to capture warnings.
func SetSink(s Sink) Sink {
	mu.Lock()
	defer mu.Unlock()
	prev := sink
	sink = s
	return prev
}

// Warnf emits a general warning.
func Warnf(format string, args ...any) {
	emit(fmt.Sprintf(format, args...))
}

// Deprecationf emits a deprecation warning. Deprecated inputs keep
// working; the warning is the only signal.
func Deprecationf(format string, args ...any) {
	emit("deprecated: " + fmt.Sprintf(format, args...))
}

func emit(msg string) {
	mu.Lock()
	s := sink
	mu.Unlock()
	s(msg)
}

// Capture routes warnings into a slice for the duration of fn and restores
// the previous sink afterwards.
func Capture(fn func()) []string {
	var (
		cmu  sync.Mutex
		msgs []string
	)
	prev := SetSink(func(msg string) {
		cmu.Lock()
		msgs = append(msgs, msg)
		cmu.Unlock()
	})
	defer SetSink(prev)
	fn()
	return msgs
}
