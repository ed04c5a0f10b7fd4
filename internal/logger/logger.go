// Package logger reports scan progress to stderr.
//
// Output is off by default; the CLI raises the level for --verbose
// (LevelInfo) and --debug (LevelDebug). Every line carries the time
// elapsed since the level was set, so long scans show where the time
// goes. Emission is serialized, so the scan worker pool can log
// without interleaving.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level selects how much progress output is emitted.
type Level int

const (
	// LevelOff suppresses all output.
	LevelOff Level = iota
	// LevelInfo reports scan progress.
	LevelInfo
	// LevelDebug additionally reports per-file decisions.
	LevelDebug
)

var (
	mu    sync.Mutex
	level = LevelOff
	out   io.Writer = os.Stderr
	epoch = time.Now()
)

// SetLevel sets the global level and resets the elapsed-time epoch.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	epoch = time.Now()
}

// SetOutput redirects log output; tests use this to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Enabled reports whether messages at l would be emitted.
func Enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return level >= l
}

// Info reports scan progress.
func Info(format string, args ...any) {
	emit(LevelInfo, "", format, args)
}

// Debug reports per-file detail such as skipped or unreadable files.
func Debug(format string, args ...any) {
	emit(LevelDebug, "debug: ", format, args)
}

func emit(min Level, tag, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if level < min {
		return
	}
	elapsed := time.Since(epoch).Round(time.Millisecond)
	fmt.Fprintf(out, "[%s] %s"+format+"\n", append([]any{elapsed, tag}, args...)...)
}
