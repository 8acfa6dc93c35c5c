package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	out     io.Writer
	file    *os.File
	mu      sync.Mutex
	enabled bool

	counters = make(map[string]int)
)

// LogPath returns the debug log location, ~/.config/go-drumseq/debug.log
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drumseq", "debug.log"), nil
}

// Enable starts debug logging to LogPath, truncating any previous log.
func Enable() error {
	path, err := LogPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	mu.Lock()
	if enabled {
		mu.Unlock()
		f.Close()
		return nil
	}
	file = f
	mu.Unlock()

	EnableTo(f)
	return nil
}

// EnableTo sends debug output to w. Tests use it with a bytes.Buffer.
func EnableTo(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out = w
	enabled = true
	// can't call Log - we hold the mutex
	write("debug", "=== Debug logging started ===")
}

// Disable stops debug logging and closes the log file if one is open.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	out = nil
	enabled = false
	counters = make(map[string]int)
}

// Enabled reports whether Log currently writes anywhere.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || out == nil {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for per-step traffic)
func LogEvery(n int, category, format string, args ...any) {
	if n < 1 {
		n = 1
	}
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// write expects mu to be held.
func write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
	if file != nil && out == io.Writer(file) {
		file.Sync() // flush immediately so we see logs even on crash
	}
}
