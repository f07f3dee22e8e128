// Package output writes fastymd's user-facing messages: results, verbose
// detail, warnings and a TTY-only progress line.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Print per-file detail; disables the progress line
	Writer    io.Writer // Results and info (default: os.Stdout)
	ErrWriter io.Writer // Warnings and errors (default: os.Stderr)
	IsTTY     bool      // Writer is a terminal
}

// Output routes messages to stdout or stderr and owns the progress line.
type Output struct {
	config Config

	mu       sync.Mutex
	progress *progress // nil unless a progress session is showing
}

// progress is an in-place "\r" line on a terminal.
type progress struct {
	total int
	width int // length of the last line drawn
}

// New creates an Output, defaulting nil writers to the process streams.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{config: config}
}

// DefaultConfig writes to the process streams and detects whether stdout
// is a terminal.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if o.config.Verbose {
		o.print(o.config.Writer, "", format, args...)
	}
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...interface{}) {
	o.print(o.config.Writer, "", format, args...)
}

// Warning prints a warning to stderr.
func (o *Output) Warning(format string, args ...interface{}) {
	o.print(o.config.ErrWriter, "Warning: ", format, args...)
}

// Error prints an error to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.print(o.config.ErrWriter, "Error: ", format, args...)
}

// Result prints a data line to stdout. Results are never interleaved with
// progress, so the progress line is left alone.
func (o *Output) Result(format string, args ...interface{}) {
	fmt.Fprint(o.config.Writer, line("", format, args...))
}

func (o *Output) print(w io.Writer, prefix, format string, args ...interface{}) {
	o.mu.Lock()
	o.clear()
	o.mu.Unlock()
	fmt.Fprint(w, line(prefix, format, args...))
}

func line(prefix, format string, args ...interface{}) string {
	msg := prefix + fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}

// clear blanks the progress line. The next update redraws it. Callers hold mu.
func (o *Output) clear() {
	if o.progress == nil || o.progress.width == 0 {
		return
	}
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.progress.width)+"\r")
	o.progress.width = 0
}

func (o *Output) showsProgress() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress session over total items. Nothing is
// drawn off a terminal or in verbose mode.
func (o *Output) StartProgress(total int) {
	if !o.showsProgress() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = &progress{total: total}
}

// UpdateProgress redraws the progress line as "<label> current/total...",
// with "Converting file" as the default label.
func (o *Output) UpdateProgress(current int, label string) {
	if !o.showsProgress() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress == nil {
		return
	}
	if label == "" {
		label = "Converting file"
	}
	text := fmt.Sprintf("%s %d/%d...", label, current, o.progress.total)
	fmt.Fprint(o.config.Writer, "\r"+text)
	o.progress.width = max(o.progress.width, len(text))
}

// EndProgress clears the progress line and ends the session.
func (o *Output) EndProgress() {
	if !o.showsProgress() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clear()
	o.progress = nil
}
