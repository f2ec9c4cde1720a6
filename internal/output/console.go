package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// UI owns the process output channels: the data sink (stdout, or the pager
// when one is running) and the message channel (stderr).
type UI struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	pager  *Pager
}

// NewUI returns a UI writing to the given streams.
func NewUI(stdout, stderr io.Writer) *UI {
	return &UI{stdout: stdout, stderr: stderr}
}

// Stdout returns the data sink.
func (u *UI) Stdout() io.Writer {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pager != nil {
		return u.pager
	}
	return u.stdout
}

// StdoutIsTerminal reports whether the underlying stdout is a terminal.
func (u *UI) StdoutIsTerminal() bool {
	return IsTerminal(u.stdout)
}

// TerminalWidth returns the width available on stdout.
func (u *UI) TerminalWidth() int {
	return TerminalWidth(u.stdout)
}

// Stderr returns the message channel.
func (u *UI) Stderr() io.Writer {
	return u.stderr
}

// Warnf writes a "Warning: " message to stderr.
func (u *UI) Warnf(format string, args ...any) {
	u.message(color.New(color.FgYellow, color.Bold), "Warning: ", format, args...)
}

// Errorf writes an "Error: " message to stderr.
func (u *UI) Errorf(format string, args ...any) {
	u.message(color.New(color.FgRed, color.Bold), "Error: ", format, args...)
}

// InternalErrorf writes an "Internal error: " message to stderr.
func (u *UI) InternalErrorf(format string, args ...any) {
	u.message(color.New(color.FgRed, color.Bold), "Internal error: ", format, args...)
}

func (u *UI) message(c *color.Color, prefix, format string, args ...any) {
	fmt.Fprintf(u.stderr, "%s%s\n", c.Sprint(prefix), fmt.Sprintf(format, args...))
}

// StartPager pipes the data sink through command. Only the first call
// starts a pager; later calls are no-ops.
func (u *UI) StartPager(command string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pager != nil {
		return nil
	}
	p, err := StartPager(command, u.stdout, u.stderr)
	if err != nil {
		return err
	}
	u.pager = p
	return nil
}

// Close waits for the pager, if any, to exit.
func (u *UI) Close() error {
	u.mu.Lock()
	p := u.pager
	u.pager = nil
	u.mu.Unlock()
	if p == nil {
		return nil
	}
	return p.Close()
}
