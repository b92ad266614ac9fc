package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/authflow/internal/client/ui"
)

type confirmation struct {
	title     string
	onConfirm func()
	onCancel  func()
}

// Terminal is the presenter, navigator and loader of the CLI. It is safe
// for use from the router's goroutines.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	screen   ui.Screen
	pending  []confirmation
	onScreen func(ui.Screen)

	loader ui.CountingLoader
}

func NewTerminal(out io.Writer) *Terminal {
	t := &Terminal{out: out}
	t.loader.OnChange = func(visible bool) {
		if visible {
			t.println("(working...)")
		}
	}
	return t
}

// OnScreen registers fn to run after every screen change.
func (t *Terminal) OnScreen(fn func(ui.Screen)) {
	t.mu.Lock()
	t.onScreen = fn
	t.mu.Unlock()
}

type terminalWriter struct{ t *Terminal }

func (w terminalWriter) Write(p []byte) (int, error) {
	w.t.mu.Lock()
	defer w.t.mu.Unlock()
	return w.t.out.Write(p)
}

// Writer returns an io.Writer whose writes do not interleave with popups.
func (t *Terminal) Writer() io.Writer { return terminalWriter{t} }

func (t *Terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

func formatPopup(kind ui.PopupKind, title, msg string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] %s\n", kind, title)
	for _, line := range strings.Split(msg, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (t *Terminal) ShowInfo(title, msg string)    { t.println(formatPopup(ui.PopupInfo, title, msg)) }
func (t *Terminal) ShowWarning(title, msg string) { t.println(formatPopup(ui.PopupWarning, title, msg)) }
func (t *Terminal) ShowError(title, msg string)   { t.println(formatPopup(ui.PopupError, title, msg)) }

// ShowConfirmation prints the popup and queues it; Answer resolves the
// oldest queued popup.
func (t *Terminal) ShowConfirmation(kind ui.PopupKind, title, msg string, onConfirm, onCancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, formatPopup(kind, title, msg))
	fmt.Fprintln(t.out, "  [y]es / [n]o")
	t.pending = append(t.pending, confirmation{title: title, onConfirm: onConfirm, onCancel: onCancel})
}

// Pending reports whether a confirmation awaits an answer.
func (t *Terminal) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// Answer resolves the oldest confirmation. Callbacks run on the caller's
// goroutine, outside the terminal lock. It returns false when nothing was
// pending.
func (t *Terminal) Answer(yes bool) bool {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return false
	}
	c := t.pending[0]
	t.pending = t.pending[1:]
	t.mu.Unlock()

	cb := c.onCancel
	if yes {
		cb = c.onConfirm
	}
	if cb != nil {
		cb()
	}
	return true
}

func (t *Terminal) ActiveScreen() ui.Screen {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen
}

func (t *Terminal) LoadScreen(s ui.Screen) {
	t.mu.Lock()
	t.screen = s
	hook := t.onScreen
	fmt.Fprintf(t.out, "\n== %s ==\n", s)
	t.mu.Unlock()

	if hook != nil {
		hook(s)
	}
}

func (t *Terminal) Show() { t.loader.Show() }
func (t *Terminal) Hide() { t.loader.Hide() }

// Busy reports whether the loader is visible.
func (t *Terminal) Busy() bool { return t.loader.Visible() }
