// Package ui defines what the client core asks of the presentation layer.
package ui

import "sync"

// Screen identifies a top-level view.
type Screen string

const (
	ScreenNone    Screen = ""
	ScreenLogin   Screen = "Login"
	ScreenProfile Screen = "Profile"
)

type PopupKind int

const (
	PopupInfo PopupKind = iota
	PopupWarning
	PopupError
)

func (k PopupKind) String() string {
	switch k {
	case PopupWarning:
		return "warning"
	case PopupError:
		return "error"
	}
	return "info"
}

// Presenter shows popups. Callbacks may be nil.
type Presenter interface {
	ShowInfo(title, msg string)
	ShowWarning(title, msg string)
	ShowError(title, msg string)
	ShowConfirmation(kind PopupKind, title, msg string, onConfirm, onCancel func())
}

type Navigator interface {
	ActiveScreen() Screen
	LoadScreen(s Screen)
}

// Loader is a busy indicator.
type Loader interface {
	Show()
	Hide()
}

// NavigateIfNeeded loads s unless it is already active.
func NavigateIfNeeded(n Navigator, s Screen) bool {
	if n.ActiveScreen() == s {
		return false
	}
	n.LoadScreen(s)
	return true
}

// CountingLoader is a reference-counted Loader: it is visible while
// Show calls outnumber Hide calls. OnChange, if set, is called on every
// visibility flip.
type CountingLoader struct {
	mu       sync.Mutex
	depth    int
	OnChange func(visible bool)
}

func (l *CountingLoader) Show() {
	l.mu.Lock()
	l.depth++
	flip := l.depth == 1
	l.mu.Unlock()
	if flip && l.OnChange != nil {
		l.OnChange(true)
	}
}

func (l *CountingLoader) Hide() {
	l.mu.Lock()
	if l.depth == 0 {
		l.mu.Unlock()
		return
	}
	l.depth--
	flip := l.depth == 0
	l.mu.Unlock()
	if flip && l.OnChange != nil {
		l.OnChange(false)
	}
}

func (l *CountingLoader) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.depth > 0
}
