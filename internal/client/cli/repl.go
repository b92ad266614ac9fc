package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authflow/internal/client/ui"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	screen() ui.Screen
	awaitingAnswer() bool
	answer(yes bool)
	quitting() bool
	hasMail() bool

	SignIn(ctx context.Context) error
	Google(ctx context.Context) error
	SignUp(ctx context.Context) error
	ForgotPassword(ctx context.Context) error

	ShowProfile(ctx context.Context) error
	Rename(ctx context.Context, name string) error
	SetPhoto(ctx context.Context, url string) error
	Logout(ctx context.Context) error

	Mail(ctx context.Context) error
	Verify(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, code string) error
}

func helpText(s ui.Screen, mail bool) string {
	var cmds []string
	switch s {
	case ui.ScreenLogin:
		cmds = append(cmds, "signin", "google", "signup", "forgot")
	case ui.ScreenProfile:
		cmds = append(cmds, "show", "name <new name>", "photo <url>", "logout")
	}
	if mail {
		cmds = append(cmds, "mail", "verify <code>", "reset <code>")
	}
	cmds = append(cmds, "exit")
	return "Available commands: " + strings.Join(cmds, ", ")
}

// runREPL reads commands from reader until EOF, exit/quit, or until the app
// asks to quit. While a confirmation popup is pending, the next line
// answers it instead of being run as a command.
//
// Errors returned by command handlers are ignored here; the handlers show
// popups or log for themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for !a.quitting() {
		if a.awaitingAnswer() {
			printlnFn("answer> ")
		} else {
			printlnFn(fmt.Sprintf("af %s> ", statusFn()))
		}
		line, err := readLine(reader)
		if err != nil {
			return
		}

		if a.awaitingAnswer() {
			a.answer(isYes(line))
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText(a.screen(), a.hasMail()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if a.hasMail() && runMailCommand(ctx, a, cmd, arg) {
			continue
		}

		switch a.screen() {
		case ui.ScreenLogin:
			runLoginCommand(ctx, a, cmd)
		case ui.ScreenProfile:
			runProfileCommand(ctx, a, cmd, arg)
		default:
			printlnFn("Not connected yet. Type exit to leave.")
		}
	}
}

func runMailCommand(ctx context.Context, a execIface, cmd, arg string) bool {
	switch cmd {
	case "mail":
		_ = a.Mail(ctx)
	case "verify", "reset":
		if arg == "" {
			printlnFn(fmt.Sprintf("Usage: %s <code>", cmd))
			return true
		}
		if cmd == "verify" {
			_ = a.Verify(ctx, arg)
		} else {
			_ = a.ResetPassword(ctx, arg)
		}
	default:
		return false
	}
	return true
}

func runLoginCommand(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "signin", "login":
		_ = a.SignIn(ctx)
	case "google":
		_ = a.Google(ctx)
	case "signup", "register":
		_ = a.SignUp(ctx)
	case "forgot":
		_ = a.ForgotPassword(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}

func runProfileCommand(ctx context.Context, a execIface, cmd, arg string) {
	switch cmd {
	case "show", "profile":
		_ = a.ShowProfile(ctx)
	case "name":
		if arg == "" {
			printlnFn("Usage: name <new name>")
			return
		}
		_ = a.Rename(ctx, arg)
	case "photo":
		_ = a.SetPhoto(ctx, arg)
	case "logout":
		_ = a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}
