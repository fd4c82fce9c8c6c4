package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Token(ctx context.Context, refresh bool) error
	Verify(ctx context.Context) error
	Reload(ctx context.Context) error
	SelectDate(ctx context.Context, arg string) error
	Dreams(ctx context.Context) error
	Month(ctx context.Context, arg string) error
	AddDream(ctx context.Context) error
	Image(ctx context.Context, id string) error
	Subscriptions(ctx context.Context) error
	SetSubscriptions(ctx context.Context, args []string) error
	RegisterPushToken(ctx context.Context, token string) error
	Intro(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: register, login, reset, intro, exit"
	helpSignedIn  = "Available commands: whoami, date [today|+N|-N|YYYYMMDD], (d)reams, month [YYYY-MM], add, " +
		"image <id>, subs, setsubs <daily on|off> <interpretation on|off>, fcm <token>, " +
		"token [refresh], verify, reload, intro, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the dreamteller CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that need a signed-in user are
// refused before dispatch. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("dt> %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsLogin(cmd) && !a.isLoggedIn() {
			printlnFn("Please login first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "intro":
			_ = a.Intro(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "token":
			_ = a.Token(ctx, len(args) > 0 && args[0] == "refresh")

		case "verify":
			_ = a.Verify(ctx)

		case "reload":
			_ = a.Reload(ctx)

		case "date":
			_ = a.SelectDate(ctx, firstArg(args))

		case "d", "dreams":
			_ = a.Dreams(ctx)

		case "month":
			_ = a.Month(ctx, firstArg(args))

		case "add":
			_ = a.AddDream(ctx)

		case "image":
			_ = a.Image(ctx, firstArg(args))

		case "subs":
			_ = a.Subscriptions(ctx)

		case "setsubs":
			_ = a.SetSubscriptions(ctx, args)

		case "fcm":
			_ = a.RegisterPushToken(ctx, firstArg(args))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

func needsLogin(cmd string) bool {
	switch cmd {
	case "logout", "whoami", "token", "verify", "reload", "date", "d", "dreams",
		"month", "add", "image", "subs", "setsubs", "fcm":
		return true
	}
	return false
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
