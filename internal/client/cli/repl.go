package cli

import (
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// lineSource yields input lines. *bufio.Scanner satisfies it.
type lineSource interface {
	Scan() bool
	Text() string
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Help(ctx context.Context) error
	GoTo(ctx context.Context, path string) error
	Back(ctx context.Context) error
	Home(ctx context.Context) error
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Reset(ctx context.Context) error
	Feed(ctx context.Context) error
	More(ctx context.Context) error
	Post(ctx context.Context) error
	Like(ctx context.Context, postID string) error
	Profile(ctx context.Context) error
	User(ctx context.Context, userID string) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	anonymousHelp = "Available commands: home, signup, login, forgot, verify, resend, reset, go <path>, back, whoami, exit"
	signedInHelp  = "Available commands: feed, more, post, like <id>, profile, user <id>, go <path>, back, whoami, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the gophsocial CLI.
//
// It reads a line from lines, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits when input ends, ctx is cancelled or the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers
// report their own failures through notifications.
func runREPL(ctx context.Context, a execIface, statusFn func() string, lines lineSource) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("gs> %s > ", statusFn()))
		if !lines.Scan() {
			return
		}
		parts := strings.Fields(lines.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			_ = a.Help(ctx)

		case "go":
			if len(args) != 1 {
				printlnFn("Usage: go <path>")
				continue
			}
			_ = a.GoTo(ctx, args[0])

		case "back":
			_ = a.Back(ctx)

		case "home":
			_ = a.Home(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "feed", "posts":
			_ = a.Feed(ctx)

		case "more":
			_ = a.More(ctx)

		case "post":
			_ = a.Post(ctx)

		case "like":
			if len(args) != 1 {
				printlnFn("Usage: like <post id>")
				continue
			}
			_ = a.Like(ctx, args[0])

		case "profile":
			_ = a.Profile(ctx)

		case "user":
			if len(args) != 1 {
				printlnFn("Usage: user <user id>")
				continue
			}
			_ = a.User(ctx, args[0])

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
