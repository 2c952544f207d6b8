package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Add(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Overdue(ctx context.Context) error
	Stats(ctx context.Context) error
	Toggle(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	SetPriority(ctx context.Context, args []string) error
	SetDue(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	ClearCompleted(ctx context.Context) error
	Move(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Export(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, (l)ist, search, overdue, stats, exit"
	helpLoggedIn  = "Available commands: add, (l)ist [all|active|completed], search <text>, overdue, stats,\n" +
		"  toggle <n>, edit <n> [text], priority <n> <low|medium|high>, due <n> <YYYY-MM-DD|none>,\n" +
		"  delete <n>, clear, move <from> <to>, sync, export [file], logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Browsing the cached list works without a session; commands that change
// tasks or talk to the server need one.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("todo %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if needsSession(cmd) && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}
		report(dispatch(ctx, a, cmd, args))
	}
}

func needsSession(cmd string) bool {
	switch cmd {
	case "logout", "add", "toggle", "edit", "priority", "due", "delete", "clear", "move", "sync", "export":
		return true
	}
	return false
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "add":
		return a.Add(ctx, args)
	case "l", "list":
		return a.List(ctx, args)
	case "search":
		return a.Search(ctx, args)
	case "overdue":
		return a.Overdue(ctx)
	case "stats":
		return a.Stats(ctx)
	case "toggle":
		return a.Toggle(ctx, args)
	case "edit":
		return a.Edit(ctx, args)
	case "priority":
		return a.SetPriority(ctx, args)
	case "due":
		return a.SetDue(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "clear":
		return a.ClearCompleted(ctx)
	case "move":
		return a.Move(ctx, args)
	case "sync":
		return a.Sync(ctx)
	case "export":
		return a.Export(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

// report prints a single error line for a failed command.
func report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Error: server unavailable, try 'sync' later")
	case errors.Is(err, client.ErrUnauthorized):
		printlnFn("Error: not authorized, please login again")
	default:
		printlnFn("Error:", err)
	}
}
