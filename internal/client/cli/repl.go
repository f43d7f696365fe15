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
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	List(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Show(ctx context.Context, id string) error
	Download(ctx context.Context, id, dest string) error
	Describe(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// usage lists the arguments of commands that take them.
var usage = map[string]string{
	"upload":   "upload <path>",
	"show":     "show <id>",
	"download": "download <id> <dest>",
	"describe": "describe <id>",
	"delete":   "delete <id>",
}

var needsLogin = map[string]bool{
	"me": true, "l": true, "list": true, "upload": true, "show": true,
	"download": true, "describe": true, "delete": true, "logout": true,
}

// runREPL reads commands from in until EOF or "exit"/"quit" and dispatches
// them to a. Errors from handlers are printed and the loop goes on.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, me, (l)ist, upload <path>, show <id>,
//	               download <id> <dest>, describe <id>, delete <id>, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mv %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsLogin[cmd] && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, (l)ist, upload <path>, show <id>, download <id> <dest>, describe <id>, delete <id>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "me":
			cmdErr = a.Me(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "upload", "show", "describe", "delete":
			if len(args) != 1 {
				printlnFn("Usage:", usage[cmd])
				continue
			}
			switch cmd {
			case "upload":
				cmdErr = a.Upload(ctx, args[0])
			case "show":
				cmdErr = a.Show(ctx, args[0])
			case "describe":
				cmdErr = a.Describe(ctx, args[0])
			case "delete":
				cmdErr = a.Delete(ctx, args[0])
			}

		case "download":
			if len(args) != 2 {
				printlnFn("Usage:", usage[cmd])
				continue
			}
			cmdErr = a.Download(ctx, args[0], args[1])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}
	}
}
