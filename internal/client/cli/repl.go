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
	RemoteLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Upload(ctx context.Context) error
	List(ctx context.Context) error
	Play(ctx context.Context, id string) error
	Stop(ctx context.Context) error
	Catalog(ctx context.Context) error
	Posters(ctx context.Context, refresh bool) error
	Remote(ctx context.Context, args []string) error
}

const (
	helpGuest    = "Available commands: register, login, remote-login, catalog, posters [refresh], api, exit"
	helpLoggedIn = "Available commands: whoami, upload, (l)ist, play <id>, stop, catalog, posters [refresh], api, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the Jara CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Prompts issued by the commands read from the
// same reader. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help               show available commands
//	  - catalog            show the shuffled catalog
//	  - posters [refresh]  show (or rediscover) the poster pool
//	  - api <sub> ...      call the remote creator/payments API
//	  - exit | quit        leave the program
//
//	Not logged in:
//	  - register           create a local account
//	  - login              sign in locally
//	  - remote-login       sign in against the remote API
//
//	Logged in:
//	  - whoami             show the current user
//	  - upload             store a video locally
//	  - list               list stored videos
//	  - play <id>          serve a stored video over loopback HTTP
//	  - stop               revoke the URLs of the playing video
//	  - logout             sign out
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("jara> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "remote-login":
			cmdErr = a.RemoteLogin(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "upload":
			cmdErr = a.Upload(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "play":
			if len(args) == 0 {
				printlnFn("Usage: play <id>")
				continue
			}
			cmdErr = a.Play(ctx, args[0])

		case "stop":
			cmdErr = a.Stop(ctx)

		case "catalog":
			cmdErr = a.Catalog(ctx)

		case "posters":
			cmdErr = a.Posters(ctx, len(args) > 0 && args[0] == "refresh")

		case "api":
			cmdErr = a.Remote(ctx, args)

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
