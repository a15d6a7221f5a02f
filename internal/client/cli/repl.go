package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/dashboard"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var errUnknownCommand = errors.New("unknown command")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Public(ctx context.Context, args []string) error
	// Exec runs a dashboard command; errUnknownCommand if there is none.
	Exec(ctx context.Context, cmd string, args []string) error
}

const loggedOutHelp = `Available commands:
  login              log in
  public <token|url> open a public share link
  exit | quit        leave the program`

const loggedInHelp = `Available commands:
  ls                      show the current folder
  cd <id|/|..>            open a folder
  back                    go to the parent folder
  next | prev | page <n>  page through files
  tree                    show all folders
  search [query]          search files (no query: back to folder view)
  fsearch <query>         search folders
  mkdir <name>            create a folder here
  rmdir <id> [-r]         delete a folder (-r: with contents)
  renamedir <id> <name>   rename a folder
  mvdir <id> <target|/>   move a folder
  folder <id>             folder details
  upload <path>           upload a local file here
  info <id>               file details
  rename <id> <name>      rename a file
  mv <id> <target|/>      move a file
  rm <id>                 delete a file
  purge <id>              delete a file permanently
  share <id>              create a public link
  unshare <id>            revoke the public link
  download <id>           download a file
  select <id>...          toggle files in the selection
  selectpage | selectall  select this page | every file in the folder
  clear | selected        clear | show the selection
  bulkrm                  delete the selection
  bulkmv <target|/>       move the selection
  storage                 show storage usage
  whoami                  show the current user
  public <token|url>      open a public share link
  logout                  log out
  exit | quit             leave the program`

// runREPL starts a simple read–eval–print loop for the valetkey CLI.
//
// It reads a line from the provided reader, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on EOF or when
// the user types "exit" or "quit". Handler errors are printed as a single
// "error: ..." line and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("valetkey %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(loggedInHelp)
			} else {
				printlnFn(loggedOutHelp)
			}

		case "login":
			if a.isLoggedIn() {
				printlnFn("Already logged in; logout first")
				continue
			}
			report(a.Login(ctx))

		case "logout":
			if !a.isLoggedIn() {
				printlnFn("Not logged in")
				continue
			}
			report(a.Logout(ctx))

		case "public":
			report(a.Public(ctx, args))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if !a.isLoggedIn() {
				printlnFn("Unknown command:", cmd, "(type 'help'; login first)")
				continue
			}
			if err := a.Exec(ctx, cmd, args); errors.Is(err, errUnknownCommand) {
				printlnFn("Unknown command:", cmd)
			} else {
				report(err)
			}
		}
	}
}

// report prints a failed command as one line.
func report(err error) {
	if err == nil {
		return
	}
	printlnFn("error:", errorText(err))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrCancelled):
		return "cancelled"
	case errors.Is(err, client.ErrNetwork):
		return "cannot reach the server: " + client.Message(err)
	case errors.Is(err, client.ErrAuthRequired):
		var ae *client.APIError
		if errors.As(err, &ae) && ae.Message != "" {
			return ae.Message
		}
		return "session expired, please log in again"
	default:
		return client.Message(err)
	}
}

type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }
