package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. The real App
// type satisfies it; tests provide a lightweight stub.
type execIface interface {
	isAuthenticated() bool

	Login(ctx context.Context, args []string) error
	Register(ctx context.Context, args []string) error
	VerifyEmail(ctx context.Context, args []string) error
	ResendVerification(ctx context.Context, args []string) error
	ForgotPassword(ctx context.Context, args []string) error
	ResetPassword(ctx context.Context, args []string) error

	WhoAmI(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Tabs(ctx context.Context, args []string) error
	Tab(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	New(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Reload(ctx context.Context, args []string) error
	Options(ctx context.Context, args []string) error
}

const (
	helpAnonymous = `Available commands:
  login [username]              sign in
  register                      create an account
  verify-email [token]          confirm an email address
  resend-verification [email]   send a new verification email
  forgot-password [email]       request a password reset link
  reset-password [uid token]    set a new password from a reset link
  exit | quit`

	helpAuthenticated = `Available commands:
  tabs                          list entity kinds with their counts
  tab <kind>                    switch the active kind
  (l)ist                        list records of the active kind
  search [term]                 filter the active kind (no term clears)
  show <id>                     show one record
  new                           create a record
  edit <id>                     edit a record
  delete <id>                   delete a record
  options <kind>                list the choices a select field offers
  reload                        fetch every kind again
  whoami                        show the signed-in user
  logout                        sign out
  exit | quit`
)

// runREPL reads commands line by line from reader and dispatches them to
// a. Auth commands are only offered while signed out and console commands
// only while signed in. The loop exits on EOF or "exit"/"quit".
//
// Handlers report their own failures; errors they return are not printed
// here, except that an input error ends the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if s := statusFn(); s != "" {
			fmt.Fprintf(w, "sk (%s)> ", s)
		} else {
			fmt.Fprint(w, "sk> ")
		}

		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}
		if cmd == "help" {
			if a.isAuthenticated() {
				fmt.Fprintln(w, helpAuthenticated)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}
			continue
		}

		var run func(context.Context, []string) error
		if a.isAuthenticated() {
			run = authenticatedCommand(a, cmd)
			if run == nil && anonymousCommand(a, cmd) != nil {
				fmt.Fprintln(w, "Already signed in. Use 'logout' first.")
				continue
			}
		} else {
			run = anonymousCommand(a, cmd)
			if run == nil && authenticatedCommand(a, cmd) != nil {
				fmt.Fprintln(w, "Please log in first (type 'login').")
				continue
			}
		}
		if run == nil {
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}

		if err := run(ctx, args); err != nil && isInputClosed(err) {
			fmt.Fprintln(w)
			return
		}
	}
}

func anonymousCommand(a execIface, cmd string) func(context.Context, []string) error {
	switch cmd {
	case "login":
		return a.Login
	case "register":
		return a.Register
	case "verify-email":
		return a.VerifyEmail
	case "resend-verification":
		return a.ResendVerification
	case "forgot-password":
		return a.ForgotPassword
	case "reset-password":
		return a.ResetPassword
	}
	return nil
}

func authenticatedCommand(a execIface, cmd string) func(context.Context, []string) error {
	switch cmd {
	case "tabs":
		return a.Tabs
	case "tab":
		return a.Tab
	case "l", "list":
		return a.List
	case "search":
		return a.Search
	case "show":
		return a.Show
	case "new":
		return a.New
	case "edit":
		return a.Edit
	case "delete":
		return a.Delete
	case "options":
		return a.Options
	case "reload":
		return a.Reload
	case "whoami":
		return a.WhoAmI
	case "logout":
		return a.Logout
	}
	return nil
}
