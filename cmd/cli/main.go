package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dmitrijs2005/samplekeeper/internal/buildinfo"
	app "github.com/dmitrijs2005/samplekeeper/internal/client/cli"
	"github.com/dmitrijs2005/samplekeeper/internal/client/config"
)

// configFlags maps root flag names to the short flags config.LoadConfig
// understands.
var configFlags = []struct{ name, short string }{
	{"config", "-c"},
	{"api-url", "-a"},
	{"db", "-d"},
	{"timeout", "-t"},
	{"log-level", "-l"},
}

// openApp loads the configuration from the root flags and builds the app.
func openApp(ctx context.Context, cmd *cli.Command) (*app.App, error) {
	root := cmd.Root()

	var args []string
	for _, f := range configFlags {
		if root.IsSet(f.name) {
			args = append(args, f.short, root.String(f.name))
		}
	}

	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, err
	}
	return app.NewApp(ctx, cfg)
}

// oneShot runs a single app command after restoring the persisted session.
func oneShot(needAuth bool, run func(*app.App) func(context.Context, []string) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Start(ctx)
		signedIn := a.Session().IsAuthenticated()
		switch {
		case needAuth && !signedIn:
			return cli.Exit("not signed in, run 'samplekeeper login' first", 1)
		case !needAuth && signedIn && cmd.Name != "whoami":
			return cli.Exit("already signed in, run 'samplekeeper logout' first", 1)
		}
		return run(a)(ctx, cmd.Args().Slice())
	}
}

func console(ctx context.Context, cmd *cli.Command) error {
	buildinfo.PrintBuildData(os.Stdout)

	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "samplekeeper",
		Usage:  "administer biological sample records over the REST API",
		Action: console,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "JSON configuration file",
				Sources: cli.EnvVars("SAMPLEKEEPER_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Aliases: []string{"a"},
				Usage:   "base URL of the REST API",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "path of the local session database",
			},
			&cli.StringFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "request timeout in seconds",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "console",
				Usage:  "start the interactive console (default)",
				Action: console,
			},
			{
				Name:      "login",
				Usage:     "sign in and keep the session for later commands",
				ArgsUsage: "[username]",
				Action:    oneShot(false, func(a *app.App) func(context.Context, []string) error { return a.Login }),
			},
			{
				Name:   "register",
				Usage:  "create an account",
				Action: oneShot(false, func(a *app.App) func(context.Context, []string) error { return a.Register }),
			},
			{
				Name:      "verify-email",
				Usage:     "confirm an email address",
				ArgsUsage: "[token]",
				Action:    oneShot(false, func(a *app.App) func(context.Context, []string) error { return a.VerifyEmail }),
			},
			{
				Name:      "resend-verification",
				Usage:     "send a new verification email",
				ArgsUsage: "[email]",
				Action:    oneShot(false, func(a *app.App) func(context.Context, []string) error { return a.ResendVerification }),
			},
			{
				Name:      "forgot-password",
				Usage:     "request a password reset link",
				ArgsUsage: "[email]",
				Action:    oneShot(false, func(a *app.App) func(context.Context, []string) error { return a.ForgotPassword }),
			},
			{
				Name:      "reset-password",
				Usage:     "set a new password from a reset link",
				ArgsUsage: "[uid token]",
				Action:    oneShot(false, func(a *app.App) func(context.Context, []string) error { return a.ResetPassword }),
			},
			{
				Name:   "logout",
				Usage:  "end the persisted session",
				Action: oneShot(true, func(a *app.App) func(context.Context, []string) error { return a.Logout }),
			},
			{
				Name:   "whoami",
				Usage:  "show the signed-in user",
				Action: oneShot(false, func(a *app.App) func(context.Context, []string) error { return a.WhoAmI }),
			},
			{
				Name:      "list",
				Usage:     "list the records of one kind",
				ArgsUsage: "<kind>",
				Action:    oneShot(true, func(a *app.App) func(context.Context, []string) error { return a.Tab }),
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
