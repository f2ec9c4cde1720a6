package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/loggraph/internal/buildinfo"
	"github.com/masmgr/loggraph/internal/cmderr"
	"github.com/masmgr/loggraph/internal/ctxlog"
	"github.com/masmgr/loggraph/internal/output"
)

const uiKey = "ui"

func init() {
	// -v is --verbose here.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

// App creates the CLI application. Running it without a command behaves like "log".
func App() *cli.App {
	return &cli.App{
		Name:                 "loggraph",
		Usage:                "Show repository history as a list or a graph",
		Version:              buildinfo.String(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LogCmd(),
			ConfigCmd(),
		},
		Flags:          append(globalFlags(), logFlags()...),
		Before:         setup,
		Action:         logAction,
		OnUsageError:   usageError,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// globalFlags are accepted before any command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"R"},
			Usage:   "Path to the repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to an additional configuration file",
		},
		&cli.StringSliceFlag{
			Name:  "config-toml",
			Usage: "Inline TOML applied on top of all configuration files (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "color",
			Usage: "When to colorize output (always, never, auto)",
		},
		&cli.BoolFlag{
			Name:  "no-pager",
			Usage: "Disable the pager",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// setup installs the logger on the command context.
func setup(c *cli.Context) error {
	level := log.WarnLevel
	if c.Bool("verbose") {
		level = log.DebugLevel
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	c.Context = ctxlog.WithLogger(ctx, ctxlog.New(c.App.ErrWriter, level))
	return nil
}

func usageError(_ *cli.Context, err error, _ bool) error {
	return cmderr.Usage("%v", err)
}

// uiFrom returns the UI installed by run, or one bound to the app's writers.
func uiFrom(c *cli.Context) *output.UI {
	if ui, ok := c.App.Metadata[uiKey].(*output.UI); ok {
		return ui
	}
	ui := output.NewUI(c.App.Writer, c.App.ErrWriter)
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[uiKey] = ui
	return ui
}

// Run executes the CLI application and exits with its status.
func Run() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ui := output.NewUI(stdout, stderr)
	app := App()
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Metadata = map[string]any{uiKey: ui}

	err := app.RunContext(ctx, args)
	if closeErr := ui.Close(); closeErr != nil {
		ctxlog.FromContext(ctx).Debug("pager exited", "err", closeErr)
	}
	// The reader quit the pager before reading everything.
	if errors.Is(err, syscall.EPIPE) {
		return 0
	}
	if err != nil {
		if cmderr.IsInternal(err) {
			ui.InternalErrorf("%v", err)
		} else {
			ui.Errorf("%v", err)
		}
	}
	return cmderr.ExitCode(err)
}
