package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/loggraph/config"
	"github.com/masmgr/loggraph/internal/cmderr"
	"github.com/masmgr/loggraph/internal/ctxlog"
	"github.com/masmgr/loggraph/internal/git"
	"github.com/masmgr/loggraph/internal/output"
)

// CommandContext holds common state for command execution.
type CommandContext struct {
	Config *config.Config
	// Store is nil when the command does not need a repository and none was found.
	Store  *git.Store
	UI     *output.UI
	Logger *log.Logger

	noPager bool
}

// NewCommandContext opens the repository, loads the configuration layers
// and applies the color mode. No history is read.
func NewCommandContext(c *cli.Context, needRepo bool) (*CommandContext, error) {
	logger := ctxlog.FromContext(c.Context)

	store, err := git.Open(c.String("repo"))
	if err != nil {
		if needRepo {
			return nil, cmderr.Wrap(cmderr.KindStore, err, "")
		}
		logger.Debug("no repository", "err", err)
		store = nil
	}

	opts := config.LoadOptions{
		Path:      c.String("config"),
		Overrides: c.StringSlice("config-toml"),
	}
	if store != nil {
		opts.RepoRoot = store.Path()
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, cmderr.Wrap(cmderr.KindConfig, err, "failed to load config")
	}
	logger.Debug("configuration loaded", "sources", cfg.Sources())

	if err := applyColor(c, cfg); err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:  cfg,
		Store:   store,
		UI:      uiFrom(c),
		Logger:  logger,
		noPager: c.Bool("no-pager"),
	}, nil
}

// applyColor sets the process color mode; --color wins over ui.color.
func applyColor(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("color") {
		mode, err := output.ParseColorMode(c.String("color"))
		if err != nil {
			return cmderr.Usage("%v", err)
		}
		output.ApplyColorMode(mode)
		return nil
	}
	s, err := cfg.ColorMode()
	if err != nil {
		return cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	mode, err := output.ParseColorMode(s)
	if err != nil {
		return cmderr.Wrap(cmderr.KindConfig, err, "ui.color")
	}
	output.ApplyColorMode(mode)
	return nil
}

// StartPager pipes stdout through ui.pager when stdout is a terminal and
// paging is allowed. A pager that fails to start is logged and skipped.
func (cc *CommandContext) StartPager() error {
	if cc.noPager || !cc.UI.StdoutIsTerminal() {
		return nil
	}
	mode, err := cc.Config.Paginate()
	if err != nil {
		return cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	if mode == "never" {
		return nil
	}
	command, err := cc.Config.Pager()
	if err != nil {
		return cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	if err := cc.UI.StartPager(command); err != nil {
		cc.Logger.Warn("pager not started", "err", err)
	}
	return nil
}

// Width returns ui.width, or the terminal width when it is unset.
func (cc *CommandContext) Width() (int, error) {
	w, ok, err := cc.Config.Width()
	if err != nil {
		return 0, cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	if ok {
		return w, nil
	}
	return cc.UI.TerminalWidth(), nil
}
