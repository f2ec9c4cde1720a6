package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/loggraph/config"
	"github.com/masmgr/loggraph/internal/cmderr"
	"github.com/masmgr/loggraph/internal/git"
	"github.com/masmgr/loggraph/internal/history"
	"github.com/masmgr/loggraph/internal/logview"
	"github.com/masmgr/loggraph/internal/output"
	"github.com/masmgr/loggraph/internal/templater"
)

// LogCmd creates the log command.
func LogCmd() *cli.Command {
	return &cli.Command{
		Name:         "log",
		Usage:        "Show the ancestors of a revision, newest first",
		Flags:        logFlags(),
		Action:       logAction,
		OnUsageError: usageError,
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Show at most this many entries",
		},
		&cli.IntFlag{
			Name:   "l",
			Usage:  "Deprecated shorthand for --limit",
			Hidden: true,
		},
		&cli.BoolFlag{
			Name:  "no-graph",
			Usage: "Show a flat list instead of a graph",
		},
		&cli.StringFlag{
			Name:    "template",
			Aliases: []string{"T"},
			Usage:   "Template or alias used for each entry",
		},
		&cli.StringFlag{
			Name:  "at",
			Usage: "Revision to start from",
			Value: "HEAD",
		},
		&cli.StringSliceFlag{
			Name:  "ref",
			Usage: "Also start from refs matching this glob (can be specified multiple times)",
		},
	}
}

// limitFlags reads --limit and -l. Using both is a usage error.
func limitFlags(c *cli.Context) (limit, deprecated *int, err error) {
	if c.IsSet("limit") {
		n := c.Int("limit")
		limit = &n
	}
	if c.IsSet("l") {
		n := c.Int("l")
		deprecated = &n
	}
	if limit != nil && deprecated != nil {
		return nil, nil, cmderr.Usage("--limit and -l cannot be used together")
	}
	for _, p := range []*int{limit, deprecated} {
		if p != nil && *p < 0 {
			return nil, nil, cmderr.Usage("--limit must not be negative: %d", *p)
		}
	}
	return limit, deprecated, nil
}

// optionalString returns the flag's value when it was given.
func optionalString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	s := c.String(name)
	return &s
}

func logAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return cmderr.Usage("unexpected argument %q", c.Args().First())
	}
	limit, deprecated, err := limitFlags(c)
	if err != nil {
		return err
	}

	cc, err := NewCommandContext(c, true)
	if err != nil {
		return err
	}
	cfg := cc.Config

	style, err := cfg.GraphStyle()
	if err != nil {
		return cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	sources, err := logview.ResolveSources(cfg, optionalString(c, "template"), style)
	if err != nil {
		return err
	}

	current, heads, err := resolveHeads(cc.Store, c.String("at"), c.StringSlice("ref"))
	if err != nil {
		return err
	}
	lang, err := newLanguage(cc.Store, cfg, current)
	if err != nil {
		return err
	}
	bindings, err := logview.CompileBindings(lang, sources)
	if err != nil {
		return err
	}

	width, err := cc.Width()
	if err != nil {
		return err
	}
	wrap, err := cfg.WordWrap()
	if err != nil {
		return cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	if err := cc.StartPager(); err != nil {
		return err
	}

	p := &logview.Pipeline{
		Templates: bindings,
		Format:    output.NewContentFormat(width, wrap),
		Style:     style,
		Warn:      cc.UI,
	}
	return p.Run(c.Context, cc.UI.Stdout(), cc.Store, heads, logview.Args{
		Limit:           limit,
		DeprecatedLimit: deprecated,
		NoGraph:         c.Bool("no-graph"),
	})
}

// resolveHeads returns the entry at rev followed by the tips of refs matching
// patterns. An unborn HEAD contributes no head.
func resolveHeads(store *git.Store, rev string, patterns []string) (history.ID, []history.ID, error) {
	var heads []history.ID
	current, err := store.Resolve(rev)
	switch {
	case errors.Is(err, git.ErrUnborn):
		current = ""
	case err != nil:
		return "", nil, cmderr.Wrap(cmderr.KindStore, err, "")
	default:
		heads = append(heads, current)
	}

	refHeads, err := store.Heads(patterns)
	if err != nil {
		return "", nil, cmderr.Usage("%v", err)
	}
	return current, append(heads, refHeads...), nil
}

func newLanguage(store *git.Store, cfg *config.Config, current history.ID) (*templater.Language, error) {
	labels, err := store.Labels()
	if err != nil {
		return nil, cmderr.Wrap(cmderr.KindStore, err, "")
	}
	aliases, err := cfg.TemplateAliases()
	if err != nil {
		return nil, cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	colors, err := cfg.Colors()
	if err != nil {
		return nil, cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	lang, err := templater.NewLanguage(templater.Options{
		Current: current,
		Refs:    labels,
		Aliases: aliases,
		Colors:  colors,
	})
	if err != nil {
		return nil, cmderr.Wrap(cmderr.KindConfig, err, "")
	}
	return lang, nil
}

