package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/loggraph/config"
	"github.com/masmgr/loggraph/internal/cmderr"
)

// ConfigCmd creates the config command.
func ConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the merged configuration",
		Subcommands: []*cli.Command{
			{
				Name:         "get",
				Usage:        "Print the value of one key",
				ArgsUsage:    "KEY",
				Action:       configGetAction,
				OnUsageError: usageError,
			},
			{
				Name:         "list",
				Usage:        "Print every key and its value",
				Action:       configListAction,
				OnUsageError: usageError,
			},
		},
	}
}

func configGetAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cmderr.Usage("config get takes exactly one key")
	}
	key := c.Args().First()
	cc, err := NewCommandContext(c, false)
	if err != nil {
		return err
	}
	v, ok := cc.Config.Get(key)
	if !ok {
		return cmderr.Config("config key %q not found", key)
	}
	out := cc.UI.Stdout()
	if s, isString := v.(string); isString {
		_, err = fmt.Fprintln(out, s)
	} else {
		_, err = fmt.Fprintln(out, config.FormatValue(v))
	}
	return cmderr.Wrap(cmderr.KindIO, err, "write output")
}

func configListAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return cmderr.Usage("config list takes no arguments")
	}
	cc, err := NewCommandContext(c, false)
	if err != nil {
		return err
	}
	out := cc.UI.Stdout()
	for _, key := range cc.Config.Keys() {
		v, _ := cc.Config.Get(key)
		if _, err := fmt.Fprintf(out, "%s = %s\n", key, config.FormatValue(v)); err != nil {
			return cmderr.Wrap(cmderr.KindIO, err, "write output")
		}
	}
	return nil
}
