package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flare/cli/reader"
	"github.com/pithecene-io/flare/cli/render"
	"github.com/pithecene-io/flare/cli/tui"
)

// StatsCommand returns the stats command. Stats aggregates a record
// frame stream: totals by kind and protocol plus decode error counts.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show aggregate statistics for a frame stream file",
		ArgsUsage: "<file>",
		Flags:     ReadOnlyFlags(),
		Action:    statsAction,
	}
}

func statsAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("file required", 1)
	}
	path := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	_, stats, err := reader.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("tui") {
		return tui.RunStats(stats)
	}

	return r.Render(stats)
}
