package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flare/cli/reader"
	"github.com/pithecene-io/flare/cli/render"
	"github.com/pithecene-io/flare/cli/tui"
)

// InspectCommand returns the inspect command. Inspect decodes a record
// frame stream and renders the records it contains.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect the records in a frame stream file",
		ArgsUsage: "<file>",
		Flags: append(ReadOnlyFlags(),
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Render full records instead of one-line summaries",
			},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("file required", 1)
	}
	path := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	views, _, err := reader.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("tui") {
		return tui.RunBrowser(views)
	}

	if c.Bool("full") {
		return r.Render(views)
	}

	summaries := make([]reader.RecordSummary, 0, len(views))
	for _, v := range views {
		summaries = append(summaries, v.Summary())
	}
	return r.Render(summaries)
}
