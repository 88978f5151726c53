package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flare/adapter"
	redisadapter "github.com/pithecene-io/flare/adapter/redis"
	"github.com/pithecene-io/flare/adapter/webhook"
	"github.com/pithecene-io/flare/cli/config"
	"github.com/pithecene-io/flare/cli/render"
	"github.com/pithecene-io/flare/iox"
	"github.com/pithecene-io/flare/log"
	"github.com/pithecene-io/flare/metrics"
	"github.com/pithecene-io/flare/report"
	"github.com/pithecene-io/flare/types"
	"github.com/pithecene-io/flare/wire"
)

// SendCommand returns the send command. Send decodes a record frame
// stream and publishes every record through the configured adapter.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Publish the records in a frame stream file through the configured adapter",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			ConfigFlag,
			FormatFlag,
			NoColorFlag,
			&cli.StringFlag{
				Name:  "source",
				Usage: "Override the source name from the config file",
			},
		},
		Action: sendAction,
	}
}

func sendAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("file required", 1)
	}
	path := c.Args().First()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	source := cfg.Source
	if s := c.String("source"); s != "" {
		source = s
	}
	if source == "" {
		source = "flare"
	}

	a, adapterName, err := buildAdapter(cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger := log.NewLogger(source, "send")
	collector := metrics.NewCollector(source, adapterName)
	rep := report.New(source, a, logger, collector)
	defer iox.DiscardClose(rep)

	if err := sendStream(c, rep, collector, path); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	stats := rep.Stats()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if err := r.Render(stats); err != nil {
		return err
	}

	if len(stats.PublishFailures) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// sendStream dispatches every record in the file. Publish failures are
// counted and do not stop the stream; framing errors do.
func sendStream(c *cli.Context, rep *report.Reporter, collector *metrics.Collector, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("record stream not found: %s", path)
		}
		return fmt.Errorf("cannot open record stream %q: %w", path, err)
	}
	defer iox.DiscardClose(f)

	dec := wire.NewFrameDecoder(f)
	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		frame, err := wire.DecodeRecordFrame(payload)
		if err != nil {
			collector.IncDecodeError()
			continue
		}
		record, err := frame.Record()
		if err != nil {
			collector.IncDecodeError()
			continue
		}

		// Publish failures are already counted by the reporter.
		switch rec := record.(type) {
		case *types.Failure:
			_ = rep.Failure(c.Context, rec)
		case *types.Message:
			_ = rep.Message(c.Context, rec)
		case *types.Report:
			_ = rep.Report(c.Context, rec)
		}
	}
}

// buildAdapter constructs the configured adapter. A missing or "none"
// adapter section selects log-only mode (nil adapter).
func buildAdapter(cfg *config.Config) (adapter.Adapter, string, error) {
	retries := -1
	if cfg.Adapter.Retries != nil {
		retries = *cfg.Adapter.Retries
	}

	switch cfg.Adapter.Type {
	case "", "none":
		return nil, "none", nil

	case "redis":
		rc := redisadapter.Config{
			URL:     cfg.Adapter.URL,
			Channel: cfg.Adapter.Channel,
			Timeout: cfg.Adapter.Timeout.Duration,
		}
		if retries >= 0 {
			rc.Retries = retries
		} else {
			rc.Retries = redisadapter.DefaultRetries
		}
		a, err := redisadapter.New(rc)
		if err != nil {
			return nil, "", err
		}
		return a, "redis", nil

	case "webhook":
		wc := webhook.Config{
			URL:     cfg.Adapter.URL,
			Headers: cfg.Adapter.Headers,
			Timeout: cfg.Adapter.Timeout.Duration,
		}
		if retries >= 0 {
			wc.Retries = retries
		} else {
			wc.Retries = webhook.DefaultRetries
		}
		a, err := webhook.New(wc)
		if err != nil {
			return nil, "", err
		}
		return a, "webhook", nil

	default:
		return nil, "", fmt.Errorf("unknown adapter type %q", cfg.Adapter.Type)
	}
}
