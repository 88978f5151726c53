package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flare/cli/config"
	"github.com/pithecene-io/flare/types"
	"github.com/pithecene-io/flare/wire"
)

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	flags := ReadOnlyFlags()

	hasTUI := false
	for _, f := range flags {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}

	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

func TestBuildAdapter(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{"empty selects log-only", config.Config{}, "none", true, false},
		{"explicit none", config.Config{Adapter: config.AdapterConfig{Type: "none"}}, "none", true, false},
		{"redis", config.Config{Adapter: config.AdapterConfig{Type: "redis", URL: "redis://localhost:6379"}}, "redis", false, false},
		{"webhook", config.Config{Adapter: config.AdapterConfig{Type: "webhook", URL: "https://example.com"}}, "webhook", false, false},
		{"redis without URL", config.Config{Adapter: config.AdapterConfig{Type: "redis"}}, "", false, true},
		{"unknown type", config.Config{Adapter: config.AdapterConfig{Type: "kafka"}}, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, name, err := buildAdapter(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildAdapter error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.wantName {
				t.Errorf("adapter name = %q, want %q", name, tt.wantName)
			}
			if (a == nil) != tt.wantNil {
				t.Errorf("adapter nil = %v, want %v", a == nil, tt.wantNil)
			}
			if a != nil {
				_ = a.Close()
			}
		})
	}
}

// writeStreamFile builds a frame stream with one record of each kind.
func writeStreamFile(t *testing.T) string {
	t.Helper()

	event := types.EStructFromArguments("app.sync", "done", 0, "SyncDone", "synchronization finished")
	f, err := types.NewFailure(nil, event, types.Pair{Key: "exitCode", Value: 1})
	if err != nil {
		t.Fatalf("NewFailure failed: %v", err)
	}
	m, err := types.NewMessage(nil, event)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}
	rep, err := types.NewReport(nil, event)
	if err != nil {
		t.Fatalf("NewReport failed: %v", err)
	}

	var buf bytes.Buffer
	enc := wire.NewFrameEncoder(&buf)
	for _, frame := range []*wire.RecordFrame{
		wire.EncodeFailure(f), wire.EncodeMessage(m), wire.EncodeReport(rep),
	} {
		if err := enc.WriteRecordFrame(frame); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "records.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write stream file: %v", err)
	}
	return path
}

func testApp() *cli.App {
	return &cli.App{
		// Suppress the default handler so cli.Exit errors surface as
		// return values instead of terminating the test process.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			InspectCommand(),
			StatsCommand(),
			SendCommand(),
			VersionCommand("test"),
		},
	}
}

func TestInspectCommand_JSON(t *testing.T) {
	path := writeStreamFile(t)
	app := testApp()

	if err := app.Run([]string{"flare", "inspect", "--format", "json", path}); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
}

func TestInspectCommand_Full(t *testing.T) {
	path := writeStreamFile(t)
	app := testApp()

	if err := app.Run([]string{"flare", "inspect", "--format", "json", "--full", path}); err != nil {
		t.Fatalf("inspect --full failed: %v", err)
	}
}

func TestInspectCommand_MissingArg(t *testing.T) {
	app := testApp()
	err := app.Run([]string{"flare", "inspect"})
	if err == nil {
		t.Fatal("inspect without a file should fail")
	}
}

func TestInspectCommand_MissingFile(t *testing.T) {
	app := testApp()
	err := app.Run([]string{"flare", "inspect", "/nonexistent/records.bin"})
	if err == nil {
		t.Fatal("inspect of a missing file should fail")
	}
}

func TestStatsCommand_JSON(t *testing.T) {
	path := writeStreamFile(t)
	app := testApp()

	if err := app.Run([]string{"flare", "stats", "--format", "json", path}); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
}

func TestSendCommand_LogOnly(t *testing.T) {
	path := writeStreamFile(t)

	cfgPath := filepath.Join(t.TempDir(), "flare.yaml")
	cfg := "source: test-source\nadapter:\n  type: none\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	app := testApp()
	err := app.Run([]string{"flare", "send", "--config", cfgPath, "--format", "json", path})
	if err != nil {
		t.Fatalf("send in log-only mode failed: %v", err)
	}
}

func TestSendCommand_MissingConfig(t *testing.T) {
	path := writeStreamFile(t)
	app := testApp()

	err := app.Run([]string{"flare", "send", "--config", "/nonexistent/flare.yaml", path})
	if err == nil {
		t.Fatal("send with a missing config should fail")
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	app := testApp()
	if err := app.Run([]string{"flare", "version", "--format", "json"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
}

func TestVersionCommand_TUIRejected(t *testing.T) {
	app := testApp()
	err := app.Run([]string{"flare", "version", "--tui"})
	if err == nil {
		t.Fatal("version --tui should fail")
	}
}
