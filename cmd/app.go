// Package cmd implements the CLI application to manage a ledger.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/ledger"
	"github.com/etnz/ledger/config"
	"github.com/etnz/ledger/mirror"
	"github.com/etnz/ledger/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "ingestion")
	c.Register(&consumeCmd{}, "ingestion")
	c.Register(&addCmd{}, "ingestion")

	c.Register(&positionCmd{}, "reports")
	c.Register(&txCmd{}, "reports")

	c.Register(&serveCmd{}, "services")

	c.Register(&topicCmd{}, "help")
}

// Commands lists every subcommand, for shell completion.
var Commands = []subcommands.Command{
	&importCmd{}, &consumeCmd{}, &addCmd{},
	&positionCmd{}, &txCmd{},
	&serveCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dbPath = flag.String("db", "", "Path to the SQLite ledger database. Defaults to $LEDGER_DB.")
var bucketDir = flag.String("bucket", "", "Directory holding the files to import. Defaults to $LEDGER_BUCKET.")

// loadConfig reads the environment, then applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}
	if *bucketDir != "" {
		cfg.Bucket = *bucketDir
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *zap.Logger {
	logger, err := cfg.Logger()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func decoder(cfg config.Config) ledger.Decoder {
	return ledger.Decoder{Delimiter: cfg.Delimiter, Strict: cfg.Strict}
}

// app holds the collaborators opened for a command.
type app struct {
	cfg    config.Config
	store  *store.Store
	loader *ledger.Loader
	close  []func()
}

// openApp opens the store and, when configured, the relational mirror.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %q: %w", cfg.Database, err)
	}
	a := &app{cfg: cfg, store: st, close: []func(){func() { st.Close() }}}
	a.loader = &ledger.Loader{Decoder: decoder(cfg), Store: st}
	if cfg.MirrorURL != "" {
		m, closeMirror, err := mirror.Connect(ctx, cfg.MirrorURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.loader.Mirror = m
		a.close = append(a.close, closeMirror)
	}
	return a, nil
}

// Close releases the collaborators, in reverse order.
func (a *app) Close() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}

// printMarkdown renders md for the terminal, or prints it raw if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
