package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/server"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	port    string
	consume bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the ledger over HTTP" }
func (*serveCmd) Usage() string {
	return `ldg serve [-port <port>] [-consume]

  Serves positions and transactions over HTTP. With -consume, also loads the
  kafka topic into the ledger.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Port to listen on. Defaults to $PORT.")
	f.BoolVar(&c.consume, "consume", false, "consume the kafka topic in the background")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()
	logger := newLogger(a.cfg)
	defer logger.Sync()

	port := c.port
	if port == "" {
		port = a.cfg.Port
	}

	if c.consume {
		if !a.cfg.Kafka() {
			return fail("Error: -consume requires KAFKA_BROKERS")
		}
		go func() {
			if err := runConsumer(ctx, a, logger); err != nil {
				logger.Error("consumer", zap.Error(err))
				cancel()
			}
		}()
	}

	s := server.NewServer(ledger.NewResolver(a.store), a.loader, logger, a.cfg.CORSOrigin, a.cfg.Currency)
	srv := &http.Server{Addr: ":" + port, Handler: s.R}
	errc := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fail("Error serving: %v", err)
	case <-ctx.Done():
	}

	// graceful shutdown
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	_ = srv.Shutdown(ctxShut)
	logger.Info("shutdown complete")
	return subcommands.ExitSuccess
}
