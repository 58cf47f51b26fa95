package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/ledger/queue"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type consumeCmd struct {
	ensure bool
}

func (*consumeCmd) Name() string     { return "consume" }
func (*consumeCmd) Synopsis() string { return "load transaction lines from kafka into the ledger" }
func (*consumeCmd) Usage() string {
	return `ldg consume [-ensure-topic]

  Consumes the kafka topic and stores every line in the ledger, until
  interrupted.
`
}

func (c *consumeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.ensure, "ensure-topic", false, "create the topic if it does not exist")
}

func (c *consumeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()
	if !a.cfg.Kafka() {
		return fail("Error: KAFKA_BROKERS is not set")
	}

	logger := newLogger(a.cfg)
	defer logger.Sync()
	if c.ensure {
		queue.EnsureTopic(ctx, a.cfg.KafkaBrokers[0], a.cfg.KafkaTopic, logger)
	}

	if err := runConsumer(ctx, a, logger); err != nil {
		return fail("Error consuming %q: %v", a.cfg.KafkaTopic, err)
	}
	return subcommands.ExitSuccess
}

// runConsumer loads the topic messages with the app loader until ctx is done.
func runConsumer(ctx context.Context, a *app, logger *zap.Logger) error {
	cons := queue.NewConsumer(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.cfg.KafkaGroupID, logger)
	logger.Info("consuming", zap.String("topic", a.cfg.KafkaTopic), zap.String("group", a.cfg.KafkaGroupID))
	return cons.Run(ctx, func(ctx context.Context, payload string) error {
		_, err := a.loader.Load(ctx, payload)
		return err
	})
}
