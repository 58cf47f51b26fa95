package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/blob"
	"github.com/etnz/ledger/queue"
	"github.com/google/subcommands"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	direct bool
	all    bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import files of transaction lines" }
func (*importCmd) Usage() string {
	return `ldg import [-direct] [-all | <key>...]

  Reads each file <key> of the bucket and sends every non blank line to the
  kafka topic, or loads it directly in the ledger when no broker is configured
  or -direct is set.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.direct, "direct", false, "load lines in the ledger without going through kafka")
	f.BoolVar(&c.all, "all", false, "import every .csv file of the bucket")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("Error reading configuration: %v", err)
	}
	bucket := blob.NewBucket(cfg.Bucket)

	keys := f.Args()
	if c.all {
		if keys, err = bucket.List(ctx, ".csv"); err != nil {
			return fail("Error listing bucket %q: %v", cfg.Bucket, err)
		}
	}
	if len(keys) == 0 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	var sender ledger.Sender
	if cfg.Kafka() && !c.direct {
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		sender = producer
	} else {
		a, err := openApp(ctx)
		if err != nil {
			return fail("Error: %v", err)
		}
		defer a.Close()
		sender = a.loader.Sender()
	}

	im := &ledger.Importer{Blobs: bucket, Queue: sender}
	for _, key := range keys {
		n, err := im.Import(ctx, key)
		if err != nil {
			return fail("Error importing %q after %d lines: %v", key, n, err)
		}
		fmt.Printf("%s: %d lines imported\n", key, n)
	}
	return subcommands.ExitSuccess
}
