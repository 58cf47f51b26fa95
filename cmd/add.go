package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	at           string
	party        string
	counterparty string
	typ          string
	asset        string
	amount       string
	value        string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add transactions to the ledger" }
func (*addCmd) Usage() string {
	return `ldg add <line>...
ldg add -p <party> -c <counterparty> -t D|W -v <value> [-at <time>]
ldg add -p <party> -c <counterparty> -t B|S -a <asset> -n <amount> -v <unit value> [-at <time>]

  Stores transactions in the ledger, either as raw lines or built from flags.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.at, "at", "", "time of the transaction, now if empty")
	f.StringVar(&c.party, "p", "", "party of the transaction")
	f.StringVar(&c.counterparty, "c", "", "counterparty of the transaction")
	f.StringVar(&c.typ, "t", "", "type of the transaction: D, W, B or S")
	f.StringVar(&c.asset, "a", "", "asset name, for buys and sells")
	f.StringVar(&c.amount, "n", "", "number of asset units, for buys and sells")
	f.StringVar(&c.value, "v", "", "value, per unit for buys and sells")
}

// record builds the record described by the flags.
func (c *addCmd) record(now time.Time) (ledger.Record, error) {
	at := date.FormatInstant(now)
	if c.at != "" {
		var err error
		if at, err = date.ParseInstant(c.at); err != nil {
			return ledger.Record{}, err
		}
	}
	if c.party == "" || c.counterparty == "" {
		return ledger.Record{}, fmt.Errorf("-p and -c are required")
	}
	value, err := decimal.NewFromString(c.value)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("invalid value %q: %w", c.value, err)
	}

	r := ledger.Record{Datetime: at, Party: c.party, Counterparty: c.counterparty}
	switch t := ledger.Type(c.typ); t {
	case ledger.Deposit:
		r.Transaction = ledger.NewDeposit(value)
	case ledger.Withdraw:
		r.Transaction = ledger.NewWithdraw(value)
	case ledger.Buy, ledger.Sell:
		amount, err := decimal.NewFromString(c.amount)
		if err != nil {
			return ledger.Record{}, fmt.Errorf("invalid amount %q: %w", c.amount, err)
		}
		if c.asset == "" {
			return ledger.Record{}, fmt.Errorf("-a is required for type %s", t)
		}
		if t == ledger.Buy {
			r.Transaction = ledger.NewBuy(c.asset, amount, value)
		} else {
			r.Transaction = ledger.NewSell(c.asset, amount, value)
		}
	default:
		return ledger.Record{}, fmt.Errorf("invalid type %q: %w", c.typ, ledger.ErrUnknownType)
	}
	return r, nil
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	lines := f.Args()
	if len(lines) == 0 {
		r, err := c.record(time.Now())
		if err != nil {
			fmt.Fprintf(f.Output(), "Error: %v\n%s", err, c.Usage())
			return subcommands.ExitUsageError
		}
		// lines go through the loader, as imported ones do.
		lines = []string{a.loader.Decoder.Encode(r)}
	}

	for _, line := range lines {
		r, err := a.loader.Load(ctx, line)
		if err != nil {
			return fail("Error adding %q: %v", line, err)
		}
		fmt.Printf("Added %s %s of %s with %s\n", r.Datetime, r.Transaction.Type, r.Party, r.Counterparty)
	}
	return subcommands.ExitSuccess
}
