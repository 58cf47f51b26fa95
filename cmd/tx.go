package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	date     string
	currency string
	csv      bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transactions of an entity" }
func (*txCmd) Usage() string {
	return `ldg tx [-d <date>] [-c <currency>] [-csv] <entity>

  Lists the transactions of <entity>, as party or as counterparty, up to the
  end of <date>.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.date, "d", "", "The end date, inclusive. All transactions if empty.")
	f.StringVar(&p.currency, "c", "", "Currency of the values. Defaults to $LEDGER_CURRENCY.")
	f.BoolVar(&p.csv, "csv", false, "print transactions as lines that 'ldg import' reads")
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(f.Output(), p.Usage())
		return subcommands.ExitUsageError
	}
	entity := f.Arg(0)

	a, err := openApp(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	asParty, asCounterparty, err := ledger.NewResolver(a.store).Transactions(ctx, entity, p.date)
	if err != nil {
		return fail("Error listing the transactions of %q: %v", entity, err)
	}

	if p.csv {
		records := slices.Concat(asParty, asCounterparty)
		slices.SortStableFunc(records, func(x, y ledger.Record) int { return strings.Compare(x.Datetime, y.Datetime) })
		for _, r := range records {
			fmt.Println(a.loader.Decoder.Encode(r))
		}
		return subcommands.ExitSuccess
	}

	currency := p.currency
	if currency == "" {
		currency = a.cfg.Currency
	}
	printMarkdown(renderer.RenderTransactions(renderer.NewTransactions(entity, p.date, currency, asParty, asCounterparty)))
	return subcommands.ExitSuccess
}
