package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

// positionCmd holds the flags for the 'position' subcommand.
type positionCmd struct {
	date     string
	currency string
	json     bool
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "display the net position of an entity" }
func (*positionCmd) Usage() string {
	return `ldg position [-d <date>] [-c <currency>] [-json] <entity>

  Displays the cash balance and the assets held by <entity> up to the end of
  <date>. The date can be partial: "2019" stands for the whole year 2019.
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the position, inclusive. All transactions if empty.")
	f.StringVar(&c.currency, "c", "", "Currency of the balance. Defaults to $LEDGER_CURRENCY.")
	f.BoolVar(&c.json, "json", false, "print the position as JSON")
}

func (c *positionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	entity := f.Arg(0)

	a, err := openApp(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	defer a.Close()

	sum, err := ledger.NewResolver(a.store).Position(ctx, entity, c.date)
	if err != nil {
		return fail("Error computing the position of %q: %v", entity, err)
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return fail("Error encoding position: %v", err)
		}
		return subcommands.ExitSuccess
	}

	currency := c.currency
	if currency == "" {
		currency = a.cfg.Currency
	}
	printMarkdown(renderer.RenderPosition(renderer.NewPosition(entity, c.date, currency, sum)))
	return subcommands.ExitSuccess
}
