package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/ledger"
	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestFormatMoney(t *testing.T) {
	testCases := []struct {
		value string
		code  string
		want  string
	}{
		{"1234.567", "USD", "$1,234.57"},
		{"-300", "USD", "-$300.00"},
		{"0", "USD", "$0.00"},
		{"0.004", "USD", "$0.00"},
	}
	for _, tc := range testCases {
		if got := FormatMoney(d(tc.value), tc.code); got != tc.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tc.value, tc.code, got, tc.want)
		}
	}
	if got := FormatMoney(d("12"), "EUR"); !strings.Contains(got, "€") || !strings.Contains(got, "12.00") {
		t.Errorf("FormatMoney(12, EUR) = %q", got)
	}
}

func TestRenderPosition(t *testing.T) {
	s := ledger.NewSummary()
	s.Balance = d("700")
	s.Assets["MSFT"] = d("-1.5")
	s.Assets["APPL"] = d("3")

	got := RenderPosition(NewPosition("person-a", "2019-11", "USD", s))
	want := `# person-a

Position on 2019-11.

| Balance | $700.00 |
|:---|---:|
| APPL | 3 |
| MSFT | -1.5 |
`
	if got != want {
		t.Errorf("RenderPosition() = \n%s\nwant\n%s", got, want)
	}
}

func TestRenderPosition_Empty(t *testing.T) {
	got := RenderPosition(NewPosition("nobody", "", "USD", ledger.NewSummary()))
	want := `# nobody

Position with all recorded transactions.

| Balance | $0.00 |
|:---|---:|
`
	if got != want {
		t.Errorf("RenderPosition() = \n%s\nwant\n%s", got, want)
	}
}

func TestRenderTransactions(t *testing.T) {
	asParty := []ledger.Record{
		{Datetime: "2019-11-03T21:03:58.592Z", Party: "person-a", Counterparty: "broker", Transaction: ledger.NewBuy("APPL", d("3"), d("100"))},
		{Datetime: "2019-11-02T19:45:58.024Z", Party: "person-a", Counterparty: "person-b", Transaction: ledger.NewDeposit(d("1000"))},
	}
	asCounterparty := []ledger.Record{
		{Datetime: "2019-11-02T20:00:00.000Z", Party: "person-b", Counterparty: "person-a", Transaction: ledger.NewWithdraw(d("20"))},
	}

	got := RenderTransactions(NewTransactions("person-a", "2019-11", "USD", asParty, asCounterparty))
	want := `# Transactions of person-a

Up to 2019-11.

| Date | Role | With | Type | Asset | Amount | Value |
|:---|:---|:---|:---:|:---|---:|---:|
| 2019-11-02T19:45:58.024Z | party | person-b | D |  |  | $1,000.00 |
| 2019-11-02T20:00:00.000Z | counterparty | person-b | W |  |  | $20.00 |
| 2019-11-03T21:03:58.592Z | party | broker | B | APPL | 3 | $300.00 |
`
	if got != want {
		t.Errorf("RenderTransactions() = \n%s\nwant\n%s", got, want)
	}
}

func TestHTML(t *testing.T) {
	s := ledger.NewSummary()
	s.Balance = d("400")
	s.Assets["APPL"] = d("3")
	got, err := HTML(RenderPosition(NewPosition("person-a", "", "USD", s)))
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	for _, want := range []string{"<h1>person-a</h1>", "<table>", "APPL", "$400.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML() = %s, want it to contain %q", got, want)
		}
	}
}
