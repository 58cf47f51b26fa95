// Package renderer renders ledger reports as markdown, and markdown as HTML.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/etnz/ledger"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templates embed.FS

// FormatMoney formats value in the currency code, rounded to the currency
// fraction digits.
func FormatMoney(value decimal.Decimal, code string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, code).Currency()
	dec := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

var funcs = template.FuncMap{"money": FormatMoney}

// AssetLine is one asset held in a Position.
type AssetLine struct {
	Name   string
	Amount decimal.Decimal
}

// Position is the report of an entity net position.
type Position struct {
	Entity   string
	Date     string // Date is the requested date, empty for all transactions.
	Currency string
	Balance  decimal.Decimal
	Assets   []AssetLine // Assets are sorted by name.
}

// NewPosition creates the report of the summary s of entity on date.
func NewPosition(entity, on, currency string, s ledger.Summary) *Position {
	p := &Position{Entity: entity, Date: on, Currency: currency, Balance: s.Balance}
	for _, name := range s.AssetNames() {
		p.Assets = append(p.Assets, AssetLine{Name: name, Amount: s.Asset(name)})
	}
	return p
}

// RenderPosition renders p to a markdown string.
func RenderPosition(p *Position) string {
	return renderTemplate("position.md", p)
}

// TransactionLine is one record seen from the reported entity.
type TransactionLine struct {
	Datetime string
	Role     ledger.Role
	With     string // With is the other side of the record.
	Type     ledger.Type
	Asset    string
	Amount   string
	Value    decimal.Decimal // Value is the cash exchanged.
}

// Transactions is the report of the records of an entity.
type Transactions struct {
	Entity   string
	Date     string
	Currency string
	Lines    []TransactionLine // Lines are sorted by datetime.
}

func newLine(role ledger.Role, r ledger.Record) TransactionLine {
	l := TransactionLine{Datetime: r.Datetime, Role: role, With: r.Counterparty, Type: r.Transaction.Type}
	if role == ledger.Counterparty {
		l.With = r.Party
	}
	switch tx := r.Transaction; {
	case tx.Asset != nil:
		l.Asset = tx.Asset.Name
		l.Amount = tx.Asset.Amount.String()
		l.Value = tx.Asset.Gross()
	case tx.Value != nil:
		l.Value = *tx.Value
	}
	return l
}

// NewTransactions creates the report of the records of entity, as returned by
// ledger.Resolver.Transactions.
func NewTransactions(entity, on, currency string, asParty, asCounterparty []ledger.Record) *Transactions {
	t := &Transactions{Entity: entity, Date: on, Currency: currency}
	for _, r := range asParty {
		t.Lines = append(t.Lines, newLine(ledger.Party, r))
	}
	for _, r := range asCounterparty {
		t.Lines = append(t.Lines, newLine(ledger.Counterparty, r))
	}
	slices.SortStableFunc(t.Lines, func(a, b TransactionLine) int { return strings.Compare(a.Datetime, b.Datetime) })
	return t
}

// RenderTransactions renders t to a markdown string.
func RenderTransactions(t *Transactions) string {
	return renderTemplate("transactions.md", t)
}

// renderTemplate renders an embedded template, errors are rendered in place
// of the report.
func renderTemplate(file string, data any) string {
	content, err := fs.ReadFile(templates, "templates/"+file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(file).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", file, err)
	}
	return b.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML converts a markdown report to HTML.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
