package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/ledger/date"
	"github.com/shopspring/decimal"
)

// DefaultDelimiter separates the fields of a line.
const DefaultDelimiter = ";"

// ErrUnknownType is reported by a strict Decoder for a type other than D, W, B or S.
var ErrUnknownType = errors.New("unknown transaction type")

// ParseError reports a field of a line that could not be decoded.
type ParseError struct {
	Line  string // Line is the whole input line.
	Field string // Field is the name of the offending field.
	Input string // Input is the raw field value, if any.
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot decode %s %q in line %q: %v", e.Field, e.Input, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errMissing = errors.New("missing field")

// Decoder decodes delimited lines into Records.
//
// Fields are positional: timestamp, party, counterparty, type, and then
// "value" for deposits and withdrawals or "amount, name, value" for buys and
// sells.
//
// By default a line with an unknown type is decoded into a Record without
// value or asset, that aggregation ignores. Such lines are kept on purpose:
// the ledger is append-only and the line remains visible in listings. Set
// Strict to reject them instead.
type Decoder struct {
	Delimiter string // Delimiter between fields, DefaultDelimiter if empty.
	Strict    bool   // Strict rejects unknown types with ErrUnknownType.
}

// Decode decodes a line with the default Decoder.
func Decode(line string) (Record, error) {
	return Decoder{}.Decode(line)
}

// Decode decodes one line into a Record.
func (d Decoder) Decode(line string) (Record, error) {
	sep := d.Delimiter
	if sep == "" {
		sep = DefaultDelimiter
	}
	fields := strings.Split(strings.TrimRight(line, "\r\n"), sep)
	field := func(i int, name string) (string, error) {
		if i >= len(fields) {
			return "", &ParseError{Line: line, Field: name, Err: errMissing}
		}
		return fields[i], nil
	}
	number := func(i int, name string) (decimal.Decimal, error) {
		raw, err := field(i, name)
		if err != nil {
			return decimal.Zero, err
		}
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return decimal.Zero, &ParseError{Line: line, Field: name, Input: raw, Err: err}
		}
		return v, nil
	}

	if len(fields) < 4 {
		return Record{}, &ParseError{Line: line, Field: "type", Err: errMissing}
	}
	datetime, err := date.ParseInstant(fields[0])
	if err != nil {
		return Record{}, &ParseError{Line: line, Field: "timestamp", Input: fields[0], Err: err}
	}
	rec := Record{
		Datetime:     datetime,
		Party:        fields[1],
		Counterparty: fields[2],
		Transaction:  Transaction{Type: Type(fields[3])},
	}

	switch rec.Transaction.Type {
	case Deposit, Withdraw:
		value, err := number(4, "value")
		if err != nil {
			return Record{}, err
		}
		rec.Transaction.Value = &value
	case Buy, Sell:
		amount, err := number(4, "amount")
		if err != nil {
			return Record{}, err
		}
		name, err := field(5, "name")
		if err != nil {
			return Record{}, err
		}
		value, err := number(6, "value")
		if err != nil {
			return Record{}, err
		}
		rec.Transaction.Asset = &Asset{Name: name, Amount: amount, Value: value}
	default:
		if d.Strict {
			return Record{}, &ParseError{Line: line, Field: "type", Input: fields[3], Err: ErrUnknownType}
		}
	}
	return rec, nil
}

// Encode formats a Record as a line that Decode reads back.
func (d Decoder) Encode(r Record) string {
	sep := d.Delimiter
	if sep == "" {
		sep = DefaultDelimiter
	}
	fields := []string{r.Datetime, r.Party, r.Counterparty, string(r.Transaction.Type)}
	switch {
	case r.Transaction.Value != nil:
		fields = append(fields, r.Transaction.Value.String())
	case r.Transaction.Asset != nil:
		a := r.Transaction.Asset
		fields = append(fields, a.Amount.String(), a.Name, a.Value.String())
	}
	return strings.Join(fields, sep)
}
