package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Type is the one letter code of a transaction.
type Type string

// Transaction types.
const (
	Deposit  Type = "D"
	Withdraw Type = "W"
	Buy      Type = "B"
	Sell     Type = "S"
)

// Known reports whether t is one of the four transaction types.
func (t Type) Known() bool {
	switch t {
	case Deposit, Withdraw, Buy, Sell:
		return true
	default:
		return false
	}
}

// HasAsset reports whether transactions of type t carry an Asset rather than a Value.
func (t Type) HasAsset() bool { return t == Buy || t == Sell }

// Asset is the body of buy and sell transactions.
type Asset struct {
	Name   string
	Amount decimal.Decimal // Amount is the number of units exchanged.
	Value  decimal.Decimal // Value is the price of one unit.
}

// Gross returns the total price of the asset, amount times unit value.
func (a Asset) Gross() decimal.Decimal { return a.Amount.Mul(a.Value) }

// MarshalJSON implements the json.Marshaler interface for Asset.
func (a Asset) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("amount", a.Amount)
	w.Append("name", a.Name)
	w.Append("value", a.Value)
	return w.MarshalJSON()
}

// Transaction is the typed body of a Record.
//
// Deposits and withdrawals carry a Value, buys and sells an Asset. A
// transaction of unknown type carries neither.
type Transaction struct {
	Type  Type
	Value *decimal.Decimal
	Asset *Asset
}

// NewDeposit creates the body of a deposit.
func NewDeposit(value decimal.Decimal) Transaction {
	return Transaction{Type: Deposit, Value: &value}
}

// NewWithdraw creates the body of a withdrawal.
func NewWithdraw(value decimal.Decimal) Transaction {
	return Transaction{Type: Withdraw, Value: &value}
}

// NewBuy creates the body of a buy of amount units of name at value per unit.
func NewBuy(name string, amount, value decimal.Decimal) Transaction {
	return Transaction{Type: Buy, Asset: &Asset{Name: name, Amount: amount, Value: value}}
}

// NewSell creates the body of a sell of amount units of name at value per unit.
func NewSell(name string, amount, value decimal.Decimal) Transaction {
	return Transaction{Type: Sell, Asset: &Asset{Name: name, Amount: amount, Value: value}}
}

// Equal reports whether both transactions have the same type and body.
func (t Transaction) Equal(o Transaction) bool {
	if t.Type != o.Type {
		return false
	}
	if (t.Value == nil) != (o.Value == nil) || (t.Asset == nil) != (o.Asset == nil) {
		return false
	}
	if t.Value != nil && !t.Value.Equal(*o.Value) {
		return false
	}
	if t.Asset != nil {
		a, b := t.Asset, o.Asset
		return a.Name == b.Name && a.Amount.Equal(b.Amount) && a.Value.Equal(b.Value)
	}
	return true
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Type)
	if t.Value != nil {
		w.Append("value", *t.Value)
	}
	if t.Asset != nil {
		w.Append("asset", *t.Asset)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type  Type             `json:"type"`
		Value *decimal.Decimal `json:"value"`
		Asset *struct {
			Amount decimal.Decimal `json:"amount"`
			Name   string          `json:"name"`
			Value  decimal.Decimal `json:"value"`
		} `json:"asset"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction{Type: temp.Type}
	switch {
	case temp.Type.HasAsset():
		if temp.Asset == nil {
			return fmt.Errorf("transaction %q without asset", temp.Type)
		}
		t.Asset = &Asset{Name: temp.Asset.Name, Amount: temp.Asset.Amount, Value: temp.Asset.Value}
	case temp.Type.Known():
		if temp.Value == nil {
			return fmt.Errorf("transaction %q without value", temp.Type)
		}
		t.Value = temp.Value
	}
	return nil
}

// Record is one transaction between a party and a counterparty, at a given
// instant. Records are immutable once stored.
type Record struct {
	Datetime     string      `json:"datetime"` // Datetime is an instant in date.InstantFormat.
	Party        string      `json:"party"`
	Counterparty string      `json:"counterparty"`
	Transaction  Transaction `json:"transaction"`
}

// MarshalJSON implements the json.Marshaler interface for Record, with fields
// in a stable order.
func (r Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("datetime", r.Datetime)
	w.Append("party", r.Party)
	w.Append("counterparty", r.Counterparty)
	w.Append("transaction", r.Transaction)
	return w.MarshalJSON()
}

// Equal reports whether both records are identical.
func (r Record) Equal(o Record) bool {
	return r.Datetime == o.Datetime && r.Party == o.Party && r.Counterparty == o.Counterparty &&
		r.Transaction.Equal(o.Transaction)
}
