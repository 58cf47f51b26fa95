package ledger

import (
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Role is the side an entity took in a transaction.
type Role int

const (
	// Party is the entity on whose behalf the transaction is recorded.
	Party Role = iota
	// Counterparty is the other side of the transaction.
	Counterparty
)

func (r Role) String() string {
	switch r {
	case Party:
		return "party"
	case Counterparty:
		return "counterparty"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// sign is +1 for the party and -1 for the counterparty: every transaction is a
// zero-sum transfer between them.
func (r Role) sign() int64 {
	if r == Counterparty {
		return -1
	}
	return 1
}

// Summary is the net position of an entity: its cash balance and the net
// amount of each asset it holds. Asset amounts can be negative.
type Summary struct {
	Balance decimal.Decimal            `json:"balance"`
	Assets  map[string]decimal.Decimal `json:"assets"`
}

// NewSummary returns an empty Summary.
func NewSummary() Summary {
	return Summary{Assets: make(map[string]decimal.Decimal)}
}

// Clone returns a deep copy of s, with a non nil Assets map.
func (s Summary) Clone() Summary {
	c := Summary{Balance: s.Balance, Assets: make(map[string]decimal.Decimal, len(s.Assets))}
	maps.Copy(c.Assets, s.Assets)
	return c
}

// Asset returns the net amount held for name, zero if absent.
func (s Summary) Asset(name string) decimal.Decimal { return s.Assets[name] }

// AssetNames returns the asset names in alphabetical order.
func (s Summary) AssetNames() []string {
	return slices.Sorted(maps.Keys(s.Assets))
}

// Equal reports whether both summaries have the same balance and the same
// asset amounts. Absent assets are not equal to zero ones.
func (s Summary) Equal(o Summary) bool {
	if !s.Balance.Equal(o.Balance) || len(s.Assets) != len(o.Assets) {
		return false
	}
	for name, v := range s.Assets {
		w, ok := o.Assets[name]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Neg returns the summary seen from the other side.
func (s Summary) Neg() Summary {
	n := Summary{Balance: s.Balance.Neg(), Assets: make(map[string]decimal.Decimal, len(s.Assets))}
	for name, v := range s.Assets {
		n.Assets[name] = v.Neg()
	}
	return n
}

// effect describes how a transaction moves the party's cash and holdings:
// cash changes by cash*gross and the asset by holding*amount.
type effect struct{ cash, holding int64 }

var effects = map[Type]effect{
	Deposit:  {cash: +1},
	Withdraw: {cash: -1},
	Buy:      {cash: -1, holding: +1},
	Sell:     {cash: +1, holding: -1},
}

// Apply adds the effect of one record, seen from role, to s.
//
// Records of unknown type, or without the body their type requires, leave s
// unchanged.
func (s *Summary) Apply(role Role, r Record) {
	e, ok := effects[r.Transaction.Type]
	if !ok {
		return
	}
	sign := decimal.NewFromInt(role.sign())
	tx := r.Transaction
	switch {
	case tx.Type.HasAsset() && tx.Asset != nil:
		a := tx.Asset
		s.Balance = s.Balance.Add(a.Gross().Mul(decimal.NewFromInt(e.cash)).Mul(sign))
		if s.Assets == nil {
			s.Assets = make(map[string]decimal.Decimal)
		}
		s.Assets[a.Name] = s.Assets[a.Name].Add(a.Amount.Mul(decimal.NewFromInt(e.holding)).Mul(sign))
	case !tx.Type.HasAsset() && tx.Value != nil:
		s.Balance = s.Balance.Add(tx.Value.Mul(decimal.NewFromInt(e.cash)).Mul(sign))
	}
}

// Aggregate folds records, seen from role, into a copy of seed.
//
// The seed is never modified, and aggregating no record returns the seed
// unchanged. The order of records does not change the result.
func Aggregate(role Role, records []Record, seed Summary) Summary {
	sum := seed.Clone()
	for _, r := range records {
		sum.Apply(role, r)
	}
	return sum
}
