package ledger

import "github.com/shopspring/decimal"

// D is a helper for test to create decimals from const.
func D(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// S is a helper for test to create summaries from a balance and name/amount pairs.
func S(balance float64, assets map[string]float64) Summary {
	s := NewSummary()
	s.Balance = D(balance)
	for name, v := range assets {
		s.Assets[name] = D(v)
	}
	return s
}

// R is a helper for test to create a record between person-a and person-b.
func R(datetime string, tx Transaction) Record {
	return Record{Datetime: datetime, Party: "person-a", Counterparty: "person-b", Transaction: tx}
}
