package ledger

import (
	"fmt"
	"testing"
)

func TestAggregate(t *testing.T) {
	testCases := []struct {
		role Role
		tx   Transaction
		want Summary
	}{
		{Party, NewDeposit(D(200)), S(200, nil)},
		{Counterparty, NewDeposit(D(200)), S(-200, nil)},
		{Party, NewWithdraw(D(200)), S(-200, nil)},
		{Counterparty, NewWithdraw(D(200)), S(200, nil)},
		{Party, NewBuy("APPL", D(3), D(100)), S(-300, map[string]float64{"APPL": 3})},
		{Counterparty, NewBuy("APPL", D(3), D(100)), S(300, map[string]float64{"APPL": -3})},
		{Party, NewSell("APPL", D(2), D(120)), S(240, map[string]float64{"APPL": -2})},
		{Counterparty, NewSell("APPL", D(2), D(120)), S(-240, map[string]float64{"APPL": 2})},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%v %s", tc.role, tc.tx.Type), func(t *testing.T) {
			got := Aggregate(tc.role, []Record{R("2019-11-02T19:45:58.024Z", tc.tx)}, NewSummary())
			if !got.Equal(tc.want) {
				t.Errorf("Aggregate() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestAggregate_Seed(t *testing.T) {
	testCases := []struct {
		name string
		tx   Transaction
		seed Summary
		want Summary
	}{
		{"deposit", NewDeposit(D(200)), S(140, nil), S(340, nil)},
		{"buy", NewBuy("APPL", D(2), D(120)), S(150, nil), S(-90, map[string]float64{"APPL": 2})},
		{"sell existing", NewSell("APPL", D(2), D(120)), S(0, map[string]float64{"APPL": 5}), S(240, map[string]float64{"APPL": 3})},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.seed.Clone()
			got := Aggregate(Party, []Record{R("2019-11-02T19:45:58.024Z", tc.tx)}, tc.seed)
			if !got.Equal(tc.want) {
				t.Errorf("Aggregate() = %+v, want %+v", got, tc.want)
			}
			if !tc.seed.Equal(before) {
				t.Errorf("Aggregate() modified its seed: %+v, want %+v", tc.seed, before)
			}
		})
	}
}

// TestAggregate_Identity asserts that aggregating no record returns the seed.
func TestAggregate_Identity(t *testing.T) {
	for _, seed := range []Summary{
		{},
		NewSummary(),
		S(140, nil),
		S(-90, map[string]float64{"APPL": 2, "MSFT": -1}),
	} {
		for _, role := range []Role{Party, Counterparty} {
			if got := Aggregate(role, nil, seed); !got.Equal(seed) {
				t.Errorf("Aggregate(%v, nil, %+v) = %+v, want the seed", role, seed, got)
			}
			if got := Aggregate(role, []Record{}, seed); !got.Equal(seed) {
				t.Errorf("Aggregate(%v, [], %+v) = %+v, want the seed", role, seed, got)
			}
		}
	}
}

// TestAggregate_ZeroSum asserts that the party and the counterparty of the
// same records have opposite positions.
func TestAggregate_ZeroSum(t *testing.T) {
	records := []Record{
		R("2019-11-02T19:45:58.024Z", NewDeposit(D(200))),
		R("2019-11-03T19:03:58.935Z", NewWithdraw(D(75.25))),
		R("2019-11-03T21:03:58.592Z", NewBuy("APPL", D(3), D(100))),
		R("2019-11-04T09:45:58.012Z", NewSell("APPL", D(2), D(120))),
		R("2019-11-04T09:45:59.000Z", NewSell("MSFT", D(1.5), D(410.1))),
		R("2019-11-04T09:46:00.000Z", Transaction{Type: "X"}),
	}
	party := Aggregate(Party, records, NewSummary())
	counterparty := Aggregate(Counterparty, records, NewSummary())

	if !party.Equal(counterparty.Neg()) {
		t.Errorf("party %+v is not the opposite of counterparty %+v", party, counterparty)
	}
	want := S(679.9, map[string]float64{"APPL": 1, "MSFT": -1.5})
	if !party.Equal(want) {
		t.Errorf("Aggregate(Party) = %+v, want %+v", party, want)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	records := []Record{
		R("2019-11-02T19:45:58.024Z", NewDeposit(D(200))),
		R("2019-11-03T21:03:58.592Z", NewBuy("APPL", D(3), D(100))),
		R("2019-11-04T09:45:58.012Z", NewSell("APPL", D(2), D(120))),
	}
	reversed := []Record{records[2], records[1], records[0]}
	a := Aggregate(Party, records, NewSummary())
	b := Aggregate(Party, reversed, NewSummary())
	if !a.Equal(b) {
		t.Errorf("Aggregate() depends on order: %+v != %+v", a, b)
	}
}

func TestAggregate_Lazy(t *testing.T) {
	got := Aggregate(Party, []Record{
		R("2019-11-02T19:45:58.024Z", NewDeposit(D(200))),
		R("2019-11-03T19:03:58.935Z", NewWithdraw(D(200))),
	}, NewSummary())
	if len(got.Assets) != 0 {
		t.Errorf("Aggregate() created assets for cash only transactions: %v", got.Assets)
	}
	if names := got.AssetNames(); len(names) != 0 {
		t.Errorf("AssetNames() = %v, want none", names)
	}
}
