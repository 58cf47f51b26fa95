package ledger

import (
	"context"
	"fmt"

	"github.com/etnz/ledger/date"
	"golang.org/x/sync/errgroup"
)

// Index selects which key a range query is made on.
type Index int

const (
	// ByParty queries records keyed by (party, datetime).
	ByParty Index = iota
	// ByCounterparty queries records through the (counterparty, datetime) index.
	ByCounterparty
)

func (i Index) String() string {
	switch i {
	case ByParty:
		return "party"
	case ByCounterparty:
		return "counterparty"
	default:
		return fmt.Sprintf("Index(%d)", int(i))
	}
}

// Querier runs range queries on stored records.
type Querier interface {
	// Query returns the records whose key, selected by index, equals value and
	// whose datetime is lower or equal to upperBound. An upperBound equal to
	// date.NoFilter means no bound.
	Query(ctx context.Context, index Index, value, upperBound string) ([]Record, error)
}

// Resolver computes the net position of entities from stored records.
type Resolver struct {
	Store Querier
}

// NewResolver creates a Resolver querying store.
func NewResolver(store Querier) *Resolver { return &Resolver{Store: store} }

// Transactions returns the records of entity up to the given date, inclusive,
// split by the role the entity took. An empty date means no limit.
func (r *Resolver) Transactions(ctx context.Context, entity, on string) (asParty, asCounterparty []Record, err error) {
	bound, err := date.UpperBound(on)
	if err != nil {
		return nil, nil, err
	}

	// both queries are independent.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		asParty, err = r.Store.Query(ctx, ByParty, entity, bound)
		if err != nil {
			return fmt.Errorf("querying %q as party: %w", entity, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		asCounterparty, err = r.Store.Query(ctx, ByCounterparty, entity, bound)
		if err != nil {
			return fmt.Errorf("querying %q as counterparty: %w", entity, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return asParty, asCounterparty, nil
}

// Position returns the net position of entity up to the given date, inclusive.
//
// The counterparty side is folded on top of the party side, so that one
// Summary holds both.
func (r *Resolver) Position(ctx context.Context, entity, on string) (Summary, error) {
	asParty, asCounterparty, err := r.Transactions(ctx, entity, on)
	if err != nil {
		return Summary{}, err
	}
	partySum := Aggregate(Party, asParty, NewSummary())
	return Aggregate(Counterparty, asCounterparty, partySum), nil
}
