// Package mirror copies stored ledger records into a relational database,
// where they can be explored with SQL.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is a record as stored in the mirror table.
type Row struct {
	Party        string
	Counterparty string
	Datetime     time.Time
	Transaction  json.RawMessage // Transaction is the JSON body of the record transaction.
}

// paths of each column in a ChangeEvent.
const (
	partyPath        = "$.party"
	counterpartyPath = "$.counterparty"
	datetimePath     = "$.datetime"
	transactionPath  = "$.transaction"
)

func get(path string, ev ledger.ChangeEvent) (any, error) {
	v, err := jsonpath.Get(path, map[string]any(ev))
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	// jsonpath may return a list of one answer instead of the answer itself.
	if list, ok := v.([]any); ok && len(list) == 1 {
		v = list[0]
	}
	return v, nil
}

func getString(path string, ev ledger.ChangeEvent) (string, error) {
	v, err := get(path, ev)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("reading %q: want a non empty string, got %v", path, v)
	}
	return s, nil
}

// Flatten extracts the mirror columns of a change event.
func Flatten(ev ledger.ChangeEvent) (Row, error) {
	var row Row
	var err error
	if row.Party, err = getString(partyPath, ev); err != nil {
		return Row{}, err
	}
	if row.Counterparty, err = getString(counterpartyPath, ev); err != nil {
		return Row{}, err
	}
	dt, err := getString(datetimePath, ev)
	if err != nil {
		return Row{}, err
	}
	if row.Datetime, err = time.Parse(date.InstantFormat, dt); err != nil {
		return Row{}, fmt.Errorf("reading %q: %w", datetimePath, err)
	}
	tx, err := get(transactionPath, ev)
	if err != nil {
		return Row{}, err
	}
	if row.Transaction, err = json.Marshal(tx); err != nil {
		return Row{}, fmt.Errorf("reading %q: %w", transactionPath, err)
	}
	return row, nil
}

// Execer runs SQL statements, as a pgxpool.Pool does.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const createTable = `
CREATE TABLE IF NOT EXISTS transactions (
  party        TEXT        NOT NULL,
  counterparty TEXT        NOT NULL,
  datetime     TIMESTAMPTZ NOT NULL,
  transaction  JSONB       NOT NULL,
  PRIMARY KEY (party, datetime)
)`

const insertRow = `
INSERT INTO transactions (party, counterparty, datetime, transaction)
VALUES ($1, $2, $3, $4::jsonb)
ON CONFLICT (party, datetime)
DO UPDATE SET counterparty = EXCLUDED.counterparty, transaction = EXCLUDED.transaction`

// Postgres is a ledger.Mirror writing into a PostgreSQL "transactions" table.
type Postgres struct {
	db Execer
}

var _ ledger.Mirror = (*Postgres)(nil)

// Connect opens a pool on databaseURL and creates the mirror table if needed.
// The returned close function releases the pool.
func Connect(ctx context.Context, databaseURL string) (*Postgres, func(), error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connecting mirror: %w", err)
	}
	pg, err := New(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}

// New creates a Postgres mirror on db and creates its table if needed.
func New(ctx context.Context, db Execer) (*Postgres, error) {
	if _, err := db.Exec(ctx, createTable); err != nil {
		return nil, fmt.Errorf("creating mirror table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Publish inserts the record of ev, replacing the row with the same party and
// datetime.
func (p *Postgres) Publish(ctx context.Context, ev ledger.ChangeEvent) error {
	row, err := Flatten(ev)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, insertRow, row.Party, row.Counterparty, row.Datetime, string(row.Transaction))
	return err
}
