// Package store persists ledger records in SQLite through gorm.
//
// Records are keyed by (party, datetime) and indexed by (counterparty,
// datetime), so that both sides of an entity's history are range queries.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// recordModel is the table row of a ledger.Record.
type recordModel struct {
	Party        string              `gorm:"primaryKey;column:party"`
	Datetime     string              `gorm:"primaryKey;column:datetime;index:idx_counterparty_datetime,priority:2"`
	Counterparty string              `gorm:"column:counterparty;not null;index:idx_counterparty_datetime,priority:1"`
	Type         string              `gorm:"column:type;size:1;not null"`
	Value        decimal.NullDecimal `gorm:"column:value;type:text"`
	AssetName    *string             `gorm:"column:asset_name"`
	AssetAmount  decimal.NullDecimal `gorm:"column:asset_amount;type:text"`
	AssetValue   decimal.NullDecimal `gorm:"column:asset_value;type:text"`
}

func (recordModel) TableName() string { return "records" }

func newRecordModel(r ledger.Record) recordModel {
	m := recordModel{
		Party:        r.Party,
		Datetime:     r.Datetime,
		Counterparty: r.Counterparty,
		Type:         string(r.Transaction.Type),
	}
	if v := r.Transaction.Value; v != nil {
		m.Value = decimal.NewNullDecimal(*v)
	}
	if a := r.Transaction.Asset; a != nil {
		name := a.Name
		m.AssetName = &name
		m.AssetAmount = decimal.NewNullDecimal(a.Amount)
		m.AssetValue = decimal.NewNullDecimal(a.Value)
	}
	return m
}

func (m recordModel) record() ledger.Record {
	r := ledger.Record{
		Datetime:     m.Datetime,
		Party:        m.Party,
		Counterparty: m.Counterparty,
		Transaction:  ledger.Transaction{Type: ledger.Type(m.Type)},
	}
	if m.Value.Valid {
		v := m.Value.Decimal
		r.Transaction.Value = &v
	}
	if m.AssetName != nil {
		r.Transaction.Asset = &ledger.Asset{
			Name:   *m.AssetName,
			Amount: m.AssetAmount.Decimal,
			Value:  m.AssetValue.Decimal,
		}
	}
	return r
}

// Store is a ledger.Store backed by a SQLite database.
type Store struct {
	db *gorm.DB
}

var _ ledger.Store = (*Store)(nil)

// Open opens, or creates, the SQLite database at path. The path ":memory:"
// opens a private in memory database.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path cannot be empty")
	}
	dsn := "file::memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return New(db)
}

// New creates a Store on an opened database, creating the table if needed.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&recordModel{}); err != nil {
		return nil, fmt.Errorf("migrating records: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// an in memory database lives as long as its single connection.
		sqlDB.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put stores r, replacing the record with the same party and datetime.
func (s *Store) Put(ctx context.Context, r ledger.Record) error {
	if r.Party == "" || r.Datetime == "" {
		return errors.New("record without party or datetime")
	}
	m := newRecordModel(r)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "party"}, {Name: "datetime"}},
			UpdateAll: true,
		}).
		Create(&m).Error
}

// Query implements ledger.Querier. Records are returned in datetime order.
//
// Stored datetimes end with a "Z" that bounds from date.UpperBound do not
// carry, so the comparison is made against upperBound+"Z": it keeps every
// datetime whose prefix is lower or equal to the bound.
func (s *Store) Query(ctx context.Context, index ledger.Index, value, upperBound string) ([]ledger.Record, error) {
	var column string
	switch index {
	case ledger.ByParty:
		column = "party"
	case ledger.ByCounterparty:
		column = "counterparty"
	default:
		return nil, fmt.Errorf("unknown index %v", index)
	}
	q := s.db.WithContext(ctx).Where(column+" = ?", value)
	if upperBound != date.NoFilter {
		q = q.Where("datetime <= ?", upperBound+"Z")
	}
	var rows []recordModel
	if err := q.Order("datetime").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Record, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.record())
	}
	return out, nil
}

// All returns every record, in party then datetime order.
func (s *Store) All(ctx context.Context) ([]ledger.Record, error) {
	var rows []recordModel
	if err := s.db.WithContext(ctx).Order("party").Order("datetime").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Record, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.record())
	}
	return out, nil
}
