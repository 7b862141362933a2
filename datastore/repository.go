package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// SQLiteDataStore owns the snapshot database for one import run.
type SQLiteDataStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func (s *SQLiteDataStore) Close() error {
	return s.db.Close()
}

// InsertLookups writes every lookup table present in lookups in one
// transaction. Rows keep the ids they carry.
func (s *SQLiteDataStore) InsertLookups(ctx context.Context, lookups map[LookupTable][]LookupValue) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, table := range LookupTables {
			values, ok := lookups[table]
			if !ok {
				continue
			}
			sql := fmt.Sprintf("INSERT INTO %s (id, name) VALUES (:id, :name)", table)
			for _, v := range values {
				if _, err := tx.NamedExecContext(ctx, sql, v); err != nil {
					return fmt.Errorf("Error inserting %s row %d %q: %w", table, v.Id, v.Name, err)
				}
			}
		}
		return nil
	})
}

// LookupIDs returns the ids stored in a lookup table in ascending order.
func (s *SQLiteDataStore) LookupIDs(ctx context.Context, table LookupTable) ([]int, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	var ids []int
	if err := s.db.SelectContext(ctx, &ids, fmt.Sprintf("SELECT id FROM %s ORDER BY id", table)); err != nil {
		return nil, fmt.Errorf("Error reading %s ids: %w", table, err)
	}
	return ids, nil
}

// Lookups returns every row of a lookup table ordered by id.
func (s *SQLiteDataStore) Lookups(ctx context.Context, table LookupTable) ([]LookupValue, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	var values []LookupValue
	if err := s.db.SelectContext(ctx, &values, fmt.Sprintf("SELECT id, name FROM %s ORDER BY id", table)); err != nil {
		return nil, fmt.Errorf("Error reading %s: %w", table, err)
	}
	return values, nil
}

const insertCardSQL = `INSERT INTO cards (id, name, category, type, rarity, expansion, color, description_html)
VALUES (:id, :name, :category, :type, :rarity, :expansion, :color, :description_html)`

const insertCostSQL = `INSERT INTO costs (card_id, dex, int, str, holy, neutral, dexint, dexstr, intstr, blood)
VALUES (:card_id, :dex, :int, :str, :holy, :neutral, :dexint, :dexstr, :intstr, :blood)`

// InsertCard stores a card and its cost row and commits both together.
func (s *SQLiteDataStore) InsertCard(ctx context.Context, card Card, cost Cost) error {
	cost.CardId = card.Id
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertCardSQL, card); err != nil {
			return fmt.Errorf("Error inserting card %d: %w", card.Id, err)
		}
		if _, err := tx.NamedExecContext(ctx, insertCostSQL, cost); err != nil {
			return fmt.Errorf("Error inserting cost for card %d: %w", card.Id, err)
		}
		return nil
	})
}

const insertTalentSQL = `INSERT INTO talents (id, name, tier, expansion, description_html)
VALUES (:id, :name, :tier, :expansion, :description_html)`

// InsertTalent stores and commits a single talent. Prerequisite edges are
// written later by LinkPrerequisites.
func (s *SQLiteDataStore) InsertTalent(ctx context.Context, talent Talent) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertTalentSQL, talent); err != nil {
			return fmt.Errorf("Error inserting talent %d: %w", talent.Id, err)
		}
		return nil
	})
}

// Count returns the number of rows in one of the snapshot tables.
func (s *SQLiteDataStore) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "cards", "costs", "talents", "talent_prerequisites":
	default:
		if err := LookupTable(table).validate(); err != nil {
			return 0, err
		}
	}
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("Error counting %s: %w", table, err)
	}
	return n, nil
}

// LoadSnapshot reads every table back in primary-key order.
func (s *SQLiteDataStore) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Lookups: make(map[LookupTable][]LookupValue, len(LookupTables))}
	for _, table := range LookupTables {
		values, err := s.Lookups(ctx, table)
		if err != nil {
			return nil, err
		}
		snap.Lookups[table] = values
	}

	queries := []struct {
		dest any
		sql  string
	}{
		{&snap.Cards, "SELECT id, name, category, type, rarity, expansion, color, description_html FROM cards ORDER BY id"},
		{&snap.Costs, "SELECT card_id, dex, int, str, holy, neutral, dexint, dexstr, intstr, blood FROM costs ORDER BY card_id"},
		{&snap.Talents, "SELECT id, name, tier, expansion, description_html FROM talents ORDER BY id"},
		{&snap.Prerequisites, "SELECT talent_id, prerequisite_id FROM talent_prerequisites ORDER BY talent_id, prerequisite_id"},
	}
	for _, q := range queries {
		if err := s.db.SelectContext(ctx, q.dest, q.sql); err != nil {
			return nil, fmt.Errorf("Error loading snapshot: %w", err)
		}
	}
	return snap, nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
