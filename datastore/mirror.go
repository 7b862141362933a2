package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDataStore mirrors a finished snapshot into PostgreSQL.
type PostgresDataStore struct {
	cp     *pgxpool.Pool // Connection pool to the PostgreSQL database
	logger *slog.Logger
}

// Tables in dependency order: parents before children.
var mirrorTables = []string{
	"categories", "types", "rarities", "expansions", "colors",
	"cards", "costs", "talents", "talent_prerequisites",
}

// Publish replaces the mirror's contents with snap in a single transaction:
// tables are created if missing, truncated, then refilled with one batch.
func (r *PostgresDataStore) Publish(ctx context.Context, snap *Snapshot) error {
	c, err := r.cp.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("Error acquiring connection from pool: %w", err)
	}
	defer c.Release()

	tx, err := c.Begin(ctx)
	if err != nil {
		return fmt.Errorf("Error starting mirror transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, postgresSchemaSQL); err != nil {
		return fmt.Errorf("Error creating mirror schema: %w", err)
	}
	if _, err := tx.Exec(ctx, truncateSQL()); err != nil {
		return fmt.Errorf("Error truncating mirror tables: %w", err)
	}

	batch := snapshotBatch(snap)
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("Error executing batch insert for mirror: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("Error closing mirror batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("Error committing mirror: %w", err)
	}
	r.logger.Info("published snapshot to postgres", "rows", batch.Len())
	return nil
}

func truncateSQL() string {
	sql := "TRUNCATE "
	for i := len(mirrorTables) - 1; i >= 0; i-- {
		sql += mirrorTables[i]
		if i > 0 {
			sql += ", "
		}
	}
	return sql
}

// snapshotBatch queues one INSERT per snapshot row, parents first.
func snapshotBatch(snap *Snapshot) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, table := range LookupTables {
		sql := fmt.Sprintf("INSERT INTO %s (id, name) VALUES ($1, $2)", table)
		for _, v := range snap.Lookups[table] {
			batch.Queue(sql, v.Id, v.Name)
		}
	}

	for _, card := range snap.Cards {
		batch.Queue(
			"INSERT INTO cards (id, name, category, type, rarity, expansion, color, description_html) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			card.Id, card.Name, card.Category, card.Type, card.Rarity, card.Expansion, card.Color, card.Description,
		)
	}
	for _, cost := range snap.Costs {
		batch.Queue(
			`INSERT INTO costs (card_id, dex, "int", str, holy, neutral, dexint, dexstr, intstr, blood) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			cost.CardId, cost.Dex, cost.Int, cost.Str, cost.Holy, cost.Neutral, cost.DexInt, cost.DexStr, cost.IntStr, cost.Blood,
		)
	}
	for _, talent := range snap.Talents {
		batch.Queue(
			"INSERT INTO talents (id, name, tier, expansion, description_html) VALUES ($1, $2, $3, $4, $5)",
			talent.Id, talent.Name, talent.Tier, talent.Expansion, talent.Description,
		)
	}
	for _, edge := range snap.Prerequisites {
		batch.Queue(
			"INSERT INTO talent_prerequisites (talent_id, prerequisite_id) VALUES ($1, $2)",
			edge.TalentId, edge.PrerequisiteId,
		)
	}
	return batch
}

func (r *PostgresDataStore) Close() {
	r.cp.Close()
}
