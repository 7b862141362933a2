package datastore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type lookupUsage struct {
	Id        int    `db:"id"`
	Name      string `db:"name"`
	CardCount int    `db:"card_count"`
}

// PruneUnused deletes type, rarity and color rows that no card references.
// Categories and expansions are kept as they are. It must run after all cards
// are stored; running it again deletes nothing. Returns the number of rows
// removed per table.
func (s *SQLiteDataStore) PruneUnused(ctx context.Context) (map[LookupTable]int, error) {
	removed := make(map[LookupTable]int, len(prunableTables))
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, pt := range prunableTables {
			var usage []lookupUsage
			query := fmt.Sprintf(`SELECT lookup.id, lookup.name, COUNT(cards.id) AS card_count
FROM %s AS lookup
LEFT JOIN cards ON cards.%s = lookup.id
GROUP BY lookup.id, lookup.name
ORDER BY lookup.id`, pt.table, pt.column)
			if err := tx.SelectContext(ctx, &usage, query); err != nil {
				return fmt.Errorf("Error counting cards per %s: %w", pt.table, err)
			}

			for _, u := range usage {
				if u.CardCount > 0 {
					continue
				}
				if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", pt.table), u.Id); err != nil {
					return fmt.Errorf("Error deleting %s row %d: %w", pt.table, u.Id, err)
				}
				removed[pt.table]++
			}

			if removed[pt.table] > 0 {
				s.logger.Info("removed unused lookup values", "table", pt.table, "count", removed[pt.table])
			} else {
				s.logger.Info("all lookup values are used by at least one card", "table", pt.table)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
