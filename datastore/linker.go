package datastore

import (
	"context"
	"maps"
	"slices"

	"github.com/jmoiron/sqlx"
)

// LinkPrerequisites inserts the deferred talent prerequisite edges. It must
// run after every talent has been committed. An edge whose insert fails (an
// endpoint that was never stored, or a duplicate) is logged and skipped; the
// remaining edges are still written. Returns the number of edges inserted.
func (s *SQLiteDataStore) LinkPrerequisites(ctx context.Context, prerequisites map[int][]int) (int, error) {
	inserted := 0
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, talentId := range slices.Sorted(maps.Keys(prerequisites)) {
			for _, prereqId := range prerequisites[talentId] {
				edge := TalentPrerequisite{TalentId: talentId, PrerequisiteId: prereqId}
				_, err := tx.NamedExecContext(ctx,
					"INSERT INTO talent_prerequisites (talent_id, prerequisite_id) VALUES (:talent_id, :prerequisite_id)",
					edge,
				)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					s.logger.Warn("could not insert prerequisite",
						"talent_id", talentId, "prerequisite_id", prereqId, "error", err)
					continue
				}
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
