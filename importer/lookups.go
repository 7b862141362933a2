package importer

import (
	"context"
	"fmt"

	"github.com/gurbos/dcdb/bbapi"
	"github.com/gurbos/dcdb/datastore"
)

const (
	noneValue = "None"
	// The remote type enumeration has a retired, blank entry at this index.
	retiredTypeIndex = 8
)

// AlignLookups turns the extracted arrays into lookup rows whose ids match
// the remote enumeration indexes:
//   - colors and expansions get "None" at id 0, shifting the rest up by one;
//   - a blank type at index 8 is dropped and the other types keep their ids.
func AlignLookups(data bbapi.ReferenceData) map[datastore.LookupTable][]datastore.LookupValue {
	return map[datastore.LookupTable][]datastore.LookupValue{
		datastore.Categories: enumerate(data.Categories),
		datastore.Types:      dropRetiredType(enumerate(data.Types)),
		datastore.Rarities:   enumerate(data.Rarities),
		datastore.Colors:     enumerate(prependNone(data.Colors)),
		datastore.Expansions: enumerate(prependNone(data.Expansions)),
	}
}

func prependNone(values []string) []string {
	return append([]string{noneValue}, values...)
}

func enumerate(values []string) []datastore.LookupValue {
	rows := make([]datastore.LookupValue, len(values))
	for i, v := range values {
		rows[i] = datastore.LookupValue{Id: i, Name: v}
	}
	return rows
}

func dropRetiredType(rows []datastore.LookupValue) []datastore.LookupValue {
	if len(rows) <= retiredTypeIndex || rows[retiredTypeIndex].Name != "" {
		return rows
	}
	kept := make([]datastore.LookupValue, 0, len(rows)-1)
	kept = append(kept, rows[:retiredTypeIndex]...)
	return append(kept, rows[retiredTypeIndex+1:]...)
}

// PopulateLookups aligns the reference arrays and stores all five tables as
// one unit.
func (im *Importer) PopulateLookups(ctx context.Context, data bbapi.ReferenceData) error {
	lookups := AlignLookups(data)
	for _, table := range datastore.LookupTables {
		im.logger.Info("lookup table", "table", table, "entries", len(lookups[table]))
	}
	if err := im.store.InsertLookups(ctx, lookups); err != nil {
		return fmt.Errorf("Error populating lookup tables: %w", err)
	}
	return nil
}
