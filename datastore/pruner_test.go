package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneUnused(t *testing.T) {
	store, _ := newTestStore(t)
	seedLookups(t, store)
	ctx := context.Background()

	require.NoError(t, store.InsertCard(ctx, Card{Id: 1, Name: "A", Category: 0, Type: 0, Rarity: 1, Expansion: 0, Color: 2}, Cost{}))
	require.NoError(t, store.InsertCard(ctx, Card{Id: 2, Name: "B", Category: 0, Type: 0, Rarity: 1, Expansion: 0, Color: 0}, Cost{}))

	removed, err := store.PruneUnused(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[LookupTable]int{Types: 1, Rarities: 1, Colors: 1}, removed)

	first, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LookupValue{{0, "Melee"}}, first.Lookups[Types])
	assert.Equal(t, []LookupValue{{1, "Uncommon"}}, first.Lookups[Rarities])
	assert.Equal(t, []LookupValue{{0, "None"}, {2, "Blue"}}, first.Lookups[Colors])
	// never pruned, even when unused
	assert.Len(t, first.Lookups[Categories], 2)
	assert.Len(t, first.Lookups[Expansions], 3)

	removed, err = store.PruneUnused(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed)

	second, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPruneUnusedWithoutCards(t *testing.T) {
	store, _ := newTestStore(t)
	seedLookups(t, store)

	removed, err := store.PruneUnused(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[LookupTable]int{Types: 2, Rarities: 2, Colors: 3}, removed)
}
