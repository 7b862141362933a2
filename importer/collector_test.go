package importer

import (
	"context"
	"testing"

	"github.com/gurbos/dcdb/bbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(sp bbapi.SearchParams) string { return sp.Query().Encode() }

func TestCollectCardIDsUnionsAllPairs(t *testing.T) {
	api := &fakeAPI{
		searches: map[string][]int{
			key(bbapi.NewCardSearchParams(0, 0)): {30, 10},
			key(bbapi.NewCardSearchParams(0, 1)): {10, 20},
			key(bbapi.NewCardSearchParams(1, 1)): {20, 40, 30},
		},
		failing: map[string]bool{
			key(bbapi.NewCardSearchParams(1, 0)): true,
		},
	}

	ids, err := NewIDCollector(api, discardLogger, 0).CollectCardIDs(context.Background(), []int{0, 1}, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40}, ids)
	assert.Len(t, api.queries, 4)
}

func TestCollectTalentIDsQueriesEveryTierAndExpansion(t *testing.T) {
	api := &fakeAPI{
		searches: map[string][]int{
			key(bbapi.NewTalentSearchParams(0, 0)): {5},
			key(bbapi.NewTalentSearchParams(6, 2)): {7, 5},
		},
	}

	ids, err := NewIDCollector(api, discardLogger, 2).CollectTalentIDs(context.Background(), []int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 7}, ids)

	require.Len(t, api.queries, 7*3)
	seen := map[[2]string]bool{}
	for _, q := range api.queries {
		assert.Equal(t, "10", q.Category)
		assert.Empty(t, q.Banner)
		assert.Empty(t, q.Type)
		assert.Empty(t, q.Search)
		seen[[2]string{q.Rarity, q.Expansion}] = true
	}
	assert.Len(t, seen, 21)
}

func TestCollectWithNoDimensions(t *testing.T) {
	api := &fakeAPI{}
	ids, err := NewIDCollector(api, discardLogger, 0).CollectCardIDs(context.Background(), nil, []int{0})
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, api.queries)
}

func TestCollectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &fakeAPI{failing: map[string]bool{key(bbapi.NewCardSearchParams(0, 0)): true}}

	_, err := NewIDCollector(api, discardLogger, 0).CollectCardIDs(ctx, []int{0}, []int{0, 1})
	require.ErrorIs(t, err, context.Canceled)
}
