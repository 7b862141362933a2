package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkPrerequisitesSkipsMissingEndpoints(t *testing.T) {
	store, _ := newTestStore(t)
	seedLookups(t, store)
	ctx := context.Background()

	for _, id := range []int{1, 2, 3} {
		require.NoError(t, store.InsertTalent(ctx, Talent{Id: id, Name: "T", Tier: id, Expansion: 1}))
	}

	linked, err := store.LinkPrerequisites(ctx, map[int][]int{
		3:  {1, 2, 99}, // 99 was never stored
		2:  {1, 1},     // duplicate edge
		50: {1},        // talent itself missing
	})
	require.NoError(t, err)
	assert.Equal(t, 3, linked)

	snap, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TalentPrerequisite{
		{TalentId: 2, PrerequisiteId: 1},
		{TalentId: 3, PrerequisiteId: 1},
		{TalentId: 3, PrerequisiteId: 2},
	}, snap.Prerequisites)
}

func TestLinkPrerequisitesEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	linked, err := store.LinkPrerequisites(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, linked)
}
