package importer

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/gurbos/dcdb/bbapi"
)

// SearchAPI is the search endpoint of the remote site.
type SearchAPI interface {
	SearchIDs(ctx context.Context, sp bbapi.SearchParams) ([]int, error)
}

// IDCollector recovers a full id space from a search endpoint that truncates
// large result sets, by querying every combination of two filters and
// taking the union of the results.
type IDCollector struct {
	api          SearchAPI
	logger       *slog.Logger
	pageWarnSize int
}

func NewIDCollector(api SearchAPI, logger *slog.Logger, pageWarnSize int) *IDCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &IDCollector{api: api, logger: logger, pageWarnSize: pageWarnSize}
}

// Tiers 0-6; the tier range is fixed upstream.
func talentTiers() []int {
	tiers := make([]int, bbapi.MAX_TALENT_TIER+1)
	for i := range tiers {
		tiers[i] = i
	}
	return tiers
}

// CollectTalentIDs queries every tier x expansion pair.
func (c *IDCollector) CollectTalentIDs(ctx context.Context, expansions []int) ([]int, error) {
	return c.collect(ctx, "talent", "tier", talentTiers(), "expansion", expansions, bbapi.NewTalentSearchParams)
}

// CollectCardIDs queries every rarity x color pair.
func (c *IDCollector) CollectCardIDs(ctx context.Context, rarities, colors []int) ([]int, error) {
	return c.collect(ctx, "card", "rarity", rarities, "color", colors, bbapi.NewCardSearchParams)
}

// collect returns the sorted union of ids over all pairs. A failed query is
// logged and counts as zero results; only context cancellation stops it.
func (c *IDCollector) collect(ctx context.Context, entity string,
	outerName string, outer []int, innerName string, inner []int,
	params func(int, int) bbapi.SearchParams,
) ([]int, error) {
	total := len(outer) * len(inner)
	c.logger.Info("collecting ids",
		"entity", entity, outerName+"s", len(outer), innerName+"s", len(inner), "queries", total)

	found := make(map[int]struct{})
	query := 0
	for _, a := range outer {
		for _, b := range inner {
			query++
			ids, err := c.api.SearchIDs(ctx, params(a, b))
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.Error("search query failed",
					"entity", entity, outerName, a, innerName, b, "error", err)
				continue
			}
			if len(ids) == 0 {
				continue
			}

			c.logger.Info("search results",
				"progress", progress(query, total), "entity", entity, outerName, a, innerName, b, "results", len(ids))
			if c.pageWarnSize > 0 && len(ids)%c.pageWarnSize == 0 {
				c.logger.Warn("result count is a multiple of the page size, results may be truncated",
					"entity", entity, outerName, a, innerName, b, "results", len(ids), "page_size", c.pageWarnSize)
			}
			for _, id := range ids {
				found[id] = struct{}{}
			}
		}
	}

	sorted := slices.Sorted(maps.Keys(found))
	c.logger.Info("collected unique ids", "entity", entity, "count", len(sorted))
	return sorted, nil
}
