// Package importer runs the snapshot pipeline: lookup tables, talents and
// their prerequisites, cards, then pruning of unused lookup values.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gurbos/dcdb/bbapi"
	"github.com/gurbos/dcdb/datastore"
)

// ReferenceSource supplies the reference arrays. The bundle extractor is the
// only implementation; anything more robust can replace it here.
type ReferenceSource interface {
	FetchReferenceData(ctx context.Context) (bbapi.ReferenceData, error)
}

// API is the remote surface the pipeline needs.
type API interface {
	SearchAPI
	DetailAPI
}

// Store is the snapshot database as seen by the pipeline.
type Store interface {
	EntityStore
	InsertLookups(ctx context.Context, lookups map[datastore.LookupTable][]datastore.LookupValue) error
	LookupIDs(ctx context.Context, table datastore.LookupTable) ([]int, error)
	LinkPrerequisites(ctx context.Context, prerequisites map[int][]int) (int, error)
	PruneUnused(ctx context.Context) (map[datastore.LookupTable]int, error)
}

type Options struct {
	RequestDelay time.Duration
	PageWarnSize int
	Logger       *slog.Logger
}

// Summary counts what one run stored.
type Summary struct {
	TalentsFound        int
	TalentsStored       int
	PrerequisitesLinked int
	CardsFound          int
	CardsStored         int
	Pruned              map[datastore.LookupTable]int
}

// Importer owns the per-run state of one import. Use a new one per run.
type Importer struct {
	store     Store
	refs      ReferenceSource
	collector *IDCollector
	hydrator  *Hydrator
	pacer     *Pacer
	logger    *slog.Logger
}

func New(store Store, refs ReferenceSource, api API, opts Options) *Importer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:     store,
		refs:      refs,
		collector: NewIDCollector(api, logger, opts.PageWarnSize),
		hydrator:  NewHydrator(api, store, logger),
		pacer:     NewPacer(opts.RequestDelay),
		logger:    logger,
	}
}

// Run fills an empty snapshot database. Only reference-data failures and
// storage failures outside per-entity inserts abort it; per-id problems are
// logged and show up as lower stored counts in the summary.
func (im *Importer) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	data, err := im.refs.FetchReferenceData(ctx)
	if err != nil {
		return summary, fmt.Errorf("Error fetching reference data: %w", err)
	}
	if err := im.PopulateLookups(ctx, data); err != nil {
		return summary, err
	}

	// Talents go first so every prerequisite endpoint exists before linking.
	prerequisites, err := im.importTalents(ctx, &summary)
	if err != nil {
		return summary, err
	}

	im.logger.Info("inserting talent prerequisites", "talents", len(prerequisites))
	summary.PrerequisitesLinked, err = im.store.LinkPrerequisites(ctx, prerequisites)
	if err != nil {
		return summary, fmt.Errorf("Error linking prerequisites: %w", err)
	}
	im.logger.Info("inserted prerequisite relationships", "count", summary.PrerequisitesLinked)

	if err := im.importCards(ctx, &summary); err != nil {
		return summary, err
	}

	im.logger.Info("pruning unused filter values")
	summary.Pruned, err = im.store.PruneUnused(ctx)
	if err != nil {
		return summary, fmt.Errorf("Error pruning lookup tables: %w", err)
	}
	return summary, nil
}

func (im *Importer) importTalents(ctx context.Context, summary *Summary) (map[int][]int, error) {
	expansions, err := im.store.LookupIDs(ctx, datastore.Expansions)
	if err != nil {
		return nil, err
	}
	ids, err := im.collector.CollectTalentIDs(ctx, expansions)
	if err != nil {
		return nil, err
	}
	summary.TalentsFound = len(ids)

	im.logger.Info("fetching talent details", "count", len(ids), "delay", im.pacer.delay)
	prerequisites := make(map[int][]int)
	for i, id := range ids {
		if err := im.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		ok, prereqs := im.hydrator.HydrateTalent(ctx, id)
		if ok {
			summary.TalentsStored++
			if len(prereqs) > 0 {
				prerequisites[id] = prereqs
			}
		}
		im.logProgress("talents", i, len(ids))
	}
	return prerequisites, nil
}

func (im *Importer) importCards(ctx context.Context, summary *Summary) error {
	rarities, err := im.store.LookupIDs(ctx, datastore.Rarities)
	if err != nil {
		return err
	}
	colors, err := im.store.LookupIDs(ctx, datastore.Colors)
	if err != nil {
		return err
	}
	ids, err := im.collector.CollectCardIDs(ctx, rarities, colors)
	if err != nil {
		return err
	}
	summary.CardsFound = len(ids)

	im.logger.Info("fetching card details", "count", len(ids), "delay", im.pacer.delay)
	for i, id := range ids {
		if err := im.pacer.Wait(ctx); err != nil {
			return err
		}
		if im.hydrator.HydrateCard(ctx, id) {
			summary.CardsStored++
		}
		im.logProgress("cards", i, len(ids))
	}
	return nil
}

func (im *Importer) logProgress(entity string, index, total int) {
	if (index+1)%10 == 0 || index+1 == total {
		im.logger.Info("progress", "entity", entity, "done", progress(index+1, total))
	}
}

func progress(n, total int) string {
	return fmt.Sprintf("%d/%d", n, total)
}
