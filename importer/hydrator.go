package importer

import (
	"context"
	"log/slog"

	"github.com/gurbos/dcdb/bbapi"
	"github.com/gurbos/dcdb/datastore"
)

// DetailAPI is the per-entity detail endpoint of the remote site.
type DetailAPI interface {
	FetchCard(ctx context.Context, id int) (*bbapi.CardDetail, error)
	FetchTalent(ctx context.Context, id int) (*bbapi.TalentDetail, error)
}

// EntityStore receives hydrated entities. Each insert commits on its own.
type EntityStore interface {
	InsertCard(ctx context.Context, card datastore.Card, cost datastore.Cost) error
	InsertTalent(ctx context.Context, talent datastore.Talent) error
}

// Hydrator fetches full detail for one id at a time and stores it. Any
// failure is logged and reported as false so the caller moves on.
type Hydrator struct {
	api    DetailAPI
	store  EntityStore
	logger *slog.Logger
}

func NewHydrator(api DetailAPI, store EntityStore, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{api: api, store: store, logger: logger}
}

// HydrateCard stores the card and its cost row.
func (h *Hydrator) HydrateCard(ctx context.Context, id int) bool {
	detail, err := h.api.FetchCard(ctx, id)
	if err != nil {
		h.logger.Error("fetching card failed", "card_id", id, "error", err)
		return false
	}

	if err := h.store.InsertCard(ctx, toCard(detail), toCost(detail)); err != nil {
		h.logger.Error("storing card failed", "card_id", id, "error", err)
		return false
	}
	return true
}

// HydrateTalent stores the talent and returns its prerequisite ids for the
// linking pass. No edges are written here. The caller keys the edges by id,
// so a response for any other talent is rejected.
func (h *Hydrator) HydrateTalent(ctx context.Context, id int) (bool, []int) {
	detail, err := h.api.FetchTalent(ctx, id)
	if err != nil {
		h.logger.Error("fetching talent failed", "talent_id", id, "error", err)
		return false, nil
	}
	if *detail.Id != id {
		err := &bbapi.IdMismatchError{Entity: "talent", Requested: id, Got: *detail.Id}
		h.logger.Error("fetching talent failed", "talent_id", id, "error", err)
		return false, nil
	}

	if err := h.store.InsertTalent(ctx, toTalent(detail)); err != nil {
		h.logger.Error("storing talent failed", "talent_id", id, "error", err)
		return false, nil
	}
	return true, detail.Prereq
}

func toCard(d *bbapi.CardDetail) datastore.Card {
	return datastore.Card{
		Id:          *d.Id,
		Name:        *d.Name,
		Category:    *d.Category,
		Type:        *d.Type,
		Rarity:      *d.Rarity,
		Expansion:   *d.Expansion,
		Color:       *d.Color,
		Description: bbapi.SanitizeHTML(d.Description),
	}
}

func toCost(d *bbapi.CardDetail) datastore.Cost {
	c := d.CostOrZero()
	return datastore.Cost{
		CardId:  *d.Id,
		Dex:     c.Dex,
		Int:     c.Int,
		Str:     c.Str,
		Holy:    c.Holy,
		Neutral: c.Neutral,
		DexInt:  c.DexInt,
		DexStr:  c.DexStr,
		IntStr:  c.IntStr,
		Blood:   c.Blood,
	}
}

func toTalent(d *bbapi.TalentDetail) datastore.Talent {
	return datastore.Talent{
		Id:          *d.Id,
		Name:        *d.Name,
		Tier:        *d.Tier,
		Expansion:   *d.Expansion,
		Description: bbapi.SanitizeHTML(d.Description),
	}
}
