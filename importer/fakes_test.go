package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gurbos/dcdb/bbapi"
	"github.com/gurbos/dcdb/datastore"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAPI answers searches from a table keyed by the encoded query and
// details from maps; anything missing is an error.
type fakeAPI struct {
	searches map[string][]int
	failing  map[string]bool
	cards    map[int]*bbapi.CardDetail
	talents  map[int]*bbapi.TalentDetail
	queries  []bbapi.SearchParams
}

func (f *fakeAPI) SearchIDs(_ context.Context, sp bbapi.SearchParams) ([]int, error) {
	f.queries = append(f.queries, sp)
	key := sp.Query().Encode()
	if f.failing[key] {
		return nil, errors.New("connection reset")
	}
	return f.searches[key], nil
}

func (f *fakeAPI) FetchCard(_ context.Context, id int) (*bbapi.CardDetail, error) {
	if c, ok := f.cards[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("card %d: %w", id, &bbapi.HTTPError{URL: bbapi.CardURL(id), StatusCode: 404})
}

func (f *fakeAPI) FetchTalent(_ context.Context, id int) (*bbapi.TalentDetail, error) {
	if t, ok := f.talents[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("talent %d: %w", id, &bbapi.HTTPError{URL: bbapi.TalentURL(id), StatusCode: 404})
}

// recordingStore keeps inserted entities in memory.
type recordingStore struct {
	cards   []datastore.Card
	costs   []datastore.Cost
	talents []datastore.Talent
	fail    error
}

func (s *recordingStore) InsertCard(_ context.Context, card datastore.Card, cost datastore.Cost) error {
	if s.fail != nil {
		return s.fail
	}
	s.cards = append(s.cards, card)
	s.costs = append(s.costs, cost)
	return nil
}

func (s *recordingStore) InsertTalent(_ context.Context, talent datastore.Talent) error {
	if s.fail != nil {
		return s.fail
	}
	s.talents = append(s.talents, talent)
	return nil
}

func ptr[T any](v T) *T { return &v }
