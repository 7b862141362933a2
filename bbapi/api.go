package bbapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client is the read-only view of the remote card API.
type Client struct {
	fetcher *Fetcher
}

func NewClient(fetcher *Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// Return the ids of every entity matching the search parameters, in
// response order.
func (c *Client) SearchIDs(ctx context.Context, sp SearchParams) ([]int, error) {
	body, err := c.fetcher.Fetch(ctx, SearchURL(sp))
	if err != nil {
		return nil, fmt.Errorf("Error querying search endpoint: %w", err)
	}

	var results SearchResults
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		return nil, fmt.Errorf("Error decoding search results: %w", err)
	}

	ids := make([]int, len(results.Cards))
	for i, card := range results.Cards {
		if card.Id == nil {
			return nil, fmt.Errorf("Error decoding search results: entry %d has no id", i)
		}
		ids[i] = *card.Id
	}
	return ids, nil
}

// Fetch full card detail by card id.
func (c *Client) FetchCard(ctx context.Context, id int) (*CardDetail, error) {
	body, err := c.fetcher.Fetch(ctx, CardURL(id))
	if err != nil {
		return nil, fmt.Errorf("Error fetching card %d: %w", id, err)
	}

	var card CardDetail
	if err := json.Unmarshal([]byte(body), &card); err != nil {
		return nil, fmt.Errorf("Error decoding card %d: %w", id, err)
	}
	if err := card.Validate(id); err != nil {
		return nil, err
	}
	return &card, nil
}

// Fetch full talent detail by talent id.
func (c *Client) FetchTalent(ctx context.Context, id int) (*TalentDetail, error) {
	body, err := c.fetcher.Fetch(ctx, TalentURL(id))
	if err != nil {
		return nil, fmt.Errorf("Error fetching talent %d: %w", id, err)
	}

	var talent TalentDetail
	if err := json.Unmarshal([]byte(body), &talent); err != nil {
		return nil, fmt.Errorf("Error decoding talent %d: %w", id, err)
	}
	if err := talent.Validate(id); err != nil {
		return nil, err
	}
	return &talent, nil
}
