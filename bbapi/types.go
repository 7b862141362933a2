package bbapi

import "fmt"

/*-------------------------------------------------------------------------------------------------*/

// Reference arrays pulled out of the client bundle. Each slice is ordered by
// the remote enumeration index.
type ReferenceData struct {
	Categories []string
	Types      []string
	Rarities   []string
	Colors     []string
	Expansions []string
}

/*-------------------------------------------------------------------------------------------------*/

// Response body of /api/cards. Only the ids are used.
type SearchResults struct {
	Cards []CardSummary `json:"cards"`
}

// Id is required; a result without one makes the whole page unusable.
type CardSummary struct {
	Id   *int   `json:"id"`
	Name string `json:"name"`
}

/*-------------------------------------------------------------------------------------------------*/

// Response body of /api/card/<id>. Pointer fields are required and checked by
// Validate; the rest default to their zero value when absent.
type CardDetail struct {
	Id          *int        `json:"id"`
	Name        *string     `json:"name"`
	Category    *int        `json:"category"`
	Type        *int        `json:"type"`
	Rarity      *int        `json:"rarity"`
	Expansion   *int        `json:"expansion"`
	Color       *int        `json:"color"`
	Description string      `json:"description"`
	Cost        *CostDetail `json:"cost"`
}

// Nine resource amounts of a card. Missing fields decode as 0.
type CostDetail struct {
	Dex     int `json:"dex"`
	Int     int `json:"int"`
	Str     int `json:"str"`
	Holy    int `json:"holy"`
	Neutral int `json:"neutral"`
	DexInt  int `json:"dexint"`
	DexStr  int `json:"dexstr"`
	IntStr  int `json:"intstr"`
	Blood   int `json:"blood"`
}

// Response body of /api/card/<id>?talent=true.
type TalentDetail struct {
	Id          *int    `json:"id"`
	Name        *string `json:"name"`
	Tier        *int    `json:"tier"`
	Expansion   *int    `json:"expansion"`
	Description string  `json:"description"`
	Prereq      []int   `json:"prereq"`
}

/*-------------------------------------------------------------------------------------------------*/

// MissingFieldError reports a detail response without one of its required fields.
type MissingFieldError struct {
	Entity string
	Id     int
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s %d: missing required field %q", e.Entity, e.Id, e.Field)
}

// IdMismatchError reports a detail response describing a different entity
// than the one requested.
type IdMismatchError struct {
	Entity    string
	Requested int
	Got       int
}

func (e *IdMismatchError) Error() string {
	return fmt.Sprintf("%s %d: response carries id %d", e.Entity, e.Requested, e.Got)
}

// Validate checks that every required card field was present in the response
// and that it describes the requested card.
func (c *CardDetail) Validate(requested int) error {
	required := []struct {
		name    string
		present bool
	}{
		{"id", c.Id != nil},
		{"name", c.Name != nil},
		{"category", c.Category != nil},
		{"type", c.Type != nil},
		{"rarity", c.Rarity != nil},
		{"expansion", c.Expansion != nil},
		{"color", c.Color != nil},
	}
	for _, f := range required {
		if !f.present {
			return &MissingFieldError{Entity: "card", Id: requested, Field: f.name}
		}
	}
	if *c.Id != requested {
		return &IdMismatchError{Entity: "card", Requested: requested, Got: *c.Id}
	}
	return nil
}

// CostOrZero returns the card cost, all zero when the response had none.
func (c *CardDetail) CostOrZero() CostDetail {
	if c.Cost == nil {
		return CostDetail{}
	}
	return *c.Cost
}

// Validate checks that every required talent field was present in the response
// and that it describes the requested talent.
func (t *TalentDetail) Validate(requested int) error {
	required := []struct {
		name    string
		present bool
	}{
		{"id", t.Id != nil},
		{"name", t.Name != nil},
		{"tier", t.Tier != nil},
		{"expansion", t.Expansion != nil},
	}
	for _, f := range required {
		if !f.present {
			return &MissingFieldError{Entity: "talent", Id: requested, Field: f.name}
		}
	}
	if *t.Id != requested {
		return &IdMismatchError{Entity: "talent", Requested: requested, Got: *t.Id}
	}
	return nil
}

/*-------------------------------------------------------------------------------------------------*/

// Structure for holding search parameters. An empty string leaves that
// filter unset on the remote side.
type SearchParams struct {
	Search    string
	Rarity    string
	Category  string
	Type      string
	Banner    string
	Expansion string
}
