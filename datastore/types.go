package datastore

import "fmt"

// LookupTable names one of the five reference tables.
type LookupTable string

const (
	Categories LookupTable = "categories"
	Types      LookupTable = "types"
	Rarities   LookupTable = "rarities"
	Colors     LookupTable = "colors"
	Expansions LookupTable = "expansions"
)

// Lookup tables in insertion order.
var LookupTables = []LookupTable{Categories, Types, Rarities, Colors, Expansions}

// Lookup tables the pruner may shrink, with the cards column referencing each.
var prunableTables = []struct {
	table  LookupTable
	column string
}{
	{Types, "type"},
	{Rarities, "rarity"},
	{Colors, "color"},
}

func (t LookupTable) validate() error {
	for _, known := range LookupTables {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("unknown lookup table %q", string(t))
}

type LookupValue struct {
	Id   int    `db:"id"`
	Name string `db:"name"`
}

type Card struct {
	Id          int    `db:"id"`
	Name        string `db:"name"`
	Category    int    `db:"category"`
	Type        int    `db:"type"`
	Rarity      int    `db:"rarity"`
	Expansion   int    `db:"expansion"`
	Color       int    `db:"color"`
	Description string `db:"description_html"`
}

type Cost struct {
	CardId  int `db:"card_id"`
	Dex     int `db:"dex"`
	Int     int `db:"int"`
	Str     int `db:"str"`
	Holy    int `db:"holy"`
	Neutral int `db:"neutral"`
	DexInt  int `db:"dexint"`
	DexStr  int `db:"dexstr"`
	IntStr  int `db:"intstr"`
	Blood   int `db:"blood"`
}

type Talent struct {
	Id          int    `db:"id"`
	Name        string `db:"name"`
	Tier        int    `db:"tier"`
	Expansion   int    `db:"expansion"`
	Description string `db:"description_html"`
}

type TalentPrerequisite struct {
	TalentId       int `db:"talent_id"`
	PrerequisiteId int `db:"prerequisite_id"`
}

// Snapshot holds every row of a finished database.
type Snapshot struct {
	Lookups       map[LookupTable][]LookupValue
	Cards         []Card
	Costs         []Cost
	Talents       []Talent
	Prerequisites []TalentPrerequisite
}
