// Package testing provides shared fixtures for fieldmap tests.
package testing

import (
	"github.com/google/uuid"
	"github.com/zoobzio/fieldmap"
)

// Rank is a resident's standing in a town.
type Rank int

// Ranks.
const (
	RankResident Rank = iota
	RankAssistant
	RankMayor
)

func (r Rank) String() string {
	switch r {
	case RankResident:
		return "Resident"
	case RankAssistant:
		return "Assistant"
	case RankMayor:
		return "Mayor"
	default:
		return "Unknown"
	}
}

// Ranks returns every Rank constant.
func Ranks() []Rank {
	return []Rank{RankResident, RankAssistant, RankMayor}
}

// RegisterEnums registers the fixture enums with r.
func RegisterEnums(r *fieldmap.Resolver) {
	fieldmap.RegisterEnum(r, Ranks()...)
}

// TownyObject is the common ancestor of persisted fixtures.
type TownyObject struct {
	UUID    uuid.UUID `persist:"-" json:"uuid"`
	Version int       `persist:"version" json:"version"`
}

// Resident is a member of a Town.
type Resident struct {
	ID   uuid.UUID `persist:"id" json:"id"`
	Name string    `persist:"name" json:"name"`
	Rank Rank      `persist:"rank" json:"rank"`
}

// Town embeds TownyObject, so version is listed before its own fields.
type Town struct {
	TownyObject
	Name      string     `persist:"name" json:"name"`
	Residents []Resident `persist:"residents" json:"residents"`
}

// Plot is a fixture with one field of every descriptor shape.
type Plot struct {
	TownyObject
	Owner  *Resident         `persist:"owner"`
	Ranks  []Rank            `persist:"ranks"`
	Coords [2]int            `persist:"coords"`
	Price  *float64          `persist:"price"`
	Flags  map[string]bool   `persist:"flags"`
	Tier   Rank              `persist:"tier"`
	Seats  map[string]Rank   `persist:"seats"`
	Cache  map[string][]byte `persist:"-"`
}

// NewPlot returns a plot with every field but Owner set.
func NewPlot() Plot {
	price := 12.5
	return Plot{
		TownyObject: TownyObject{UUID: uuid.New(), Version: 2},
		Ranks:       []Rank{RankResident, RankMayor},
		Coords:      [2]int{4, -7},
		Price:       &price,
		Flags:       map[string]bool{"pvp": true, "fire": false},
		Tier:        RankAssistant,
		Seats:       map[string]Rank{"alice": RankMayor},
		Cache:       map[string][]byte{"tile": {1}},
	}
}

// NewTown returns a town named name at version 5 with the given residents.
func NewTown(name string, residents ...Resident) *Town {
	return &Town{
		TownyObject: TownyObject{UUID: uuid.New(), Version: 5},
		Name:        name,
		Residents:   residents,
	}
}

// NewResident returns a resident with a fresh ID.
func NewResident(name string, rank Rank) Resident {
	return Resident{ID: uuid.New(), Name: name, Rank: rank}
}

// NewMapper returns a Mapper whose resolver knows the fixture enums.
func NewMapper() *fieldmap.Mapper {
	r := fieldmap.NewResolver()
	RegisterEnums(r)
	return fieldmap.NewMapper(fieldmap.NewFieldCache(), r)
}
