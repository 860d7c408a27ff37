package fieldmap

import (
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Rank int

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

type TownyObject struct {
	UUID    uuid.UUID `persist:"-"`
	Version int       `persist:"version"`
}

type Resident struct {
	ID   uuid.UUID `persist:"id"`
	Name string    `persist:"name"`
	Rank Rank      `persist:"rank"`
}

type Town struct {
	TownyObject
	Name      string     `persist:"name"`
	Residents []Resident `persist:"residents"`
}

// Nation embeds Town, which embeds TownyObject.
type Nation struct {
	Town
	Capital string `persist:"capital"`
}

// Holder embeds its ancestor through a pointer that may be nil.
type Holder struct {
	*TownyObject
	Name string `persist:"name"`
}

// Node embeds itself.
type Node struct {
	*Node
	Value int
}

type Ledger struct {
	Entries []any `persist:"entries"`
}

type intSet struct {
	items map[int]struct{}
}

func (s *intSet) Len() int { return len(s.items) }

func (s *intSet) Add(v int) {
	if s.items == nil {
		s.items = make(map[int]struct{})
	}
	s.items[v] = struct{}{}
}

func (s *intSet) Contains(v int) bool {
	_, ok := s.items[v]
	return ok
}

func (s *intSet) Values() iter.Seq[int] {
	return func(yield func(int) bool) {
		for v := range s.items {
			if !yield(v) {
				return
			}
		}
	}
}

// bag is collection-shaped but erases its element type.
type bag struct{}

func (bag) Len() int          { return 0 }
func (bag) Add(any)           {}
func (bag) Contains(any) bool { return false }

type Box[T any] struct {
	Value T
}

type Crate struct {
	Box[string]
	Label string
}

type Tree []Tree

// Stamped embeds a type that encodes itself as text.
type Stamped struct {
	time.Time
	Name string `persist:"name"`
}

type sealed struct {
	secret int
}

// Wrapped embeds a struct with no exported fields.
type Wrapped struct {
	sealed
	Name string `persist:"name"`
}

// Tier is an enum whose String has a pointer receiver.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
)

func (t *Tier) String() string {
	switch *t {
	case TierBronze:
		return "Bronze"
	case TierSilver:
		return "Silver"
	default:
		return "Unknown"
	}
}

func tierConstants() []*Tier {
	bronze, silver := TierBronze, TierSilver
	return []*Tier{&bronze, &silver}
}

// rankSet is a collection of ranks kept in insertion order.
type rankSet struct {
	ranks []Rank
}

func (s *rankSet) Len() int { return len(s.ranks) }

func (s *rankSet) Add(r Rank) {
	if !s.Contains(r) {
		s.ranks = append(s.ranks, r)
	}
}

func (s *rankSet) Contains(r Rank) bool { return slices.Contains(s.ranks, r) }

func (s *rankSet) Values() iter.Seq[Rank] { return slices.Values(s.ranks) }
