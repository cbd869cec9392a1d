// Package ordering computes rank changes for dense ordered lists.
//
// Siblings under one parent always hold ranks 0..n-1. Every operation here
// returns a Plan: a set of range shifts plus an optional placement of the
// moved item. Plans are pure data; the database layer executes each shift
// as a single multi-row UPDATE inside the caller's transaction.
package ordering

import (
	"errors"
	"sort"

	"github.com/thenoetrevino/quadro/internal/models"
)

// Unbounded marks a shift range that extends to the end of the list
const Unbounded = -1

var (
	// ErrRankOutOfRange is returned when a target position is outside the list
	ErrRankOutOfRange = models.Validation("target position out of range")
	// ErrInvalidPermutation is returned when a reorder list is not a permutation of the current children
	ErrInvalidPermutation = models.Validation("order must list every item exactly once")
	// ErrSameParent is returned by MoveAcrossLists when source and destination are the same list
	ErrSameParent = errors.New("source and destination are the same list")
)

// Shift adds Delta to the rank of every sibling under Parent whose rank
// lies in [From, To]. To == Unbounded means no upper limit.
type Shift struct {
	Parent string
	From   int
	To     int
	Delta  int
}

// Covers reports whether rank falls inside the shift range
func (s Shift) Covers(rank int) bool {
	return rank >= s.From && (s.To == Unbounded || rank <= s.To)
}

// Placement puts Item under Parent at Rank
type Placement struct {
	Item   string
	Parent string
	Rank   int
}

// Plan is the full set of rank changes for one operation.
// Shifts run in order, then Place is applied.
type Plan struct {
	Shifts []Shift
	Place  *Placement
}

// Noop reports whether the plan changes nothing
func (p Plan) Noop() bool {
	return len(p.Shifts) == 0 && p.Place == nil
}

// AppendRank returns the rank for a new last child given the current maximum
// rank (nil when the list is empty)
func AppendRank(maxRank *int) int {
	if maxRank == nil {
		return 0
	}
	return *maxRank + 1
}

// RemoveAndCompact closes the gap left by removing the child at removed
func RemoveAndCompact(parent string, removed int) Plan {
	return Plan{
		Shifts: []Shift{{Parent: parent, From: removed + 1, To: Unbounded, Delta: -1}},
	}
}

// MoveWithinList moves item from rank from to rank to inside a list of n
// children. Valid targets are 0..n-1; n is accepted and means the end of
// the list.
func MoveWithinList(parent, item string, from, to, n int) (Plan, error) {
	if from < 0 || from >= n {
		return Plan{}, ErrRankOutOfRange
	}
	if to < 0 || to > n {
		return Plan{}, ErrRankOutOfRange
	}
	if to == n {
		to = n - 1
	}
	if to == from {
		return Plan{}, nil
	}

	var shift Shift
	if from < to {
		// moving down: items between slide up
		shift = Shift{Parent: parent, From: from + 1, To: to, Delta: -1}
	} else {
		shift = Shift{Parent: parent, From: to, To: from - 1, Delta: 1}
	}

	return Plan{
		Shifts: []Shift{shift},
		Place:  &Placement{Item: item, Parent: parent, Rank: to},
	}, nil
}

// MoveAcrossLists moves item out of src (where it sits at from) into dst at
// rank to. dstCount is the number of children in dst before the move, so
// valid targets are 0..dstCount.
func MoveAcrossLists(item, src string, from int, dst string, to, dstCount int) (Plan, error) {
	if src == dst {
		return Plan{}, ErrSameParent
	}
	if from < 0 {
		return Plan{}, ErrRankOutOfRange
	}
	if to < 0 || to > dstCount {
		return Plan{}, ErrRankOutOfRange
	}

	return Plan{
		Shifts: []Shift{
			{Parent: dst, From: to, To: Unbounded, Delta: 1},
			{Parent: src, From: from + 1, To: Unbounded, Delta: -1},
		},
		Place: &Placement{Item: item, Parent: dst, Rank: to},
	}, nil
}

// Reorder assigns rank = position to every id in ids. ids must be a
// permutation of current.
func Reorder(parent string, ids, current []string) ([]Placement, error) {
	if len(ids) != len(current) {
		return nil, ErrInvalidPermutation
	}

	known := make(map[string]bool, len(current))
	for _, id := range current {
		known[id] = true
	}

	seen := make(map[string]bool, len(ids))
	placements := make([]Placement, 0, len(ids))
	for i, id := range ids {
		if !known[id] || seen[id] {
			return nil, ErrInvalidPermutation
		}
		seen[id] = true
		placements = append(placements, Placement{Item: id, Parent: parent, Rank: i})
	}

	return placements, nil
}

// Dense reports whether ranks is exactly {0..len(ranks)-1}
func Dense(ranks []int) bool {
	sorted := append([]int(nil), ranks...)
	sort.Ints(sorted)
	for i, r := range sorted {
		if r != i {
			return false
		}
	}
	return true
}
