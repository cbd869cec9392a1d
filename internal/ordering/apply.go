package ordering

import "sort"

// Item is an in-memory sibling, used to simulate plans and verify results
type Item struct {
	ID     string
	Parent string
	Rank   int
}

// Apply returns a copy of items with plan applied, the same way the
// database layer applies it: shifts first, then the placement
func Apply(items []Item, plan Plan) []Item {
	out := append([]Item(nil), items...)

	for _, s := range plan.Shifts {
		for i := range out {
			if out[i].Parent == s.Parent && s.Covers(out[i].Rank) {
				out[i].Rank += s.Delta
			}
		}
	}

	if p := plan.Place; p != nil {
		for i := range out {
			if out[i].ID == p.Item {
				out[i].Parent = p.Parent
				out[i].Rank = p.Rank
			}
		}
	}

	return out
}

// ApplyPlacements sets the rank of every placed item
func ApplyPlacements(items []Item, placements []Placement) []Item {
	out := append([]Item(nil), items...)
	byID := make(map[string]Placement, len(placements))
	for _, p := range placements {
		byID[p.Item] = p
	}
	for i := range out {
		if p, ok := byID[out[i].ID]; ok {
			out[i].Parent = p.Parent
			out[i].Rank = p.Rank
		}
	}
	return out
}

// Children returns the IDs under parent sorted by rank
func Children(items []Item, parent string) []string {
	var kids []Item
	for _, it := range items {
		if it.Parent == parent {
			kids = append(kids, it)
		}
	}
	sort.SliceStable(kids, func(i, j int) bool { return kids[i].Rank < kids[j].Rank })

	ids := make([]string, len(kids))
	for i, k := range kids {
		ids[i] = k.ID
	}
	return ids
}

// Ranks returns the ranks of the children of parent, in no particular order
func Ranks(items []Item, parent string) []int {
	var ranks []int
	for _, it := range items {
		if it.Parent == parent {
			ranks = append(ranks, it.Rank)
		}
	}
	return ranks
}
