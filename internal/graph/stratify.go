package graph

// RankGroup holds models whose dependencies all live in lower ranks. Models
// inside one group never reference each other.
type RankGroup struct {
	Rank   int
	Models []*Model
}

// Stratify partitions the graph into rank groups with Kahn's algorithm.
// Group 0 holds the leaves; a model's rank is the length of the longest
// dependency chain beneath it.
func Stratify(g *Graph) ([]RankGroup, error) {
	dependents := make(map[*Model][]*Model, len(g.Models))
	remaining := make(map[*Model]int, len(g.Models))
	rank := make(map[*Model]int, len(g.Models))

	queue := make([]*Model, 0, len(g.Models))
	for _, m := range g.Models {
		deps := m.Dependencies()
		remaining[m] = len(deps)
		rank[m] = 0
		for _, r := range deps {
			dependents[r.To] = append(dependents[r.To], m)
		}
		if len(deps) == 0 {
			queue = append(queue, m)
		}
	}

	var groups []RankGroup
	placed := 0
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		r := rank[m]
		for len(groups) <= r {
			groups = append(groups, RankGroup{Rank: len(groups)})
		}
		groups[r].Models = append(groups[r].Models, m)
		placed++

		// FIFO order dequeues models in non-decreasing rank, so the last
		// dependency to resolve always carries the highest rank.
		for _, d := range dependents[m] {
			rank[d] = r + 1
			remaining[d]--
			if remaining[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if placed < len(g.Models) {
		cyc := &CycleError{}
		for _, m := range g.Models {
			if remaining[m] > 0 {
				cyc.Models = append(cyc.Models, m.Name)
			}
		}
		return nil, cyc
	}

	return groups, nil
}

// RankOf maps every model name to the index of its group.
func RankOf(groups []RankGroup) map[string]int {
	ranks := make(map[string]int)
	for _, g := range groups {
		for _, m := range g.Models {
			ranks[m.Name] = g.Rank
		}
	}
	return ranks
}

// Reverse returns the groups from the highest rank down to 0.
func Reverse(groups []RankGroup) []RankGroup {
	out := make([]RankGroup, len(groups))
	for i, g := range groups {
		out[len(groups)-1-i] = g
	}
	return out
}

// Flatten returns every model in group order.
func Flatten(groups []RankGroup) []*Model {
	var out []*Model
	for _, g := range groups {
		out = append(out, g.Models...)
	}
	return out
}
