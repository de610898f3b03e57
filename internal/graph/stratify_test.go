package graph

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

func model(name string, targets ...string) types.ModelDescriptor {
	d := types.ModelDescriptor{
		Name:   name,
		Fields: []types.FieldDescriptor{{Name: "id", Type: types.FieldInt, ID: true}},
	}
	for i, target := range targets {
		d.Fields = append(d.Fields, types.FieldDescriptor{
			Name:     fmt.Sprintf("ref%d", i),
			Type:     types.FieldInt,
			Relation: &types.RelationDescriptor{Target: target},
		})
	}
	return d
}

func groupNames(groups []RankGroup) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		for _, m := range g.Models {
			out[i] = append(out[i], m.Name)
		}
	}
	return out
}

func mustStratify(t *testing.T, descs []types.ModelDescriptor) []RankGroup {
	t.Helper()
	g, err := Build(descs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	groups, err := Stratify(g)
	if err != nil {
		t.Fatalf("Stratify failed: %v", err)
	}
	return groups
}

func TestStratifyPostUser(t *testing.T) {
	groups := mustStratify(t, []types.ModelDescriptor{
		model("Post", "User"),
		model("User"),
	})

	got := groupNames(groups)
	if len(got) != 2 || got[0][0] != "User" || got[1][0] != "Post" {
		t.Fatalf("expected [[User] [Post]], got %v", got)
	}

	deleteOrder := groupNames(Reverse(groups))
	if deleteOrder[0][0] != "Post" || deleteOrder[1][0] != "User" {
		t.Errorf("expected delete order [[Post] [User]], got %v", deleteOrder)
	}
}

func TestStratifyLongestChain(t *testing.T) {
	// Comment depends on both Post (rank 1) and User (rank 0); it must land
	// above Post regardless of discovery order.
	groups := mustStratify(t, []types.ModelDescriptor{
		model("Comment", "User", "Post"),
		model("Post", "User"),
		model("User"),
		model("Tag"),
	})

	ranks := RankOf(groups)
	want := map[string]int{"User": 0, "Tag": 0, "Post": 1, "Comment": 2}
	for name, r := range want {
		if ranks[name] != r {
			t.Errorf("rank(%s) = %d, want %d", name, ranks[name], r)
		}
	}
	if got := groupNames(groups)[0]; len(got) != 2 || got[0] != "User" || got[1] != "Tag" {
		t.Errorf("leaves should keep input order, got %v", got)
	}
}

func TestStratifyParallelEdges(t *testing.T) {
	groups := mustStratify(t, []types.ModelDescriptor{
		model("Message", "User", "User"),
		model("User"),
	})
	if ranks := RankOf(groups); ranks["Message"] != 1 {
		t.Errorf("expected Message at rank 1, got %d", ranks["Message"])
	}
}

func TestStratifyRejectsCycles(t *testing.T) {
	tests := []struct {
		name   string
		descs  []types.ModelDescriptor
		cyclic []string
	}{
		{
			name:   "two node cycle",
			descs:  []types.ModelDescriptor{model("A", "B"), model("B", "A"), model("C")},
			cyclic: []string{"A", "B"},
		},
		{
			name:   "cycle above a leaf",
			descs:  []types.ModelDescriptor{model("Leaf"), model("X", "Leaf", "Z"), model("Y", "X"), model("Z", "Y")},
			cyclic: []string{"X", "Y", "Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.descs)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}

			groups, err := Stratify(g)
			if groups != nil {
				t.Error("expected no partial result")
			}
			if !errors.Is(err, ErrCycle) {
				t.Fatalf("expected ErrCycle, got %v", err)
			}

			var cyc *CycleError
			if !errors.As(err, &cyc) {
				t.Fatalf("expected *CycleError, got %T", err)
			}
			if fmt.Sprint(cyc.Models) != fmt.Sprint(tt.cyclic) {
				t.Errorf("cyclic models = %v, want %v", cyc.Models, tt.cyclic)
			}
		})
	}
}

func TestStratifySelfRelation(t *testing.T) {
	groups := mustStratify(t, []types.ModelDescriptor{
		model("Employee", "Employee", "Department"),
		model("Department"),
	})
	if ranks := RankOf(groups); ranks["Employee"] != 1 || ranks["Department"] != 0 {
		t.Errorf("unexpected ranks %v", ranks)
	}
}

func TestStratifyEmptyGraph(t *testing.T) {
	groups := mustStratify(t, nil)
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %v", groupNames(groups))
	}
}

// randomDAG only lets model i reference models with a larger index, which
// guarantees acyclicity while shuffling declaration order.
func randomDAG(rng *rand.Rand, n int) []types.ModelDescriptor {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("M%d", i)
	}

	descs := make([]types.ModelDescriptor, n)
	for i := range descs {
		var targets []string
		for j := i + 1; j < n; j++ {
			if rng.Intn(4) == 0 {
				targets = append(targets, names[j])
			}
		}
		descs[i] = model(names[i], targets...)
	}
	rng.Shuffle(len(descs), func(i, j int) { descs[i], descs[j] = descs[j], descs[i] })
	return descs
}

func TestStratifyProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		descs := randomDAG(rng, 1+rng.Intn(25))
		g, err := Build(descs)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		groups, err := Stratify(g)
		if err != nil {
			t.Fatalf("iteration %d: Stratify failed: %v", iter, err)
		}

		seen := make(map[string]int)
		for _, grp := range groups {
			if len(grp.Models) == 0 {
				t.Fatalf("iteration %d: empty group %d", iter, grp.Rank)
			}
			for _, m := range grp.Models {
				seen[m.Name]++
			}
		}
		for _, m := range g.Models {
			if seen[m.Name] != 1 {
				t.Fatalf("iteration %d: %s placed %d times", iter, m.Name, seen[m.Name])
			}
		}

		ranks := RankOf(groups)
		for _, m := range g.Models {
			for _, r := range m.Dependencies() {
				if ranks[m.Name] <= ranks[r.To.Name] {
					t.Fatalf("iteration %d: rank(%s)=%d not above rank(%s)=%d",
						iter, m.Name, ranks[m.Name], r.To.Name, ranks[r.To.Name])
				}
			}
		}

		again, err := Stratify(g)
		if err != nil {
			t.Fatalf("iteration %d: second Stratify failed: %v", iter, err)
		}
		if fmt.Sprint(RankOf(again)) != fmt.Sprint(ranks) {
			t.Fatalf("iteration %d: stratification not idempotent", iter)
		}
	}
}
