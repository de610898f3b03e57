package codegen

import (
	"errors"
	"fmt"

	"github.com/Lumos-Labs-HQ/itrunner/internal/graph"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

var ErrNoModels = errors.New("schema declares no models")

// Plan is the template input derived from a stratified graph.
type Plan struct {
	Package       string
	Source        string
	Models        []ModelPlan
	DeleteGroups  [][]ModelPlan
	InsertGroups  [][]ModelPlan
	AutoComplete  []ModelPlan
	Runner        bool
	DefaultSeeder bool
}

type ModelPlan struct {
	Name        string
	GoName      string
	DBName      string
	JSONFields  []string
	OrderBy     []string
	ResetColumn string
	Relations   []RelationPlan
	SeedFields  []SeedField
}

// RelationPlan keeps only the first field pair; auto-completion matches on
// it alone.
type RelationPlan struct {
	Target     string
	TargetName string
	FromField  string
	ToField    string
}

type SeedField struct {
	Name string
	Type string
}

// NewPlan lays out the generated operations. Delete groups run from the
// highest rank down, insert groups from rank 0 up, and auto-completion walks
// the flattened groups in reverse.
func NewPlan(g *graph.Graph, groups []graph.RankGroup, opts Options) (*Plan, error) {
	if len(g.Models) == 0 {
		return nil, ErrNoModels
	}

	plans := make(map[*graph.Model]ModelPlan, len(g.Models))
	seen := make(map[string]string, len(g.Models))
	for _, m := range g.Models {
		mp, err := modelPlan(m)
		if err != nil {
			return nil, err
		}
		if other, dup := seen[mp.GoName]; dup {
			return nil, fmt.Errorf("models %s and %s both map to Go identifier %s", other, m.Name, mp.GoName)
		}
		seen[mp.GoName] = m.Name
		plans[m] = mp
	}

	p := &Plan{
		Package:       opts.Package,
		Source:        opts.Source,
		Runner:        opts.Runner,
		DefaultSeeder: opts.DefaultSeeder,
	}
	for _, m := range g.Models {
		p.Models = append(p.Models, plans[m])
	}
	for _, grp := range groups {
		p.InsertGroups = append(p.InsertGroups, groupPlan(grp, plans))
	}
	for _, grp := range graph.Reverse(groups) {
		p.DeleteGroups = append(p.DeleteGroups, groupPlan(grp, plans))
	}
	flat := graph.Flatten(groups)
	for i := len(flat) - 1; i >= 0; i-- {
		if mp := plans[flat[i]]; len(mp.Relations) > 0 {
			p.AutoComplete = append(p.AutoComplete, mp)
		}
	}
	return p, nil
}

func groupPlan(grp graph.RankGroup, plans map[*graph.Model]ModelPlan) []ModelPlan {
	out := make([]ModelPlan, len(grp.Models))
	for i, m := range grp.Models {
		out[i] = plans[m]
	}
	return out
}

func modelPlan(m *graph.Model) (ModelPlan, error) {
	mp := ModelPlan{
		Name:    m.Name,
		GoName:  toCamel(m.Name),
		DBName:  m.DBName,
		OrderBy: m.PrimaryKey(),
	}
	if !isValidIdentifier(mp.GoName) {
		return ModelPlan{}, fmt.Errorf("model %q cannot be turned into a Go identifier", m.Name)
	}

	mp.ResetColumn = m.AutoIncrementField()
	if mp.ResetColumn == "" && len(mp.OrderBy) == 1 {
		mp.ResetColumn = mp.OrderBy[0]
	}
	if mp.ResetColumn == "" {
		mp.ResetColumn = "id"
	}

	for _, f := range m.Fields {
		if f.Type == types.FieldJSON {
			mp.JSONFields = append(mp.JSONFields, f.Name)
		}
		if f.Required && !f.AutoIncrement {
			mp.SeedFields = append(mp.SeedFields, SeedField{Name: f.Name, Type: f.Type})
		}
	}

	for _, r := range m.Relations {
		mp.Relations = append(mp.Relations, RelationPlan{
			Target:     toCamel(r.To.Name),
			TargetName: r.To.Name,
			FromField:  r.FromFields[0],
			ToField:    r.ToFields[0],
		})
	}
	return mp, nil
}
