package graph

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

type Field struct {
	Name          string
	Type          string
	Required      bool
	ID            bool
	AutoIncrement bool
}

// Relation is a directed foreign-key edge From -> To. FromFields and
// ToFields are positionally paired and never empty.
type Relation struct {
	Field      string
	From       *Model
	To         *Model
	FromFields []string
	ToFields   []string
}

// IsSelf reports whether the relation points back at its own model.
func (r *Relation) IsSelf() bool { return r.From == r.To }

type Model struct {
	Name      string
	DBName    string
	Fields    []Field
	Relations []*Relation
}

// PrimaryKey returns the fields flagged as identifiers, in declaration order.
func (m *Model) PrimaryKey() []string {
	var keys []string
	for _, f := range m.Fields {
		if f.ID {
			keys = append(keys, f.Name)
		}
	}
	return keys
}

// AutoIncrementField returns the first auto-increment field, or "".
func (m *Model) AutoIncrementField() string {
	for _, f := range m.Fields {
		if f.AutoIncrement {
			return f.Name
		}
	}
	return ""
}

func (m *Model) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Dependencies returns the relations that constrain ordering, i.e. all
// relations except self references.
func (m *Model) Dependencies() []*Relation {
	deps := make([]*Relation, 0, len(m.Relations))
	for _, r := range m.Relations {
		if !r.IsSelf() {
			deps = append(deps, r)
		}
	}
	return deps
}

type Graph struct {
	Models []*Model
	index  map[string]*Model
}

func (g *Graph) Model(name string) (*Model, bool) {
	m, ok := g.index[name]
	return m, ok
}

// Build turns descriptors into a resolved model graph. Resolution runs in two
// passes so relations may reference models declared later in the input.
func Build(descs []types.ModelDescriptor) (*Graph, error) {
	g := &Graph{
		Models: make([]*Model, 0, len(descs)),
		index:  make(map[string]*Model, len(descs)),
	}

	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("model without a name")
		}
		if _, exists := g.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModel, d.Name)
		}

		m := &Model{Name: d.Name, DBName: d.DBName}
		if m.DBName == "" {
			m.DBName = d.Name
		}
		for _, f := range d.Fields {
			m.Fields = append(m.Fields, Field{
				Name:          f.Name,
				Type:          f.Type,
				Required:      f.Required,
				ID:            f.ID,
				AutoIncrement: f.AutoIncrement,
			})
		}

		g.Models = append(g.Models, m)
		g.index[d.Name] = m
	}

	for i, d := range descs {
		m := g.Models[i]
		for _, f := range d.Fields {
			if f.Relation == nil {
				continue
			}
			rel, err := g.resolve(m, f)
			if err != nil {
				return nil, err
			}
			m.Relations = append(m.Relations, rel)
		}
	}

	return g, nil
}

func (g *Graph) resolve(m *Model, f types.FieldDescriptor) (*Relation, error) {
	target, ok := g.index[f.Relation.Target]
	if !ok {
		return nil, &UnresolvedRelationError{Model: m.Name, Field: f.Name, Target: f.Relation.Target}
	}

	from := f.Relation.From
	if len(from) == 0 {
		from = []string{f.Name}
	}
	to := f.Relation.To
	if len(to) == 0 {
		to = target.PrimaryKey()
	}

	if len(to) == 0 {
		return nil, fmt.Errorf("%w: %s.%s: target %s has no primary key to reference", ErrMalformedRelation, m.Name, f.Name, target.Name)
	}
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: %s.%s: %d local fields paired with %d target fields",
			ErrMalformedRelation, m.Name, f.Name, len(from), len(to))
	}

	return &Relation{
		Field:      f.Name,
		From:       m,
		To:         target,
		FromFields: append([]string(nil), from...),
		ToFields:   append([]string(nil), to...),
	}, nil
}
