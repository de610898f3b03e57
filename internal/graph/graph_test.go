package graph

import (
	"errors"
	"testing"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

func blogDescriptors() []types.ModelDescriptor {
	return []types.ModelDescriptor{
		{
			Name: "Post",
			Fields: []types.FieldDescriptor{
				{Name: "id", Type: types.FieldInt, Required: true, ID: true},
				{Name: "userId", Type: types.FieldInt, Required: true, Relation: &types.RelationDescriptor{Target: "User", To: []string{"id"}}},
			},
		},
		{
			Name:   "User",
			DBName: "users",
			Fields: []types.FieldDescriptor{
				{Name: "id", Type: types.FieldInt, Required: true, ID: true, AutoIncrement: true},
				{Name: "name", Type: types.FieldString, Required: true},
			},
		},
	}
}

func TestBuildResolvesForwardReferences(t *testing.T) {
	g, err := Build(blogDescriptors())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	post, ok := g.Model("Post")
	if !ok {
		t.Fatal("Post not indexed")
	}
	if len(post.Relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(post.Relations))
	}

	rel := post.Relations[0]
	user, _ := g.Model("User")
	if rel.To != user {
		t.Errorf("relation target not wired to User model")
	}
	if rel.FromFields[0] != "userId" || rel.ToFields[0] != "id" {
		t.Errorf("unexpected field pair %v -> %v", rel.FromFields, rel.ToFields)
	}
	if post.DBName != "Post" {
		t.Errorf("DBName should default to Name, got %q", post.DBName)
	}
	if user.DBName != "users" {
		t.Errorf("expected DBName users, got %q", user.DBName)
	}
	if user.AutoIncrementField() != "id" {
		t.Errorf("expected auto increment field id, got %q", user.AutoIncrementField())
	}
}

func TestBuildDefaultsToTargetPrimaryKey(t *testing.T) {
	descs := blogDescriptors()
	descs[0].Fields[1].Relation.To = nil

	g, err := Build(descs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	post, _ := g.Model("Post")
	if got := post.Relations[0].ToFields; len(got) != 1 || got[0] != "id" {
		t.Errorf("expected to-fields [id], got %v", got)
	}
}

func TestBuildUnresolvedTarget(t *testing.T) {
	descs := blogDescriptors()
	descs[0].Fields[1].Relation.Target = "Account"

	g, err := Build(descs)
	if g != nil {
		t.Error("expected no partial graph")
	}
	if !errors.Is(err, ErrUnresolvedRelation) {
		t.Fatalf("expected ErrUnresolvedRelation, got %v", err)
	}

	var unresolved *UnresolvedRelationError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected *UnresolvedRelationError, got %T", err)
	}
	if unresolved.Model != "Post" || unresolved.Target != "Account" {
		t.Errorf("unexpected error detail: %+v", unresolved)
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	descs := append(blogDescriptors(), types.ModelDescriptor{Name: "User"})
	if _, err := Build(descs); !errors.Is(err, ErrDuplicateModel) {
		t.Fatalf("expected ErrDuplicateModel, got %v", err)
	}
}

func TestBuildRejectsUnpairedFields(t *testing.T) {
	descs := blogDescriptors()
	descs[0].Fields[1].Relation.From = []string{"userId", "tenantId"}

	if _, err := Build(descs); !errors.Is(err, ErrMalformedRelation) {
		t.Fatalf("expected ErrMalformedRelation, got %v", err)
	}
}

func TestSelfRelationIsNotADependency(t *testing.T) {
	g, err := Build([]types.ModelDescriptor{{
		Name: "Category",
		Fields: []types.FieldDescriptor{
			{Name: "id", Type: types.FieldInt, ID: true},
			{Name: "parentId", Type: types.FieldInt, Relation: &types.RelationDescriptor{Target: "Category"}},
		},
	}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	m := g.Models[0]
	if len(m.Relations) != 1 || !m.Relations[0].IsSelf() {
		t.Fatalf("expected one self relation, got %+v", m.Relations)
	}
	if len(m.Dependencies()) != 0 {
		t.Errorf("self relation must not count as a dependency")
	}
}
