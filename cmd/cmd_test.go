package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/itrunner/internal/config"
	"github.com/Lumos-Labs-HQ/itrunner/internal/graph"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture/fixturetest"
	"github.com/Lumos-Labs-HQ/itrunner/template"
)

func init() {
	color.NoColor = true
}

func blogModels() []types.ModelDescriptor {
	return []types.ModelDescriptor{
		{Name: "Comment", DBName: "comments", Fields: []types.FieldDescriptor{
			{Name: "id", Type: types.FieldInt, ID: true},
			{Name: "post_id", Type: types.FieldInt, Relation: &types.RelationDescriptor{Target: "Post"}},
			{Name: "author_id", Type: types.FieldInt, Relation: &types.RelationDescriptor{Target: "User"}},
		}},
		{Name: "Post", DBName: "posts", Fields: []types.FieldDescriptor{
			{Name: "id", Type: types.FieldInt, ID: true},
			{Name: "author_id", Type: types.FieldInt, Relation: &types.RelationDescriptor{Target: "User"}},
			{Name: "editor_id", Type: types.FieldInt, Relation: &types.RelationDescriptor{Target: "User"}},
		}},
		{Name: "User", DBName: "users", Fields: []types.FieldDescriptor{
			{Name: "id", Type: types.FieldInt, ID: true},
		}},
	}
}

func TestBuildGraphOutput(t *testing.T) {
	out, err := buildGraphOutput(blogModels())
	if err != nil {
		t.Fatalf("buildGraphOutput failed: %v", err)
	}
	if len(out.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %+v", out.Groups)
	}

	post := out.Groups[1].Models[0]
	if post.Name != "Post" || post.Table != "posts" {
		t.Fatalf("unexpected rank 1: %+v", out.Groups[1])
	}
	if len(post.DependsOn) != 1 || post.DependsOn[0] != "User" {
		t.Errorf("parallel edges must be listed once: %v", post.DependsOn)
	}
	if comment := out.Groups[2].Models[0]; len(comment.DependsOn) != 2 {
		t.Errorf("comment dependencies = %v", comment.DependsOn)
	}
}

func TestWriteGraphFormats(t *testing.T) {
	out, err := buildGraphOutput(blogModels())
	if err != nil {
		t.Fatal(err)
	}

	var text bytes.Buffer
	if err := writeGraph(&text, out, "text"); err != nil {
		t.Fatal(err)
	}
	want := "rank 0\n  User\nrank 1\n  Post -> User\nrank 2\n  Comment -> Post, User\n"
	if text.String() != want {
		t.Errorf("text output:\n%s\nwant:\n%s", text.String(), want)
	}

	var js bytes.Buffer
	if err := writeGraph(&js, out, "json"); err != nil {
		t.Fatal(err)
	}
	var decoded graphOutput
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded.Groups) != 3 {
		t.Errorf("json groups = %+v", decoded.Groups)
	}

	var ym bytes.Buffer
	if err := writeGraph(&ym, out, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ym.String(), "depends_on:") {
		t.Errorf("yaml output:\n%s", ym.String())
	}

	if err := writeGraph(&text, out, "dot"); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestImportRecords(t *testing.T) {
	g, err := graph.Build(blogModels())
	if err != nil {
		t.Fatal(err)
	}

	db := fixturetest.New(fixture.SQLite)
	db.Put("users", fixture.Record{"id": 2}, fixture.Record{"id": 1})
	db.Put("posts", fixture.Record{"id": 10, "author_id": 1, "editor_id": 2})

	rs, err := importRecords(context.Background(), db, g, nil)
	if err != nil {
		t.Fatalf("importRecords failed: %v", err)
	}
	if len(rs) != 3 {
		t.Fatalf("expected 3 models, got %v", rs)
	}
	if rs["User"][0]["id"] != 1 {
		t.Errorf("users not ordered by primary key: %v", rs["User"])
	}
	if rs["Comment"] == nil || len(rs["Comment"]) != 0 {
		t.Errorf("empty table must import as an empty list: %#v", rs["Comment"])
	}

	var buf bytes.Buffer
	if err := writeRecordSet(&buf, rs); err != nil {
		t.Fatal(err)
	}
	var decoded map[string][]map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if len(decoded["Post"]) != 1 || decoded["Post"][0]["editor_id"] != 2 {
		t.Errorf("decoded posts = %v", decoded["Post"])
	}
}

func TestImportRecordsSelection(t *testing.T) {
	g, err := graph.Build(blogModels())
	if err != nil {
		t.Fatal(err)
	}
	db := fixturetest.New(fixture.SQLite)

	rs, err := importRecords(context.Background(), db, g, []string{"Post"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rs["User"]; ok || len(rs) != 1 {
		t.Errorf("unexpected models: %v", rs)
	}

	if _, err := importRecords(context.Background(), db, g, []string{"Ghost"}); err == nil {
		t.Error("expected unknown model error")
	}

	boom := errors.New("boom")
	db.Fail["find users"] = boom
	if _, err := importRecords(context.Background(), db, g, nil); !errors.Is(err, boom) {
		t.Errorf("expected wrapped read error, got %v", err)
	}
}

func TestWriteRecordSetFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.yaml")
	rs := map[string][]fixture.Record{"User": {{"id": 1, "name": "naruto"}}}

	if err := writeRecordSetFile(path, rs); err != nil {
		t.Fatalf("writeRecordSetFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "name: naruto") {
		t.Errorf("unexpected file content:\n%s", data)
	}

	if err := writeRecordSetFile(filepath.Join(dir, "missing", "records.yaml"), rs); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestGenerateSettings(t *testing.T) {
	cfg := config.Default("sqlite")
	base := strings.Join(generateSettings(cfg), ",")

	cfg.Gen.Runner = !cfg.Gen.Runner
	if strings.Join(generateSettings(cfg), ",") == base {
		t.Error("toggling the runner must change the settings")
	}
	cfg.Gen.Runner = !cfg.Gen.Runner
	cfg.Gen.Package = "other"
	if strings.Join(generateSettings(cfg), ",") == base {
		t.Error("changing the package must change the settings")
	}
}

func TestInitializeProject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FOO=bar"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := initializeProject(dir, template.SQLite); err != nil {
		t.Fatalf("initializeProject failed: %v", err)
	}

	for _, name := range []string{config.FileName, "db/schema.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}

	env, err := os.ReadFile(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(env), "FOO=bar\n") || !strings.Contains(string(env), "DATABASE_URL=sqlite://") {
		t.Errorf(".env = %q", env)
	}

	custom := []byte(`{"database": {"provider": "mysql"}}`)
	cfgPath := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(cfgPath, custom, 0644); err != nil {
		t.Fatal(err)
	}
	if err := initializeProject(dir, template.SQLite); err != nil {
		t.Fatal(err)
	}
	kept, _ := os.ReadFile(cfgPath)
	if !bytes.Equal(kept, custom) {
		t.Error("existing config was overwritten")
	}
	env2, _ := os.ReadFile(filepath.Join(dir, ".env"))
	if !bytes.Equal(env, env2) {
		t.Error("DATABASE_URL appended twice")
	}
}
