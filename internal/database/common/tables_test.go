package common

import (
	"reflect"
	"testing"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

func TestTableSetGroupsCompositeForeignKeys(t *testing.T) {
	set := NewTableSet([]string{"enrollment", "course"})
	set.AddColumn("enrollment", types.SchemaColumn{Name: "id", Type: "INTEGER"})
	set.AddColumn("enrollment", types.SchemaColumn{Name: "course_code", Type: "TEXT", Nullable: true})
	set.AddColumn("enrollment", types.SchemaColumn{Name: "course_year", Type: "INTEGER", Nullable: true})
	set.AddColumn("ghost", types.SchemaColumn{Name: "id"})

	set.MarkPrimary("enrollment", "id")
	set.AddForeignKeyColumn("enrollment", "fk_course", "course_code", "course", "code", "CASCADE")
	set.AddForeignKeyColumn("enrollment", "fk_course", "course_year", "course", "year", "CASCADE")

	tables := set.Tables()
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	enrollment := tables[0]
	if !enrollment.Columns[0].IsPrimary || enrollment.Columns[0].Nullable {
		t.Errorf("expected id to be a non-null primary key: %+v", enrollment.Columns[0])
	}

	want := []types.ForeignKey{{
		Columns:    []string{"course_code", "course_year"},
		RefTable:   "course",
		RefColumns: []string{"code", "year"},
		OnDelete:   "CASCADE",
	}}
	if !reflect.DeepEqual(enrollment.ForeignKeys, want) {
		t.Errorf("unexpected foreign keys %+v", enrollment.ForeignKeys)
	}

	if len(tables[1].Columns) != 0 {
		t.Errorf("columns of unknown tables must be dropped, got %+v", tables[1].Columns)
	}
}

func TestParseSQLStatements(t *testing.T) {
	sql := `
-- users
CREATE TABLE users (id INTEGER, note TEXT DEFAULT 'a;b');
INSERT INTO users (note) VALUES ("x;y");
`
	stmts := ParseSQLStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE users (id INTEGER, note TEXT DEFAULT 'a;b')" {
		t.Errorf("unexpected first statement %q", stmts[0])
	}
}
