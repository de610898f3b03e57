package common

import "github.com/Lumos-Labs-HQ/itrunner/internal/types"

// TableSet assembles introspected rows into tables. Foreign key columns are
// grouped by constraint name, in the order they are added.
type TableSet struct {
	tables []types.SchemaTable
	index  map[string]int
	fks    map[string]map[string]int
}

func NewTableSet(names []string) *TableSet {
	s := &TableSet{
		tables: make([]types.SchemaTable, len(names)),
		index:  make(map[string]int, len(names)),
		fks:    make(map[string]map[string]int, len(names)),
	}
	for i, name := range names {
		s.tables[i].Name = name
		s.index[name] = i
	}
	return s
}

func (s *TableSet) table(name string) *types.SchemaTable {
	i, ok := s.index[name]
	if !ok {
		return nil
	}
	return &s.tables[i]
}

func (s *TableSet) column(table, column string) *types.SchemaColumn {
	t := s.table(table)
	if t == nil {
		return nil
	}
	for i := range t.Columns {
		if t.Columns[i].Name == column {
			return &t.Columns[i]
		}
	}
	return nil
}

// AddColumn appends col to table. Rows for unknown tables are ignored.
func (s *TableSet) AddColumn(table string, col types.SchemaColumn) {
	if t := s.table(table); t != nil {
		t.Columns = append(t.Columns, col)
	}
}

func (s *TableSet) MarkPrimary(table, column string) {
	if c := s.column(table, column); c != nil {
		c.IsPrimary = true
		c.Nullable = false
	}
}

func (s *TableSet) MarkUnique(table, column string) {
	if c := s.column(table, column); c != nil {
		c.IsUnique = true
	}
}

// AddForeignKeyColumn adds one column pair of the named constraint. An empty
// refColumn leaves the target column to the referenced primary key.
func (s *TableSet) AddForeignKeyColumn(table, constraint, column, refTable, refColumn, onDelete string) {
	t := s.table(table)
	if t == nil {
		return
	}
	byName, ok := s.fks[table]
	if !ok {
		byName = make(map[string]int)
		s.fks[table] = byName
	}

	i, ok := byName[constraint]
	if !ok {
		i = len(t.ForeignKeys)
		byName[constraint] = i
		t.ForeignKeys = append(t.ForeignKeys, types.ForeignKey{RefTable: refTable, OnDelete: onDelete})
	}

	fk := &t.ForeignKeys[i]
	fk.Columns = append(fk.Columns, column)
	if refColumn != "" {
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}
}

func (s *TableSet) Tables() []types.SchemaTable {
	return s.tables
}
