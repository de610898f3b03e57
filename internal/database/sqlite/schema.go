package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

type tableInfo struct {
	name          string
	autoIncrement bool
}

func (s *Adapter) tables(ctx context.Context) ([]tableInfo, error) {
	rows, err := s.qb.
		Select("name", "sql").
		From("sqlite_master").
		Where("type = 'table'").
		Where("name NOT LIKE 'sqlite_%'").
		OrderBy("name").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableInfo
	for rows.Next() {
		var name string
		var ddl sql.NullString
		if err := rows.Scan(&name, &ddl); err != nil {
			return nil, err
		}
		tables = append(tables, tableInfo{
			name:          name,
			autoIncrement: strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT"),
		})
	}
	return tables, rows.Err()
}

func (s *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.name
	}
	return names, nil
}

// GetCurrentSchema reads every user table. Tables are inspected
// concurrently since PRAGMA calls cannot be batched.
func (s *Adapter) GetCurrentSchema(ctx context.Context) ([]types.SchemaTable, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]types.SchemaTable, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tables {
		g.Go(func() error {
			table, err := s.inspectTable(gctx, t)
			if err != nil {
				return fmt.Errorf("failed to inspect table %s: %w", t.name, err)
			}
			results[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Adapter) inspectTable(ctx context.Context, t tableInfo) (types.SchemaTable, error) {
	table := types.SchemaTable{Name: t.name}

	rows, err := s.db.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, t.name)
	if err != nil {
		return table, err
	}
	defer rows.Close()

	pkCount := 0
	for rows.Next() {
		var column types.SchemaColumn
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&column.Name, &column.Type, &notNull, &defaultValue, &pk); err != nil {
			return table, err
		}
		column.Type = strings.ToUpper(column.Type)
		column.Nullable = notNull == 0 && pk == 0
		column.IsPrimary = pk > 0
		if pk > 0 {
			pkCount++
		}
		if defaultValue.Valid {
			column.Default = defaultValue.String
		}
		table.Columns = append(table.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return table, err
	}

	// AUTOINCREMENT is only legal on a single INTEGER PRIMARY KEY.
	if t.autoIncrement && pkCount == 1 {
		for i := range table.Columns {
			if table.Columns[i].IsPrimary && table.Columns[i].Type == "INTEGER" {
				table.Columns[i].IsAutoIncrement = true
			}
		}
	}

	fks, err := s.foreignKeys(ctx, t.name)
	if err != nil {
		return table, err
	}
	table.ForeignKeys = fks
	return table, nil
}

func (s *Adapter) foreignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, "table", "from", "to", on_delete FROM pragma_foreign_key_list(?) ORDER BY id, seq`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []types.ForeignKey
	byID := make(map[int]int)
	for rows.Next() {
		var id int
		var refTable, from, onDelete string
		var to sql.NullString
		if err := rows.Scan(&id, &refTable, &from, &to, &onDelete); err != nil {
			return nil, err
		}

		i, ok := byID[id]
		if !ok {
			i = len(fks)
			byID[id] = i
			fks = append(fks, types.ForeignKey{RefTable: refTable, OnDelete: onDelete})
		}
		fks[i].Columns = append(fks[i].Columns, from)
		if to.Valid && to.String != "" {
			fks[i].RefColumns = append(fks[i].RefColumns, to.String)
		}
	}
	return fks, rows.Err()
}
