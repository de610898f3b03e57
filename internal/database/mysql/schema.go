package mysql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/Lumos-Labs-HQ/itrunner/internal/database/common"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

func (m *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := m.qb.
		Select("table_name").
		From("information_schema.tables").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_type": "BASE TABLE"}).
		OrderBy("table_name").
		RunWith(m.db).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// GetCurrentSchema reads every base table of the connected database.
func (m *Adapter) GetCurrentSchema(ctx context.Context) ([]types.SchemaTable, error) {
	names, err := m.GetAllTableNames(ctx)
	if err != nil {
		return nil, err
	}
	set := common.NewTableSet(names)
	if len(names) == 0 {
		return set.Tables(), nil
	}

	if err := m.loadColumns(ctx, set, names); err != nil {
		return nil, err
	}
	if err := m.loadForeignKeys(ctx, set, names); err != nil {
		return nil, err
	}
	return set.Tables(), nil
}

func (m *Adapter) loadColumns(ctx context.Context, set *common.TableSet, names []string) error {
	rows, err := m.qb.
		Select("table_name", "column_name", "column_type", "is_nullable", "column_default", "column_key", "extra").
		From("information_schema.columns").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_name": names}).
		OrderBy("table_name", "ordinal_position").
		RunWith(m.db).
		QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnType, isNullable, columnKey, extra string
		var columnDefault sql.NullString
		var column types.SchemaColumn

		if err := rows.Scan(&tableName, &column.Name, &columnType, &isNullable, &columnDefault, &columnKey, &extra); err != nil {
			return err
		}

		column.Type = strings.ToUpper(columnType)
		column.Nullable = isNullable == "YES"
		column.IsUnique = columnKey == "UNI"
		column.IsAutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		if columnDefault.Valid {
			column.Default = columnDefault.String
		}

		set.AddColumn(tableName, column)
		if columnKey == "PRI" {
			set.MarkPrimary(tableName, column.Name)
		}
	}
	return rows.Err()
}

func (m *Adapter) loadForeignKeys(ctx context.Context, set *common.TableSet, names []string) error {
	rows, err := m.qb.
		Select("k.table_name", "k.constraint_name", "k.column_name", "k.referenced_table_name", "k.referenced_column_name", "r.delete_rule").
		From("information_schema.key_column_usage k").
		Join("information_schema.referential_constraints r ON r.constraint_schema = k.table_schema AND r.constraint_name = k.constraint_name AND r.table_name = k.table_name").
		Where("k.table_schema = DATABASE()").
		Where("k.referenced_table_name IS NOT NULL").
		Where(squirrel.Eq{"k.table_name": names}).
		OrderBy("k.table_name", "k.constraint_name", "k.ordinal_position").
		RunWith(m.db).
		QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, constraintName, columnName, refTable, refColumn, onDelete string
		if err := rows.Scan(&tableName, &constraintName, &columnName, &refTable, &refColumn, &onDelete); err != nil {
			return err
		}
		set.AddForeignKeyColumn(tableName, constraintName, columnName, refTable, refColumn, onDelete)
	}
	return rows.Err()
}
