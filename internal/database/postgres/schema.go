package postgres

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Lumos-Labs-HQ/itrunner/internal/database/common"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

var typeMap = map[string]string{
	"varchar": "VARCHAR", "bpchar": "CHAR", "text": "TEXT",
	"int2": "SMALLINT", "int4": "INTEGER", "int8": "BIGINT",
	"bool": "BOOLEAN",
	"timestamptz": "TIMESTAMP WITH TIME ZONE", "timestamp": "TIMESTAMP",
	"date": "DATE", "time": "TIME", "numeric": "NUMERIC",
	"float4": "REAL", "float8": "DOUBLE PRECISION",
	"uuid": "UUID", "json": "JSON", "jsonb": "JSONB", "bytea": "BYTEA",
}

// The rows of pg_constraint restricted to the current schema. UNNEST pads
// conkey with NULL target columns for primary and unique keys.
const constraintsQuery = `
	SELECT
		src_table.relname,
		con.conname,
		con.contype::text,
		src_attr.attname,
		tgt_table.relname,
		tgt_attr.attname,
		CASE con.confdeltype
			WHEN 'a' THEN 'NO ACTION'
			WHEN 'r' THEN 'RESTRICT'
			WHEN 'c' THEN 'CASCADE'
			WHEN 'n' THEN 'SET NULL'
			WHEN 'd' THEN 'SET DEFAULT'
		END
	FROM pg_constraint con
	JOIN pg_class src_table ON con.conrelid = src_table.oid
	JOIN pg_namespace ns ON src_table.relnamespace = ns.oid
	CROSS JOIN LATERAL UNNEST(con.conkey, con.confkey) WITH ORDINALITY AS cols(src_col, tgt_col, ord)
	JOIN pg_attribute src_attr ON src_attr.attrelid = src_table.oid AND src_attr.attnum = cols.src_col
	LEFT JOIN pg_class tgt_table ON con.confrelid = tgt_table.oid
	LEFT JOIN pg_attribute tgt_attr ON tgt_attr.attrelid = tgt_table.oid AND tgt_attr.attnum = cols.tgt_col
	WHERE src_table.relname = ANY($1)
	  AND ns.nspname = current_schema()
	  AND con.contype IN ('p', 'u', 'f')
	ORDER BY src_table.relname, con.conname, cols.ord
`

func (p *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	query, args, err := p.qb.
		Select("table_name").
		From("information_schema.tables").
		Where("table_schema = current_schema()").
		Where(squirrel.Eq{"table_type": "BASE TABLE"}).
		OrderBy("table_name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// GetCurrentSchema reads every base table of the current schema with its
// columns, primary and unique keys and foreign keys.
func (p *Adapter) GetCurrentSchema(ctx context.Context) ([]types.SchemaTable, error) {
	names, err := p.GetAllTableNames(ctx)
	if err != nil {
		return nil, err
	}
	set := common.NewTableSet(names)
	if len(names) == 0 {
		return set.Tables(), nil
	}

	if err := p.loadColumns(ctx, set, names); err != nil {
		return nil, err
	}
	if err := p.loadConstraints(ctx, set, names); err != nil {
		return nil, err
	}
	return set.Tables(), nil
}

func (p *Adapter) loadColumns(ctx context.Context, set *common.TableSet, names []string) error {
	query, args, err := p.qb.
		Select("table_name", "column_name", "udt_name", "is_nullable", "column_default", "is_identity").
		From("information_schema.columns").
		Where("table_schema = current_schema()").
		Where(squirrel.Eq{"table_name": names}).
		OrderBy("table_name", "ordinal_position").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, udtName, isNullable, isIdentity string
		var columnDefault *string
		var column types.SchemaColumn

		if err := rows.Scan(&tableName, &column.Name, &udtName, &isNullable, &columnDefault, &isIdentity); err != nil {
			return err
		}

		column.Type = formatPostgresType(udtName)
		column.Nullable = isNullable == "YES"
		column.IsAutoIncrement = isIdentity == "YES"
		if columnDefault != nil {
			if strings.Contains(strings.ToLower(*columnDefault), "nextval") {
				column.IsAutoIncrement = true
			} else {
				column.Default = *columnDefault
			}
		}

		set.AddColumn(tableName, column)
	}
	return rows.Err()
}

func (p *Adapter) loadConstraints(ctx context.Context, set *common.TableSet, names []string) error {
	rows, err := p.pool.Query(ctx, constraintsQuery, names)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, constraintName, constraintType, columnName string
		var refTable, refColumn, onDelete *string

		if err := rows.Scan(&tableName, &constraintName, &constraintType, &columnName, &refTable, &refColumn, &onDelete); err != nil {
			return err
		}

		switch constraintType {
		case "p":
			set.MarkPrimary(tableName, columnName)
		case "u":
			set.MarkUnique(tableName, columnName)
		case "f":
			if refTable != nil {
				set.AddForeignKeyColumn(tableName, constraintName, columnName, *refTable, deref(refColumn), deref(onDelete))
			}
		}
	}
	return rows.Err()
}

func formatPostgresType(udtName string) string {
	if strings.HasPrefix(udtName, "_") {
		return strings.ToUpper(udtName[1:]) + "[]"
	}
	if t, ok := typeMap[udtName]; ok {
		return t
	}
	return strings.ToUpper(udtName)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
