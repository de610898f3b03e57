package schema

import (
	"strings"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

// TablesToModels turns parsed or introspected tables into model descriptors.
// The model name is the table name. A foreign key becomes a relation on its
// first column; a column that starts two constraints keeps the first.
func TablesToModels(tables []types.SchemaTable) []types.ModelDescriptor {
	descs := make([]types.ModelDescriptor, 0, len(tables))

	for _, table := range tables {
		desc := types.ModelDescriptor{Name: table.Name}
		position := make(map[string]int, len(table.Columns))

		for _, col := range table.Columns {
			position[col.Name] = len(desc.Fields)
			desc.Fields = append(desc.Fields, types.FieldDescriptor{
				Name:          col.Name,
				Type:          MapColumnType(col.Type),
				Required:      !col.Nullable && col.Default == "" && !col.IsAutoIncrement,
				ID:            col.IsPrimary,
				AutoIncrement: col.IsAutoIncrement,
			})
		}

		for _, fk := range table.ForeignKeys {
			if len(fk.Columns) == 0 {
				continue
			}
			i, ok := position[fk.Columns[0]]
			if !ok || desc.Fields[i].Relation != nil {
				continue
			}
			desc.Fields[i].Relation = &types.RelationDescriptor{
				Target: fk.RefTable,
				From:   append([]string(nil), fk.Columns...),
				To:     append([]string(nil), fk.RefColumns...),
			}
		}

		descs = append(descs, desc)
	}

	return descs
}

// MapColumnType maps a native column type of any supported dialect onto a
// field type. Unknown types are treated as strings.
func MapColumnType(sqlType string) string {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	if t == "TINYINT(1)" {
		return types.FieldBoolean
	}
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, " UNSIGNED")

	switch {
	case t == "BIGINT" || t == "BIGSERIAL" || t == "INT8":
		return types.FieldBigInt
	case t == "INT" || t == "INTEGER" || t == "SMALLINT" || t == "TINYINT" || t == "MEDIUMINT" ||
		t == "SERIAL" || t == "SMALLSERIAL" || t == "INT2" || t == "INT4":
		return types.FieldInt
	case t == "REAL" || t == "FLOAT" || t == "DOUBLE" || t == "DOUBLE PRECISION" || t == "FLOAT4" || t == "FLOAT8":
		return types.FieldFloat
	case t == "DECIMAL" || t == "NUMERIC" || t == "MONEY":
		return types.FieldDecimal
	case t == "BOOL" || t == "BOOLEAN":
		return types.FieldBoolean
	case t == "DATE" || t == "DATETIME" || t == "TIME" || strings.HasPrefix(t, "TIMESTAMP"):
		return types.FieldDateTime
	case t == "JSON" || t == "JSONB":
		return types.FieldJSON
	case t == "UUID":
		return types.FieldUUID
	case t == "BYTEA" || strings.HasSuffix(t, "BLOB") || strings.HasSuffix(t, "BINARY"):
		return types.FieldBytes
	default:
		return types.FieldString
	}
}
