package schema

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/itrunner/internal/database/common"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

// ParseSQL extracts tables and their foreign keys from DDL. Statements other
// than CREATE TABLE and ALTER TABLE ... ADD FOREIGN KEY are ignored.
func ParseSQL(sql string) ([]types.SchemaTable, error) {
	var tables []types.SchemaTable
	index := make(map[string]int)

	for _, stmt := range common.ParseSQLStatements(cleanSQL(sql)) {
		switch {
		case createTableStmtRegex.MatchString(stmt):
			table, err := parseCreateTableStatement(stmt)
			if err != nil {
				return nil, err
			}
			if _, dup := index[table.Name]; dup {
				return nil, fmt.Errorf("table %s is created twice", table.Name)
			}
			index[table.Name] = len(tables)
			tables = append(tables, table)

		case alterTableStmtRegex.MatchString(stmt):
			name, fk, ok := parseAlterAddForeignKey(stmt)
			if !ok {
				continue
			}
			i, exists := index[name]
			if !exists {
				return nil, fmt.Errorf("ALTER TABLE references unknown table %s", name)
			}
			tables[i].ForeignKeys = append(tables[i].ForeignKeys, fk)
		}
	}

	return tables, nil
}

func cleanSQL(sql string) string {
	sql = commentRegex.ReplaceAllString(sql, "")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(sql, " "))
}

func parseCreateTableStatement(stmt string) (types.SchemaTable, error) {
	matches := tableRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return types.SchemaTable{}, fmt.Errorf("could not extract table name from: %s", stmt)
	}
	tableName := firstNonEmpty(matches[1:])

	start, end := strings.Index(stmt, "("), strings.LastIndex(stmt, ")")
	if start == -1 || end == -1 || end < start {
		return types.SchemaTable{}, fmt.Errorf("invalid CREATE TABLE syntax for %s", tableName)
	}

	table := types.SchemaTable{Name: tableName}
	var primaryKey []string

	for _, def := range splitColumnDefinitions(stmt[start+1 : end]) {
		if def = strings.TrimSpace(def); def == "" {
			continue
		}

		if isTableConstraint(def) {
			if fk, ok := parseForeignKeyConstraint(def); ok {
				table.ForeignKeys = append(table.ForeignKeys, fk)
			}
			if m := primaryKeyRegex.FindStringSubmatch(def); m != nil {
				primaryKey = splitIdentList(m[1])
			}
			continue
		}

		column, fk, err := parseColumnDefinition(def)
		if err != nil {
			return types.SchemaTable{}, fmt.Errorf("table %s: %w", tableName, err)
		}
		table.Columns = append(table.Columns, column)
		if fk != nil {
			table.ForeignKeys = append(table.ForeignKeys, *fk)
		}
	}

	for _, name := range primaryKey {
		for i := range table.Columns {
			if table.Columns[i].Name == name {
				table.Columns[i].IsPrimary = true
				table.Columns[i].Nullable = false
			}
		}
	}

	return table, nil
}

func parseAlterAddForeignKey(stmt string) (string, types.ForeignKey, bool) {
	matches := alterRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return "", types.ForeignKey{}, false
	}
	fk, ok := parseForeignKeyConstraint(matches[4])
	return firstNonEmpty(matches[1:4]), fk, ok
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseForeignKeyConstraint(constraint string) (types.ForeignKey, bool) {
	matches := fkRegex.FindStringSubmatch(constraint)
	if matches == nil {
		return types.ForeignKey{}, false
	}

	fk := types.ForeignKey{
		Columns:    splitIdentList(matches[1]),
		RefTable:   matches[2],
		RefColumns: splitIdentList(matches[3]),
	}
	if m := onDeleteRegex.FindStringSubmatch(constraint); m != nil {
		fk.OnDelete = strings.ToUpper(m[1])
	}
	return fk, true
}

func splitIdentList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.Trim(strings.TrimSpace(part), "\"`"); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitColumnDefinitions(defs string) []string {
	var result []string
	var current strings.Builder
	parenLevel := 0

	for _, char := range defs {
		switch char {
		case '(':
			parenLevel++
			current.WriteRune(char)
		case ')':
			parenLevel--
			current.WriteRune(char)
		case ',':
			if parenLevel == 0 {
				result = append(result, current.String())
				current.Reset()
			} else {
				current.WriteRune(char)
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

func isTableConstraint(def string) bool {
	return tableConstraintRegex.MatchString(def)
}

func parseColumnDefinition(colDef string) (types.SchemaColumn, *types.ForeignKey, error) {
	spaceIdx := strings.IndexAny(colDef, " \t")
	if spaceIdx == -1 {
		return types.SchemaColumn{}, nil, fmt.Errorf("invalid column definition: %s", colDef)
	}

	column := types.SchemaColumn{
		Name:     strings.Trim(colDef[:spaceIdx], "\"`"),
		Nullable: true,
	}
	rest := strings.TrimSpace(colDef[spaceIdx+1:])
	column.Type = extractType(rest)

	defUpper := strings.ToUpper(colDef)
	if strings.Contains(defUpper, "NOT NULL") {
		column.Nullable = false
	}
	if strings.Contains(defUpper, "PRIMARY KEY") {
		column.IsPrimary = true
		column.Nullable = false
	}
	if strings.Contains(defUpper, " UNIQUE") {
		column.IsUnique = true
	}
	typeUpper := strings.ToUpper(column.Type)
	if strings.Contains(defUpper, "AUTOINCREMENT") || strings.Contains(defUpper, "AUTO_INCREMENT") ||
		strings.HasSuffix(typeUpper, "SERIAL") || strings.Contains(defUpper, "GENERATED BY DEFAULT AS IDENTITY") ||
		strings.Contains(defUpper, "GENERATED ALWAYS AS IDENTITY") {
		column.IsAutoIncrement = true
	}

	if matches := defaultRegex.FindStringSubmatch(colDef); matches != nil {
		column.Default = matches[1]
	}

	var fk *types.ForeignKey
	if matches := referencesRegex.FindStringSubmatch(colDef); matches != nil {
		fk = &types.ForeignKey{
			Columns:  []string{column.Name},
			RefTable: matches[1],
		}
		if matches[2] != "" {
			fk.RefColumns = []string{matches[2]}
		}
		if m := onDeleteRegex.FindStringSubmatch(colDef); m != nil {
			fk.OnDelete = strings.ToUpper(m[1])
		}
	}

	return column, fk, nil
}

// extractType returns the leading type of a column definition, keeping
// parenthesised arguments such as DECIMAL(10, 2).
func extractType(rest string) string {
	restUpper := strings.ToUpper(rest)
	for _, multi := range []string{"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE", "DOUBLE PRECISION", "CHARACTER VARYING"} {
		if strings.HasPrefix(restUpper, multi) {
			return multi
		}
	}

	parenDepth := 0
	for i, ch := range rest {
		switch {
		case ch == '(':
			parenDepth++
		case ch == ')':
			parenDepth--
			if parenDepth == 0 {
				return rest[:i+1]
			}
		case parenDepth == 0 && (ch == ' ' || ch == '\t'):
			return rest[:i]
		}
	}
	return rest
}
