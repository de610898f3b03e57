package fixture

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
)

// QuoteIdent quotes a table or column name for the dialect.
func QuoteIdent(d Dialect, name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Builder returns a squirrel statement builder with the dialect's
// placeholder format.
func Builder(d Dialect) squirrel.StatementBuilderType {
	if d == Postgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// DeleteAll removes every row of table.
func DeleteAll(ctx context.Context, db DB, table string) error {
	stmt, args, err := Builder(db.Dialect()).Delete(QuoteIdent(db.Dialect(), table)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete for %s: %w", table, err)
	}
	if _, err := db.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// Statement is a built SQL statement with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// MaxBatchRows caps the number of rows in one INSERT.
const MaxBatchRows = 100

// maxBindParams is the bind parameter limit of each dialect.
var maxBindParams = map[Dialect]int{
	Postgres: 65535,
	MySQL:    65535,
	SQLite:   32766,
}

// BatchRows returns how many rows of the given width fit in one INSERT.
func BatchRows(d Dialect, columns int) int {
	limit, ok := maxBindParams[d]
	if !ok || columns == 0 {
		return MaxBatchRows
	}
	return max(1, min(MaxBatchRows, limit/columns))
}

// InsertStatements builds multi-row INSERTs for records. Consecutive records
// with the same set of keys share statements of at most BatchRows rows; keys
// a record omits are left to the column default rather than inserted as NULL.
func InsertStatements(d Dialect, table string, records []Record) ([]Statement, error) {
	qb := Builder(d)
	quoted := QuoteIdent(d, table)

	var stmts []Statement
	for start := 0; start < len(records); {
		cols := sortedKeys(records[start])
		end := start + 1
		for end < len(records) && sameKeys(records[end], cols) {
			end++
		}

		if len(cols) == 0 {
			for i := start; i < end; i++ {
				stmts = append(stmts, Statement{SQL: defaultValuesInsert(d, quoted)})
			}
			start = end
			continue
		}

		quotedCols := make([]string, len(cols))
		for i, c := range cols {
			quotedCols[i] = QuoteIdent(d, c)
		}
		size := BatchRows(d, len(cols))
		for lo := start; lo < end; lo += size {
			hi := min(lo+size, end)
			ins := qb.Insert(quoted).Columns(quotedCols...)
			for _, r := range records[lo:hi] {
				values := make([]any, len(cols))
				for i, c := range cols {
					values[i] = r[c]
				}
				ins = ins.Values(values...)
			}

			sql, args, err := ins.ToSql()
			if err != nil {
				return nil, fmt.Errorf("failed to build insert for %s: %w", table, err)
			}
			stmts = append(stmts, Statement{SQL: sql, Args: args})
		}
		start = end
	}
	return stmts, nil
}

func defaultValuesInsert(d Dialect, quotedTable string) string {
	if d == MySQL {
		return "INSERT INTO " + quotedTable + " () VALUES ()"
	}
	return "INSERT INTO " + quotedTable + " DEFAULT VALUES"
}

func sortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameKeys(r Record, cols []string) bool {
	if len(r) != len(cols) {
		return false
	}
	for _, c := range cols {
		if _, ok := r[c]; !ok {
			return false
		}
	}
	return true
}

// SelectAll builds the query FindAll implementations run.
func SelectAll(d Dialect, table string, orderBy ...string) (string, []any, error) {
	q := Builder(d).Select("*").From(QuoteIdent(d, table))
	for _, col := range orderBy {
		q = q.OrderBy(QuoteIdent(d, col))
	}
	return q.ToSql()
}

// ResetSequence makes the next generated key of table.column equal to next.
func ResetSequence(ctx context.Context, db DB, table, column string, next int64) error {
	d := db.Dialect()
	qb := Builder(d)

	var stmts []squirrel.Sqlizer
	switch d {
	case Postgres:
		stmts = append(stmts, qb.Select().Column(squirrel.Expr(
			"setval(pg_get_serial_sequence(?, ?), ?, false)", QuoteIdent(d, table), column, next)))
	case MySQL:
		stmts = append(stmts, squirrel.Expr(fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = %d", QuoteIdent(d, table), next)))
	case SQLite:
		// sqlite_sequence stores the last issued key, not the next one.
		stmts = append(stmts,
			qb.Delete("sqlite_sequence").Where(squirrel.Eq{"name": table}),
			qb.Insert("sqlite_sequence").Columns("name", "seq").Values(table, next-1),
		)
	default:
		return fmt.Errorf("unsupported dialect: %s", d)
	}

	for _, s := range stmts {
		stmt, args, err := s.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build sequence reset for %s: %w", table, err)
		}
		if _, err := db.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to reset sequence of %s.%s: %w", table, column, err)
		}
	}
	return nil
}
