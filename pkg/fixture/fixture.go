// Package fixture is the runtime used by generated fixture engines: the
// database handle contract, statement helpers, record comparison and the
// test-case runner.
package fixture

import (
	"context"
	"database/sql/driver"
	"fmt"
)

// Record is one row keyed by field name. A key that is absent is different
// from a key holding nil.
type Record map[string]any

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured provider name onto a dialect.
func ParseDialect(provider string) (Dialect, error) {
	switch provider {
	case "postgresql", "postgres", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database provider: %s", provider)
	}
}

// DB is the database handle generated engines operate on. Implementations
// live in pgxdb and sqldb. The handle is owned by the caller; Run closes it
// once a test case finishes.
type DB interface {
	Dialect() Dialect
	// Exec runs a raw statement and returns the number of affected rows.
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)
	InsertMany(ctx context.Context, table string, records []Record) error
	// FindAll returns every row of table, ordered by the given columns when
	// provided. It never returns a nil slice on success.
	FindAll(ctx context.Context, table string, orderBy ...string) ([]Record, error)
	Close() error
}

type jsonNull struct{}

// JSONNull is stored as the JSON literal null, as opposed to a relational
// NULL. Generated engines substitute it for nil values of JSON fields.
var JSONNull = jsonNull{}

func (jsonNull) Value() (driver.Value, error) { return "null", nil }

func (jsonNull) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (jsonNull) MarshalYAML() (any, error) { return nil, nil }

func (jsonNull) String() string { return "JSONNull" }
