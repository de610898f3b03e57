// Package sqldb adapts a database/sql handle to fixture.DB. Drivers are not
// imported here; register the one you need (lib/pq, go-sql-driver/mysql,
// mattn/go-sqlite3 or modernc.org/sqlite) in the calling package.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
)

type DB struct {
	db      *sql.DB
	dialect fixture.Dialect
}

// New wraps an open handle. Close closes it.
func New(db *sql.DB, d fixture.Dialect) *DB {
	return &DB{db: db, dialect: d}
}

// Open opens a handle with the registered driver. The dialect is derived
// from the driver name.
func Open(driverName, dsn string) (*DB, error) {
	d, err := dialectOf(driverName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(3 * time.Minute)
	return New(db, d), nil
}

func dialectOf(driverName string) (fixture.Dialect, error) {
	switch driverName {
	case "postgres", "pgx":
		return fixture.Postgres, nil
	case "mysql":
		return fixture.MySQL, nil
	case "sqlite3", "sqlite":
		return fixture.SQLite, nil
	}
	return "", fmt.Errorf("unsupported driver: %s", driverName)
}

func (s *DB) Dialect() fixture.Dialect { return s.dialect }

// SQL exposes the wrapped handle to the code under test.
func (s *DB) SQL() *sql.DB { return s.db }

func (s *DB) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (s *DB) InsertMany(ctx context.Context, table string, records []fixture.Record) error {
	converted := make([]fixture.Record, len(records))
	for i, r := range records {
		c, err := toDriverRecord(r)
		if err != nil {
			return fmt.Errorf("failed to convert %s record %d: %w", table, i, err)
		}
		converted[i] = c
	}

	stmts, err := fixture.InsertStatements(s.dialect, table, converted)
	if err != nil {
		return err
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st.SQL, st.Args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// toDriverRecord encodes maps, slices and structs as JSON text since
// database/sql drivers cannot bind them directly.
func toDriverRecord(r fixture.Record) (fixture.Record, error) {
	out := make(fixture.Record, len(r))
	for k, v := range r {
		switch v.(type) {
		case nil, []byte, time.Time:
			out[k] = v
			continue
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Map, reflect.Slice, reflect.Array:
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			out[k] = string(data)
		default:
			out[k] = v
		}
	}
	return out, nil
}

func (s *DB) FindAll(ctx context.Context, table string, orderBy ...string) ([]fixture.Record, error) {
	query, args, err := fixture.SelectAll(s.dialect, table, orderBy...)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	records := []fixture.Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}

		rec := make(fixture.Record, len(columns))
		for i, col := range columns {
			rec[col.Name()] = fromDriverValue(col.DatabaseTypeName(), values[i])
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// fromDriverValue turns text returned as bytes into strings, leaving binary
// column types untouched.
func fromDriverValue(dbType string, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	t := strings.ToUpper(dbType)
	if strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY") || t == "BYTEA" {
		return b
	}
	return string(b)
}

func (s *DB) Close() error {
	return s.db.Close()
}

var _ fixture.DB = (*DB)(nil)
