package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names registered by mattn/go-sqlite3 (cgo) and modernc.org/sqlite.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

type Adapter struct {
	db     *sql.DB
	qb     squirrel.StatementBuilderType
	driver string
}

func New() *Adapter {
	return NewWithDriver(DriverCGO)
}

func NewWithDriver(driver string) *Adapter {
	return &Adapter{
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		driver: driver,
	}
}

// DSN turns a sqlite:// URL or plain path into a DSN for driver with
// foreign keys enforced.
func DSN(url, driver string) string {
	dsn := strings.TrimPrefix(url, "sqlite://")
	if strings.Contains(dsn, "?") {
		return dsn
	}
	if driver == DriverPure {
		return dsn + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}
	return dsn + "?cache=shared&_journal_mode=WAL&_foreign_keys=1"
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	db, err := sql.Open(s.driver, DSN(url, s.driver))
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
