package database

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Lumos-Labs-HQ/itrunner/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/itrunner/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/itrunner/internal/database/sqlite"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture/pgxdb"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture/sqldb"
)

// Drivers selectable per dialect. The first one of each list is the default.
var Drivers = map[fixture.Dialect][]string{
	fixture.Postgres: {"pgx", "pq"},
	fixture.MySQL:    {"mysql"},
	fixture.SQLite:   {sqlite.DriverCGO, sqlite.DriverPure},
}

// ResolveDriver validates driver for d, returning the default when empty.
func ResolveDriver(d fixture.Dialect, driver string) (string, error) {
	supported, ok := Drivers[d]
	if !ok {
		return "", fmt.Errorf("unsupported dialect: %s", d)
	}
	if driver == "" {
		return supported[0], nil
	}
	for _, s := range supported {
		if s == driver {
			return driver, nil
		}
	}
	return "", fmt.Errorf("driver %s is not available for %s. Supported drivers: %v", driver, d, supported)
}

func NewAdapter(provider, driver string) (Adapter, error) {
	d, err := fixture.ParseDialect(provider)
	if err != nil {
		return nil, err
	}
	driver, err = ResolveDriver(d, driver)
	if err != nil {
		return nil, err
	}

	switch d {
	case fixture.MySQL:
		return mysql.New(), nil
	case fixture.SQLite:
		return sqlite.NewWithDriver(driver), nil
	default:
		return postgres.New(), nil
	}
}

// OpenFixtureDB opens the handle generated engines and the import command
// operate on.
func OpenFixtureDB(ctx context.Context, provider, driver, url string) (fixture.DB, error) {
	d, err := fixture.ParseDialect(provider)
	if err != nil {
		return nil, err
	}
	driver, err = ResolveDriver(d, driver)
	if err != nil {
		return nil, err
	}

	var db fixture.DB
	switch {
	case d == fixture.Postgres && driver == "pgx":
		db, err = pgxdb.Open(ctx, url)
	case d == fixture.Postgres:
		db, err = sqldb.Open("postgres", url)
	case d == fixture.MySQL:
		db, err = sqldb.Open("mysql", mysql.DSN(url))
	default:
		db, err = sqldb.Open(driver, sqlite.DSN(url, driver))
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}
