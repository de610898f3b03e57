// Package pgxdb adapts a pgx connection pool to fixture.DB.
package pgxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
)

type DB struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool. Close closes it.
func New(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func Open(ctx context.Context, url string) (*DB, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.MaxConns = 4
	config.MinConns = 0
	config.MaxConnIdleTime = 3 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return New(pool), nil
}

func (p *DB) Dialect() fixture.Dialect { return fixture.Postgres }

// Pool exposes the wrapped pool to the code under test.
func (p *DB) Pool() *pgxpool.Pool { return p.pool }

func (p *DB) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	tag, err := p.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *DB) InsertMany(ctx context.Context, table string, records []fixture.Record) error {
	stmts, err := fixture.InsertStatements(fixture.Postgres, table, records)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, st := range stmts {
		batch.Queue(st.SQL, st.Args...)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (p *DB) FindAll(ctx context.Context, table string, orderBy ...string) ([]fixture.Record, error) {
	query, args, err := fixture.SelectAll(fixture.Postgres, table, orderBy...)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}

	records := make([]fixture.Record, len(maps))
	for i, m := range maps {
		records[i] = fixture.Record(m)
	}
	return records, nil
}

func (p *DB) Close() error {
	p.pool.Close()
	return nil
}

var _ fixture.DB = (*DB)(nil)
