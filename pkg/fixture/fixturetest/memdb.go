// Package fixturetest provides an in-memory fixture.DB that records every
// operation, for tests of generated engines.
package fixturetest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
)

var deleteRegex = regexp.MustCompile("(?i)^DELETE\\s+FROM\\s+[\"`]?([^\"`\\s]+)[\"`]?")

// Op is one recorded call.
type Op struct {
	Kind  string // exec, insert, find
	Table string
	Stmt  string
	Args  []any
}

func (o Op) String() string {
	if o.Kind == "exec" {
		return "exec " + o.Stmt
	}
	return o.Kind + " " + o.Table
}

type DB struct {
	mu      sync.Mutex
	dialect fixture.Dialect
	tables  map[string][]fixture.Record
	ops     []Op
	closed  bool

	// Fail makes the operation "<kind> <table>" return the error.
	Fail map[string]error
}

func New(d fixture.Dialect) *DB {
	return &DB{
		dialect: d,
		tables:  make(map[string][]fixture.Record),
		Fail:    make(map[string]error),
	}
}

func (db *DB) Dialect() fixture.Dialect { return db.dialect }

func (db *DB) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	op := Op{Kind: "exec", Stmt: stmt, Args: args}
	if m := deleteRegex.FindStringSubmatch(stmt); m != nil {
		op.Table = m[1]
	}
	db.ops = append(db.ops, op)
	if err := db.Fail[op.String()]; err != nil {
		return 0, err
	}
	if op.Table != "" && strings.HasPrefix(strings.ToUpper(stmt), "DELETE") {
		n := int64(len(db.tables[op.Table]))
		delete(db.tables, op.Table)
		return n, nil
	}
	return 0, nil
}

func (db *DB) InsertMany(ctx context.Context, table string, records []fixture.Record) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	op := Op{Kind: "insert", Table: table}
	db.ops = append(db.ops, op)
	if err := db.Fail[op.String()]; err != nil {
		return err
	}
	db.tables[table] = append(db.tables[table], fixture.Clone(records)...)
	return nil
}

func (db *DB) FindAll(ctx context.Context, table string, orderBy ...string) ([]fixture.Record, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	op := Op{Kind: "find", Table: table}
	db.ops = append(db.ops, op)
	if err := db.Fail[op.String()]; err != nil {
		return nil, err
	}
	rows := fixture.Clone(db.tables[table])
	if rows == nil {
		rows = []fixture.Record{}
	}
	if len(orderBy) > 0 {
		rows = fixture.SortRecords(rows, orderBy)
	}
	return rows, nil
}

func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return fmt.Errorf("database handle closed twice")
	}
	db.closed = true
	return nil
}

// Put replaces the rows of table without recording an operation.
func (db *DB) Put(table string, records ...fixture.Record) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tables[table] = fixture.Clone(records)
}

func (db *DB) Rows(table string) []fixture.Record {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fixture.Clone(db.tables[table])
}

func (db *DB) Ops() []Op {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Op(nil), db.ops...)
}

// Tables returns the table touched by every op of the given kind, in call
// order.
func (db *DB) Tables(kind string) []string {
	var out []string
	for _, op := range db.Ops() {
		if op.Kind == kind && op.Table != "" {
			out = append(out, op.Table)
		}
	}
	return out
}

func (db *DB) Closed() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.closed
}

func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.ops = nil
}
