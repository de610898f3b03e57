package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
)

type Adapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

var sslModes = strings.NewReplacer(
	"ssl-mode=REQUIRED", "tls=skip-verify",
	"ssl-mode=DISABLED", "tls=false",
	"ssl-mode=VERIFY_CA", "tls=true",
	"ssl-mode=VERIFY_IDENTITY", "tls=true",
	"sslmode=require", "tls=skip-verify",
	"sslmode=disable", "tls=false",
	"sslmode=verify-ca", "tls=true",
	"sslmode=verify-full", "tls=true",
)

// DSN converts a mysql:// URL into a go-sql-driver DSN. Anything else is
// returned unchanged. parseTime is enabled so DATETIME columns scan as
// time.Time.
func DSN(url string) string {
	dsn := url
	if strings.HasPrefix(url, "mysql://") {
		dsn = strings.TrimPrefix(url, "mysql://")

		if atIndex := strings.LastIndex(dsn, "@"); atIndex > 0 {
			credentials := dsn[:atIndex]
			remainder := dsn[atIndex+1:]

			if slashIndex := strings.Index(remainder, "/"); slashIndex > 0 {
				hostPort := remainder[:slashIndex]
				dbAndParams := sslModes.Replace(remainder[slashIndex+1:])
				dsn = fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
			}
		}
	}

	if !strings.Contains(dsn, "parseTime=") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}
	return dsn
}

func (m *Adapter) Connect(ctx context.Context, url string) error {
	db, err := sql.Open("mysql", DSN(url))
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	m.db = db
	return nil
}

func (m *Adapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
