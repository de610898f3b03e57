package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

// Adapter introspects a live database.
type Adapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	GetAllTableNames(ctx context.Context) ([]string, error)
	GetCurrentSchema(ctx context.Context) ([]types.SchemaTable, error)
}
