package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-media-credit/internal/authors"
	"github.com/goliatone/go-media-credit/internal/media"
	"github.com/goliatone/go-media-credit/internal/posts"
	"github.com/goliatone/go-media-credit/internal/runtimeconfig"
)

// ErrStorageUnavailable is returned when a SQL driver cannot be opened.
var ErrStorageUnavailable = errors.New("di: storage unavailable")

// openBunDB opens the configured SQL backend. The memory driver yields nil.
func openBunDB(cfg runtimeconfig.Config) (*bun.DB, error) {
	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch cfg.StorageDriver() {
	case runtimeconfig.DriverMemory:
		return nil, nil
	case runtimeconfig.DriverSQLite:
		sqlDB, err = sql.Open("sqlite3", cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		// sqlite serialises writers; a single connection keeps in-memory
		// databases shared across queries.
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case runtimeconfig.DriverPostgres:
		sqlDB, err = sql.Open("postgres", cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	return db, nil
}

// migrate creates the module tables when they are missing.
func migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*media.Attachment)(nil),
		(*posts.Post)(nil),
		(*authors.Author)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("di: create table for %T: %w", model, err)
		}
	}
	return nil
}
