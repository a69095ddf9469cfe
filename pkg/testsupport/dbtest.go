// Package testsupport holds helpers shared by package tests: an isolated
// sqlite-backed bun database, a repository cache and fixture loading.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbSeq atomic.Int64

// NewBunDB opens a private in-memory sqlite database, creates a table for
// each model and closes the database when the test ends. Each call gets its
// own database even with a shared cache.
func NewBunDB(t testing.TB, models ...any) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(context.Background()); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}

// NewRepositoryCache returns a go-repository-cache service with ttl and the
// default key serializer.
func NewRepositoryCache(t testing.TB, ttl time.Duration) (repocache.CacheService, repocache.KeySerializer) {
	t.Helper()
	cfg := repocache.DefaultConfig()
	cfg.TTL = ttl
	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		t.Fatalf("repository cache: %v", err)
	}
	return service, repocache.NewDefaultKeySerializer()
}
