package authors_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-media-credit/internal/authors"
	"github.com/goliatone/go-media-credit/pkg/testsupport"
)

func TestDirectoryLookupAuthor(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	dir := authors.NewDirectory(authors.NewMemoryAuthorRepository(), authors.WithCache(cache, time.Minute))

	if _, err := dir.Upsert(ctx, authors.UpsertInput{AuthorID: 4, DisplayName: " Jane Doe ", URL: "https://example.com/author/jane"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	profile, ok := dir.LookupAuthor(ctx, 4)
	if !ok || profile.DisplayName != "Jane Doe" || profile.URL != "https://example.com/author/jane" {
		t.Fatalf("unexpected profile %+v ok=%v", profile, ok)
	}
	if cache.len() != 1 {
		t.Fatalf("expected profile cached, items=%d", cache.len())
	}

	if _, err := dir.Upsert(ctx, authors.UpsertInput{AuthorID: 4, DisplayName: "Jane Roe"}); err != nil {
		t.Fatalf("upsert rename: %v", err)
	}
	profile, _ = dir.LookupAuthor(ctx, 4)
	if profile.DisplayName != "Jane Roe" {
		t.Fatalf("expected rename to evict cache, got %q", profile.DisplayName)
	}

	if dir.Exists(ctx, 5) {
		t.Fatalf("expected unknown author to be missing")
	}
}

func TestDirectoryUpsertValidation(t *testing.T) {
	dir := authors.NewDirectory(authors.NewMemoryAuthorRepository())
	for _, input := range []authors.UpsertInput{{AuthorID: 0, DisplayName: "x"}, {AuthorID: 2, DisplayName: "  "}} {
		if _, err := dir.Upsert(context.Background(), input); !errors.Is(err, authors.ErrInvalidAuthor) {
			t.Fatalf("expected ErrInvalidAuthor for %+v, got %v", input, err)
		}
	}
}

func TestAuthorRepository_WithBunAndCache(t *testing.T) {
	ctx := context.Background()

	bunDB := testsupport.NewBunDB(t, (*authors.Author)(nil))
	cacheSvc, keySerializer := testsupport.NewRepositoryCache(t, time.Minute)

	dir := authors.NewDirectory(authors.NewBunAuthorRepositoryWithCache(bunDB, cacheSvc, keySerializer))
	for _, input := range []authors.UpsertInput{
		{AuthorID: 12, DisplayName: "Zoe Park"},
		{AuthorID: 11, DisplayName: "Ada Lane", URL: "https://example.com/ada"},
	} {
		if _, err := dir.Upsert(ctx, input); err != nil {
			t.Fatalf("upsert %d: %v", input.AuthorID, err)
		}
	}

	profile, ok := dir.LookupAuthor(ctx, 11)
	if !ok || profile.DisplayName != "Ada Lane" {
		t.Fatalf("unexpected profile %+v ok=%v", profile, ok)
	}
	if _, ok := dir.LookupAuthor(ctx, 999); ok {
		t.Fatalf("expected unknown author to be missing")
	}

	list, err := dir.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].DisplayName != "Ada Lane" {
		t.Fatalf("unexpected list order: %+v", list)
	}
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]any
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]any)}
}

func (c *memoryCache) Get(_ context.Context, key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]any)
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func TestDirectoryLookupRecord(t *testing.T) {
	ctx := context.Background()
	dir := authors.NewDirectory(authors.NewMemoryAuthorRepository())
	if _, err := dir.Upsert(ctx, authors.UpsertInput{AuthorID: 9, Login: "jdoe", DisplayName: "Jane"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	author, ok := dir.Lookup(ctx, 9)
	if !ok || author.Login != "jdoe" {
		t.Fatalf("unexpected lookup %+v ok=%v", author, ok)
	}
	if _, ok := dir.Lookup(ctx, 0); ok {
		t.Fatalf("expected zero id to miss")
	}
}
