package authors

import (
	"context"
	"fmt"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuthorRepository persists registered authors.
type AuthorRepository interface {
	Create(ctx context.Context, author *Author) (*Author, error)
	Update(ctx context.Context, author *Author) (*Author, error)
	GetByAuthorID(ctx context.Context, authorID int64) (*Author, error)
	List(ctx context.Context) ([]*Author, error)
}

// NotFoundError is returned when an author cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewAuthorRepository creates the go-repository-bun repository for authors.
func NewAuthorRepository(db *bun.DB) repository.Repository[*Author] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Author]{
		NewRecord:     func() *Author { return &Author{} },
		GetID:         func(a *Author) uuid.UUID { return a.ID },
		SetID:         func(a *Author, id uuid.UUID) { a.ID = id },
		GetIdentifier: func() string { return "author_id" },
		GetIdentifierValue: func(a *Author) string {
			return strconv.FormatInt(a.AuthorID, 10)
		},
	})
}

// BunAuthorRepository implements AuthorRepository with optional caching.
type BunAuthorRepository struct {
	repo repository.Repository[*Author]
}

// NewBunAuthorRepository creates an author repository without caching.
func NewBunAuthorRepository(db *bun.DB) *BunAuthorRepository {
	return NewBunAuthorRepositoryWithCache(db, nil, nil)
}

// NewBunAuthorRepositoryWithCache wraps the bun repository with go-repository-cache.
func NewBunAuthorRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunAuthorRepository {
	base := NewAuthorRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunAuthorRepository{repo: base}
}

func (r *BunAuthorRepository) Create(ctx context.Context, author *Author) (*Author, error) {
	return r.repo.Create(ctx, author)
}

func (r *BunAuthorRepository) Update(ctx context.Context, author *Author) (*Author, error) {
	record, err := r.repo.Update(ctx, author,
		repository.UpdateByID(author.ID.String()),
		repository.UpdateColumns("login", "display_name", "url", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, authorKey(author.AuthorID))
	}
	return record, nil
}

func (r *BunAuthorRepository) GetByAuthorID(ctx context.Context, authorID int64) (*Author, error) {
	record, err := r.repo.GetByIdentifier(ctx, authorKey(authorID))
	if err != nil {
		return nil, mapRepositoryError(err, authorKey(authorID))
	}
	return record, nil
}

func (r *BunAuthorRepository) List(ctx context.Context) ([]*Author, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.display_name ASC")
	}))
	return records, err
}

func authorKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "author", Key: key}
	}
	return fmt.Errorf("author repository error: %w", err)
}

var _ AuthorRepository = (*BunAuthorRepository)(nil)
