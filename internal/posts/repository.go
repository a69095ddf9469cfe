package posts

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

// PostRepository persists post content.
type PostRepository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	GetByPostID(ctx context.Context, postID int64) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
}

// NotFoundError is returned when a post cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewPostRepository creates the go-repository-bun repository for posts.
func NewPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord:     func() *Post { return &Post{} },
		GetID:         func(p *Post) uuid.UUID { return p.ID },
		SetID:         func(p *Post, id uuid.UUID) { p.ID = id },
		GetIdentifier: func() string { return "post_id" },
		GetIdentifierValue: func(p *Post) string {
			return strconv.FormatInt(p.PostID, 10)
		},
	})
}

// BunPostRepository implements PostRepository with optional caching.
type BunPostRepository struct {
	repo         repository.Repository[*Post]
	cacheService cache.CacheService
	cachePrefix  string
}

const postNamespace = "media_credit_post"

// NewBunPostRepository creates a post repository without caching.
func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

// NewBunPostRepositoryWithCache wraps the bun repository with go-repository-cache.
func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPostRepository {
	base := NewPostRepository(db)
	repo := &BunPostRepository{}
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		repo.cacheService = cacheService
		repo.cachePrefix = postNamespace + cache.KeySeparator
	}
	repo.repo = base
	return repo
}

func (r *BunPostRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	return r.repo.Create(ctx, post)
}

func (r *BunPostRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	record, err := r.repo.Update(ctx, post,
		repository.UpdateByID(post.ID.String()),
		repository.UpdateColumns("title", "content", "revision", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, postKey(post.PostID))
	}
	return record, nil
}

func (r *BunPostRepository) GetByPostID(ctx context.Context, postID int64) (*Post, error) {
	record, err := r.repo.GetByIdentifier(ctx, postKey(postID))
	if err != nil {
		return nil, mapRepositoryError(err, postKey(postID))
	}
	return record, nil
}

func (r *BunPostRepository) List(ctx context.Context) ([]*Post, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.post_id ASC")
	}))
	return records, err
}

// InvalidateCache drops cached post reads.
func (r *BunPostRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func postKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "post", Key: key}
	}
	return fmt.Errorf("post repository error: %w", err)
}

var _ PostRepository = (*BunPostRepository)(nil)
