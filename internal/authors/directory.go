package authors

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-media-credit/internal/identity"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// ErrInvalidAuthor reports an author without an id or display name.
var ErrInvalidAuthor = errors.New("authors: author id and display name are required")

// UpsertInput describes a registered author.
type UpsertInput struct {
	AuthorID    int64
	Login       string
	DisplayName string
	URL         string
}

// Directory stores authors and resolves them for credit lines.
type Directory struct {
	repo     AuthorRepository
	cache    interfaces.CacheProvider
	cacheTTL time.Duration
	logger   interfaces.Logger
	now      func() time.Time
}

// DirectoryOption customises the directory.
type DirectoryOption func(*Directory)

// WithCache caches author profiles for ttl.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) DirectoryOption {
	return func(d *Directory) {
		d.cache = cache
		if ttl > 0 {
			d.cacheTTL = ttl
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) DirectoryOption {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithNow overrides the timestamp source.
func WithNow(now func() time.Time) DirectoryOption {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDirectory constructs an author directory over repo.
func NewDirectory(repo AuthorRepository, opts ...DirectoryOption) *Directory {
	d := &Directory{
		repo:     repo,
		cacheTTL: 10 * time.Minute,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Upsert creates or updates an author.
func (d *Directory) Upsert(ctx context.Context, input UpsertInput) (*Author, error) {
	name := strings.TrimSpace(input.DisplayName)
	if input.AuthorID <= 0 || name == "" {
		return nil, ErrInvalidAuthor
	}
	now := d.now().UTC()

	existing, err := d.repo.GetByAuthorID(ctx, input.AuthorID)
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		return d.repo.Create(ctx, &Author{
			ID:          identity.AuthorUUID(input.AuthorID),
			AuthorID:    input.AuthorID,
			Login:       input.Login,
			DisplayName: name,
			URL:         strings.TrimSpace(input.URL),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	case err != nil:
		return nil, err
	}

	existing.Login = input.Login
	existing.DisplayName = name
	existing.URL = strings.TrimSpace(input.URL)
	existing.UpdatedAt = now
	updated, err := d.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if d.cache != nil {
		_ = d.cache.Delete(ctx, profileCacheKey(input.AuthorID))
	}
	return updated, nil
}

// Exists reports whether authorID is a registered author.
func (d *Directory) Exists(ctx context.Context, authorID int64) bool {
	_, ok := d.LookupAuthor(ctx, authorID)
	return ok
}

// Lookup returns the stored author record.
func (d *Directory) Lookup(ctx context.Context, authorID int64) (*Author, bool) {
	if authorID <= 0 {
		return nil, false
	}
	record, err := d.repo.GetByAuthorID(ctx, authorID)
	if err != nil {
		return nil, false
	}
	return record, true
}

// List returns all authors ordered by display name.
func (d *Directory) List(ctx context.Context) ([]*Author, error) {
	return d.repo.List(ctx)
}

// LookupAuthor implements interfaces.AuthorDirectory.
func (d *Directory) LookupAuthor(ctx context.Context, authorID int64) (interfaces.AuthorProfile, bool) {
	if d == nil || d.repo == nil || authorID <= 0 {
		return interfaces.AuthorProfile{}, false
	}
	key := profileCacheKey(authorID)
	if d.cache != nil {
		if cached, err := d.cache.Get(ctx, key); err == nil {
			if profile, ok := cached.(interfaces.AuthorProfile); ok {
				return profile, true
			}
		}
	}

	record, err := d.repo.GetByAuthorID(ctx, authorID)
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			logging.WithFields(d.logger.WithContext(ctx), map[string]any{
				"author_id": authorID,
				"error":     err,
			}).Warn("authors.lookup_failed")
		}
		return interfaces.AuthorProfile{}, false
	}
	profile := record.Profile()
	if d.cache != nil {
		_ = d.cache.Set(ctx, key, profile, d.cacheTTL)
	}
	return profile, true
}

func profileCacheKey(authorID int64) string {
	return "media_credit:author:" + strconv.FormatInt(authorID, 10)
}

var _ interfaces.AuthorDirectory = (*Directory)(nil)
