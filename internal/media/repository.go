package media

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
)

// AttachmentRepository persists attachments.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) (*Attachment, error)
	Update(ctx context.Context, attachment *Attachment) (*Attachment, error)
	GetByAttachmentID(ctx context.Context, attachmentID int64) (*Attachment, error)
	ListByParent(ctx context.Context, parentID int64) ([]*Attachment, error)
	Delete(ctx context.Context, attachmentID int64) error
}

// NotFoundError is returned when an attachment cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewAttachmentRepository creates the go-repository-bun repository for attachments.
func NewAttachmentRepository(db *bun.DB) repository.Repository[*Attachment] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Attachment]{
		NewRecord:     func() *Attachment { return &Attachment{} },
		GetID:         func(a *Attachment) uuid.UUID { return a.ID },
		SetID:         func(a *Attachment, id uuid.UUID) { a.ID = id },
		GetIdentifier: func() string { return "attachment_id" },
		GetIdentifierValue: func(a *Attachment) string {
			return strconv.FormatInt(a.AttachmentID, 10)
		},
	})
}

// BunAttachmentRepository implements AttachmentRepository with optional caching.
type BunAttachmentRepository struct {
	repo         repository.Repository[*Attachment]
	cacheService cache.CacheService
	cachePrefix  string
}

const attachmentNamespace = "media_credit_attachment"

// NewBunAttachmentRepository creates an attachment repository without caching.
func NewBunAttachmentRepository(db *bun.DB) *BunAttachmentRepository {
	return NewBunAttachmentRepositoryWithCache(db, nil, nil)
}

// NewBunAttachmentRepositoryWithCache wraps the bun repository with go-repository-cache.
func NewBunAttachmentRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunAttachmentRepository {
	base := NewAttachmentRepository(db)
	repo := &BunAttachmentRepository{}
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		repo.cacheService = cacheService
		repo.cachePrefix = attachmentNamespace + cache.KeySeparator
	}
	repo.repo = base
	return repo
}

func (r *BunAttachmentRepository) Create(ctx context.Context, attachment *Attachment) (*Attachment, error) {
	record, err := r.repo.Create(ctx, attachment)
	if err != nil {
		return nil, mapRepositoryError(err, attachmentKey(attachment.AttachmentID))
	}
	return record, nil
}

func (r *BunAttachmentRepository) Update(ctx context.Context, attachment *Attachment) (*Attachment, error) {
	record, err := r.repo.Update(ctx, attachment,
		repository.UpdateByID(attachment.ID.String()),
		repository.UpdateColumns("parent_id", "url", "title", "credit", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, attachmentKey(attachment.AttachmentID))
	}
	return record, nil
}

func (r *BunAttachmentRepository) GetByAttachmentID(ctx context.Context, attachmentID int64) (*Attachment, error) {
	record, err := r.repo.GetByIdentifier(ctx, attachmentKey(attachmentID))
	if err != nil {
		return nil, mapRepositoryError(err, attachmentKey(attachmentID))
	}
	return record, nil
}

func (r *BunAttachmentRepository) ListByParent(ctx context.Context, parentID int64) ([]*Attachment, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.parent_id = ?", parentID).OrderExpr("?TableAlias.attachment_id ASC")
	}))
	return records, err
}

func (r *BunAttachmentRepository) Delete(ctx context.Context, attachmentID int64) error {
	record, err := r.GetByAttachmentID(ctx, attachmentID)
	if err != nil {
		return err
	}
	return r.repo.Delete(ctx, record)
}

// InvalidateCache drops cached attachment reads.
func (r *BunAttachmentRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func attachmentKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "attachment", Key: key}
	}
	return fmt.Errorf("attachment repository error: %w", err)
}

var _ AttachmentRepository = (*BunAttachmentRepository)(nil)
