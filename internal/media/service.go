package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-media-credit/internal/identity"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

var (
	// ErrInvalidAttachment reports a registration without an id or URL.
	ErrInvalidAttachment = errors.New("media: attachment id and url are required")
	// ErrRepositoryUnavailable reports that no attachment repository was configured.
	ErrRepositoryUnavailable = errors.New("media: repository unavailable")
)

// RegisterInput describes an attachment reported by the host.
type RegisterInput struct {
	AttachmentID int64
	ParentID     int64
	URL          string
	Title        string
}

// Service tracks attachments and their stored credits. It doubles as the
// attachment resolver the credit transformer matches images with.
type Service interface {
	interfaces.AttachmentResolver
	Register(ctx context.Context, input RegisterInput) (*Attachment, error)
	Get(ctx context.Context, attachmentID int64) (*Attachment, error)
	ListByParent(ctx context.Context, parentID int64) ([]*Attachment, error)
	SaveCredit(ctx context.Context, attachmentID int64, meta CreditMeta) (*Attachment, error)
	Invalidate(ctx context.Context, attachmentID int64) error
}

// ServiceOption customises the attachment service.
type ServiceOption func(*service)

// WithCache caches resolved attachment URLs for ttl.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the timestamp source.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

type service struct {
	repo     AttachmentRepository
	cache    interfaces.CacheProvider
	cacheTTL time.Duration
	logger   interfaces.Logger
	now      func() time.Time
}

// NewService constructs the attachment service.
func NewService(repo AttachmentRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		cacheTTL: 5 * time.Minute,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Attachment, error) {
	if s.repo == nil {
		return nil, ErrRepositoryUnavailable
	}
	url := strings.TrimSpace(input.URL)
	if input.AttachmentID <= 0 || url == "" {
		return nil, ErrInvalidAttachment
	}

	now := s.now().UTC()
	existing, err := s.repo.GetByAttachmentID(ctx, input.AttachmentID)
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		record, err := s.repo.Create(ctx, &Attachment{
			ID:           identity.AttachmentUUID(input.AttachmentID),
			AttachmentID: input.AttachmentID,
			ParentID:     input.ParentID,
			URL:          url,
			Title:        input.Title,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		s.log(ctx, input.AttachmentID).Debug("media.attachment.created")
		return record, nil
	case err != nil:
		return nil, err
	}

	existing.ParentID = input.ParentID
	existing.URL = url
	existing.Title = input.Title
	existing.UpdatedAt = now
	record, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if err := s.Invalidate(ctx, input.AttachmentID); err != nil {
		return nil, err
	}
	s.log(ctx, input.AttachmentID).Debug("media.attachment.updated")
	return record, nil
}

func (s *service) Get(ctx context.Context, attachmentID int64) (*Attachment, error) {
	if s.repo == nil {
		return nil, ErrRepositoryUnavailable
	}
	return s.repo.GetByAttachmentID(ctx, attachmentID)
}

func (s *service) ListByParent(ctx context.Context, parentID int64) ([]*Attachment, error) {
	if s.repo == nil {
		return nil, ErrRepositoryUnavailable
	}
	return s.repo.ListByParent(ctx, parentID)
}

func (s *service) SaveCredit(ctx context.Context, attachmentID int64, meta CreditMeta) (*Attachment, error) {
	if s.repo == nil {
		return nil, ErrRepositoryUnavailable
	}
	record, err := s.repo.GetByAttachmentID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}

	meta.Freeform = strings.TrimSpace(meta.Freeform)
	meta.URL = strings.TrimSpace(meta.URL)
	if meta.URL == "" {
		meta.Nofollow = false
	}
	record.Credit = meta
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := s.Invalidate(ctx, attachmentID); err != nil {
		return nil, err
	}
	logging.WithFields(s.log(ctx, attachmentID), map[string]any{
		"author_id": meta.AuthorID,
		"linked":    meta.URL != "",
	}).Info("media.attachment.credit_saved")
	return updated, nil
}

// ResolveAttachmentURL implements interfaces.AttachmentResolver. Lookups that
// fail are reported as unknown and never cached.
func (s *service) ResolveAttachmentURL(ctx context.Context, attachmentID int64) (string, bool) {
	if s.repo == nil || attachmentID <= 0 {
		return "", false
	}
	key := urlCacheKey(attachmentID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			if url, ok := cached.(string); ok && url != "" {
				return url, true
			}
		}
	}

	record, err := s.repo.GetByAttachmentID(ctx, attachmentID)
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			logging.WithFields(s.log(ctx, attachmentID), map[string]any{
				"error": err,
			}).Warn("media.attachment.resolve_failed")
		}
		return "", false
	}
	if record.URL == "" {
		return "", false
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, record.URL, s.cacheTTL)
	}
	return record.URL, true
}

// Invalidate evicts the cached URL and any repository level cache.
func (s *service) Invalidate(ctx context.Context, attachmentID int64) error {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, urlCacheKey(attachmentID)); err != nil {
			return fmt.Errorf("media: invalidate %d: %w", attachmentID, err)
		}
	}
	if invalidator, ok := s.repo.(cacheInvalidator); ok {
		return invalidator.InvalidateCache(ctx)
	}
	return nil
}

func (s *service) log(ctx context.Context, attachmentID int64) interfaces.Logger {
	return logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"attachment_id": attachmentID,
	})
}

func urlCacheKey(attachmentID int64) string {
	return "media_credit:attachment_url:" + strconv.FormatInt(attachmentID, 10)
}
