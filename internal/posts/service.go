package posts

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-media-credit/internal/identity"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// ErrInvalidPost reports a save without a post id.
var ErrInvalidPost = errors.New("posts: post id is required")

// SaveInput carries post content reported by the host.
type SaveInput struct {
	PostID  int64
	Title   string
	Content string
}

// Service stores post content and applies rewritten bodies.
type Service interface {
	Save(ctx context.Context, input SaveInput) (*Post, error)
	Get(ctx context.Context, postID int64) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	// ReplaceContent stores content when it differs from the current body
	// and reports whether a write happened.
	ReplaceContent(ctx context.Context, postID int64, content string) (*Post, bool, error)
}

// ServiceOption customises the post service.
type ServiceOption func(*service)

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

type service struct {
	repo   PostRepository
	logger interfaces.Logger
	now    func() time.Time
}

// NewService constructs the post service.
func NewService(repo PostRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Save(ctx context.Context, input SaveInput) (*Post, error) {
	if input.PostID <= 0 {
		return nil, ErrInvalidPost
	}
	now := s.now().UTC()

	existing, err := s.repo.GetByPostID(ctx, input.PostID)
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		return s.repo.Create(ctx, &Post{
			ID:        identity.PostUUID(input.PostID),
			PostID:    input.PostID,
			Title:     input.Title,
			Content:   input.Content,
			CreatedAt: now,
			UpdatedAt: now,
		})
	case err != nil:
		return nil, err
	}

	existing.Title = input.Title
	existing.Content = input.Content
	existing.Revision++
	existing.UpdatedAt = now
	return s.update(ctx, existing)
}

func (s *service) Get(ctx context.Context, postID int64) (*Post, error) {
	return s.repo.GetByPostID(ctx, postID)
}

func (s *service) List(ctx context.Context) ([]*Post, error) {
	return s.repo.List(ctx)
}

func (s *service) ReplaceContent(ctx context.Context, postID int64, content string) (*Post, bool, error) {
	post, err := s.repo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	if post.Content == content {
		return post, false, nil
	}

	post.Content = content
	post.Revision++
	post.UpdatedAt = s.now().UTC()
	updated, err := s.update(ctx, post)
	if err != nil {
		return nil, false, err
	}
	logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"post_id":  postID,
		"revision": updated.Revision,
	}).Debug("posts.content.replaced")
	return updated, true, nil
}

func (s *service) update(ctx context.Context, post *Post) (*Post, error) {
	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return nil, err
	}
	if invalidator, ok := s.repo.(interface{ InvalidateCache(context.Context) error }); ok {
		if err := invalidator.InvalidateCache(ctx); err != nil {
			return nil, err
		}
	}
	return updated, nil
}
