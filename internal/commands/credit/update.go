package creditcmd

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-media-credit/internal/commands"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/internal/media"
	"github.com/goliatone/go-media-credit/internal/posts"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

const updateAttachmentCreditMessageType = "media_credit.attachment.update"

// ErrUnknownAuthor reports a credit naming an author the directory does not know.
var ErrUnknownAuthor = errors.New("creditcmd: unknown author")

// UpdateAttachmentCreditCommand stores a new credit on an attachment and
// propagates it into the parent post's content.
type UpdateAttachmentCreditCommand struct {
	AttachmentID int64  `json:"attachment_id"`
	AuthorID     int64  `json:"author_id,omitempty"`
	Freeform     string `json:"freeform,omitempty"`
	URL          string `json:"url,omitempty"`
	Nofollow     bool   `json:"nofollow,omitempty"`
	// PostID overrides the attachment's parent post.
	PostID int64 `json:"post_id,omitempty"`
	// AllowEmpty accepts a credit with neither author nor freeform name.
	AllowEmpty bool `json:"allow_empty,omitempty"`
}

// Type implements command.Message.
func (UpdateAttachmentCreditCommand) Type() string { return updateAttachmentCreditMessageType }

// Validate implements command.Message.
func (m UpdateAttachmentCreditCommand) Validate() error {
	errs := validation.Errors{}
	if m.AttachmentID <= 0 {
		errs["attachment_id"] = validation.NewError("media_credit.attachment.update.attachment_required", "attachment_id must be positive")
	}
	if m.AuthorID < 0 {
		errs["author_id"] = validation.NewError("media_credit.attachment.update.author_invalid", "author_id must be zero or positive")
	}
	if m.PostID < 0 {
		errs["post_id"] = validation.NewError("media_credit.attachment.update.post_invalid", "post_id must be zero or positive")
	}
	if m.AuthorID == 0 && strings.TrimSpace(m.Freeform) == "" && !m.AllowEmpty {
		errs["freeform"] = validation.NewError("media_credit.attachment.update.credit_required", "freeform is required when no author_id is given")
	}
	if err := validation.Validate(m.URL, validation.By(httpURL)); err != nil {
		errs["url"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func httpURL(value any) error {
	raw, _ := value.(string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return validation.NewError("media_credit.attachment.update.url_invalid", "url must be an absolute http or https URL")
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return nil
	}
	return validation.NewError("media_credit.attachment.update.url_scheme", "url must use http or https")
}

// LogFields identifies the attachment on command log entries and reports.
func (m UpdateAttachmentCreditCommand) LogFields() map[string]any {
	fields := map[string]any{"attachment_id": m.AttachmentID}
	if m.AuthorID > 0 {
		fields["author_id"] = m.AuthorID
	}
	if m.PostID > 0 {
		fields["post_id"] = m.PostID
	}
	return fields
}

// Update converts the command into the transformer's update record.
func (m UpdateAttachmentCreditCommand) Update() interfaces.CreditUpdate {
	return m.meta().Update()
}

func (m UpdateAttachmentCreditCommand) meta() media.CreditMeta {
	meta := media.CreditMeta{
		AuthorID: m.AuthorID,
		Freeform: strings.TrimSpace(m.Freeform),
		URL:      strings.TrimSpace(m.URL),
		Nofollow: m.Nofollow,
	}
	if meta.AuthorID > 0 {
		meta.Freeform = ""
	}
	return meta
}

// AttachmentStore is the attachment side the handler writes to.
type AttachmentStore interface {
	Get(ctx context.Context, attachmentID int64) (*media.Attachment, error)
	SaveCredit(ctx context.Context, attachmentID int64, meta media.CreditMeta) (*media.Attachment, error)
}

// PostStore is the post side the handler rewrites.
type PostStore interface {
	Get(ctx context.Context, postID int64) (*posts.Post, error)
	ReplaceContent(ctx context.Context, postID int64, content string) (*posts.Post, bool, error)
}

// UpdateResult describes what an update changed.
type UpdateResult struct {
	Attachment     *media.Attachment
	PostID         int64
	ContentChanged bool
	Content        string
}

// UpdateAttachmentCreditHandler applies credit updates.
type UpdateAttachmentCreditHandler struct {
	attachments AttachmentStore
	posts       PostStore
	transformer interfaces.CreditTransformer
	authors     interfaces.AuthorDirectory
	logger      interfaces.Logger
	timeout     time.Duration
	metrics     commands.Metrics
	inner       *commands.Handler[UpdateAttachmentCreditCommand]
}

// HandlerOption customises the update handler.
type HandlerOption func(*UpdateAttachmentCreditHandler)

// WithAuthors rejects author ids the directory cannot resolve.
func WithAuthors(authors interfaces.AuthorDirectory) HandlerOption {
	return func(h *UpdateAttachmentCreditHandler) {
		h.authors = authors
	}
}

// WithTimeout bounds each update; zero disables the deadline.
func WithTimeout(timeout time.Duration) HandlerOption {
	return func(h *UpdateAttachmentCreditHandler) {
		if timeout >= 0 {
			h.timeout = timeout
		}
	}
}

// WithMetrics records each run's duration and outcome.
func WithMetrics(metrics commands.Metrics) HandlerOption {
	return func(h *UpdateAttachmentCreditHandler) {
		h.metrics = metrics
	}
}

// NewUpdateAttachmentCreditHandler wires the handler. posts may be nil, in
// which case parent content is never rewritten.
func NewUpdateAttachmentCreditHandler(attachments AttachmentStore, postStore PostStore, transformer interfaces.CreditTransformer, logger interfaces.Logger, opts ...HandlerOption) *UpdateAttachmentCreditHandler {
	h := &UpdateAttachmentCreditHandler{
		attachments: attachments,
		posts:       postStore,
		transformer: transformer,
		logger:      logging.Ensure(logger),
		timeout:     commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.inner = commands.NewHandler(func(ctx context.Context, msg UpdateAttachmentCreditCommand) error {
		_, err := h.apply(ctx, msg)
		return err
	},
		commands.WithLogger[UpdateAttachmentCreditCommand](h.logger),
		commands.WithOperation[UpdateAttachmentCreditCommand]("media_credit.attachment.update"),
		commands.WithTimeout[UpdateAttachmentCreditCommand](h.timeout),
		commands.WithObserver(commands.MetricsObserver[UpdateAttachmentCreditCommand](h.metrics)),
	)
	return h
}

// Execute satisfies command.Commander[UpdateAttachmentCreditCommand].
func (h *UpdateAttachmentCreditHandler) Execute(ctx context.Context, msg UpdateAttachmentCreditCommand) error {
	return h.inner.Execute(ctx, msg)
}

// Apply runs the update and returns its result.
func (h *UpdateAttachmentCreditHandler) Apply(ctx context.Context, msg UpdateAttachmentCreditCommand) (UpdateResult, error) {
	var result UpdateResult
	err := h.inner.Run(ctx, msg, func(ctx context.Context, msg UpdateAttachmentCreditCommand) error {
		var err error
		result, err = h.apply(ctx, msg)
		return err
	})
	return result, err
}

func (h *UpdateAttachmentCreditHandler) apply(ctx context.Context, msg UpdateAttachmentCreditCommand) (UpdateResult, error) {
	if msg.AuthorID > 0 && h.authors != nil {
		if _, ok := h.authors.LookupAuthor(ctx, msg.AuthorID); !ok {
			return UpdateResult{}, goerrors.Wrap(ErrUnknownAuthor, goerrors.CategoryValidation, "author does not exist").
				WithTextCode("MEDIA_CREDIT_UNKNOWN_AUTHOR")
		}
	}

	attachment, err := h.attachments.Get(ctx, msg.AttachmentID)
	if err != nil {
		return UpdateResult{}, err
	}
	saved, err := h.attachments.SaveCredit(ctx, msg.AttachmentID, msg.meta())
	if err != nil {
		return UpdateResult{}, err
	}

	result := UpdateResult{Attachment: saved, PostID: msg.PostID}
	if result.PostID == 0 {
		result.PostID = attachment.ParentID
	}
	logger := logging.WithAttachment(h.logger.WithContext(ctx), msg.AttachmentID, result.PostID)
	if result.PostID == 0 || h.posts == nil || h.transformer == nil {
		logger.Debug("media_credit.command.update.no_parent")
		return result, nil
	}

	post, err := h.posts.Get(ctx, result.PostID)
	if err != nil {
		return result, err
	}
	content := h.transformer.UpdateCredit(ctx, post.Content, msg.AttachmentID, saved.Credit.Update())
	updated, changed, err := h.posts.ReplaceContent(ctx, result.PostID, content)
	if err != nil {
		return result, err
	}
	result.ContentChanged = changed
	result.Content = updated.Content

	logging.WithFields(logger, map[string]any{
		"content_changed": changed,
	}).Info("media_credit.command.update.completed")
	return result, nil
}
