package credit

import (
	"context"
	"strings"

	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/internal/shortcode"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// DefaultShortcode is the tag credits are stored under.
const DefaultShortcode = "media-credit"

// maxRecursion is how many levels below a non-matching credit the transformer
// looks for the target image.
const maxRecursion = 1

// Transformer rewrites the credit shortcode wrapping a given image. It never
// fails; every anomaly returns the input unchanged.
type Transformer struct {
	matcher   *ImageMatcher
	shortcode string
	logger    interfaces.Logger
	metrics   interfaces.CreditMetrics
}

// TransformerOption configures a Transformer.
type TransformerOption func(*Transformer)

// WithLogger attaches a logger for outcome events.
func WithLogger(logger interfaces.Logger) TransformerOption {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics records one outcome per UpdateCredit call.
func WithMetrics(metrics interfaces.CreditMetrics) TransformerOption {
	return func(t *Transformer) {
		if metrics != nil {
			t.metrics = metrics
		}
	}
}

// WithShortcodeName overrides the credit tag name.
func WithShortcodeName(name string) TransformerOption {
	return func(t *Transformer) {
		if name != "" {
			t.shortcode = name
		}
	}
}

// NewTransformer builds a transformer resolving attachment URLs through resolver.
func NewTransformer(resolver interfaces.AttachmentResolver, opts ...TransformerOption) *Transformer {
	t := &Transformer{
		matcher:   NewImageMatcher(resolver),
		shortcode: DefaultShortcode,
		logger:    logging.NoOp(),
		metrics:   NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UpdateCredit rewrites the first credit shortcode whose inner markup shows
// imageID and returns the new content.
func (t *Transformer) UpdateCredit(ctx context.Context, content string, imageID int64, update interfaces.CreditUpdate) string {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithFields(logging.Ensure(t.logger).WithContext(ctx), map[string]any{
		"image_id":  imageID,
		"shortcode": t.shortcode,
	})

	pattern, ok := t.matcher.BasenamePattern(ctx, imageID)
	if !ok {
		t.metrics.IncrementOutcome(interfaces.CreditOutcomeUnresolvedImage)
		logger.Debug("credit.transformer.unresolved_image")
		return content
	}

	updated, found := t.rewrite(content, imageID, pattern, update, 0)
	if !found {
		t.metrics.IncrementOutcome(interfaces.CreditOutcomeNoMatch)
		logger.Debug("credit.transformer.no_match")
		return content
	}
	if updated == content {
		t.metrics.IncrementOutcome(interfaces.CreditOutcomeUnchanged)
		logger.Debug("credit.transformer.unchanged")
		return content
	}

	t.metrics.IncrementOutcome(interfaces.CreditOutcomeUpdated)
	logging.WithFields(logger, map[string]any{
		"author_id": update.AuthorID,
		"linked":    update.URL != "",
	}).Info("credit.transformer.updated")
	return updated
}

// rewrite handles one level of content. A credit only claims the images in
// its own markup; images inside a nested credit belong to that credit, which
// is reached by searching the inner markup once more.
func (t *Transformer) rewrite(content string, imageID int64, pattern string, update interfaces.CreditUpdate, depth int) (string, bool) {
	for match := range shortcode.Matches(content, t.shortcode) {
		if t.matcher.Matches(t.ownMarkup(match.Inner), imageID, pattern) {
			attrs := shortcode.ParseAttributes(match.RawAttributes)
			return Apply(content, match, Rewrite(match, attrs, update)), true
		}
		if depth >= maxRecursion {
			continue
		}
		inner, found := t.rewrite(match.Inner, imageID, pattern, update, depth+1)
		if !found {
			continue
		}
		outer := match.Full[:match.InnerStart-match.Start] + inner + match.Full[match.InnerEnd-match.Start:]
		return Apply(content, match, outer), true
	}
	return content, false
}

// ownMarkup drops nested credit shortcodes from inner.
func (t *Transformer) ownMarkup(inner string) string {
	nested := shortcode.Locate(inner, t.shortcode)
	if len(nested) == 0 {
		return inner
	}
	var builder strings.Builder
	last := 0
	for _, match := range nested {
		builder.WriteString(inner[last:match.Start])
		last = match.End
	}
	builder.WriteString(inner[last:])
	return builder.String()
}

var _ interfaces.CreditTransformer = (*Transformer)(nil)
