package interfaces

import "context"

// CreditUpdate carries the new credit values applied to a media-credit
// shortcode. AuthorID takes precedence over Freeform; Nofollow is only
// meaningful when URL is non-empty.
type CreditUpdate struct {
	AuthorID int64
	Freeform string
	URL      string
	Nofollow bool
}

// CreditTransformer rewrites the media-credit shortcode wrapping a given image
// inside post content. Implementations never fail: anomalies return the
// content unchanged.
type CreditTransformer interface {
	UpdateCredit(ctx context.Context, content string, imageID int64, update CreditUpdate) string
}

// Transform outcomes reported through CreditMetrics.
const (
	CreditOutcomeUpdated         = "updated"
	CreditOutcomeUnchanged       = "unchanged"
	CreditOutcomeUnresolvedImage = "unresolved_image"
	CreditOutcomeNoMatch         = "no_match"
)

// CreditMetrics records transformer outcomes.
type CreditMetrics interface {
	IncrementOutcome(outcome string)
}
