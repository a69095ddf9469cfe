package interfaces

import "context"

// AttachmentResolver maps an attachment identifier to its stored source URL.
// The boolean result is false when the identifier is unknown or the
// attachment has been deleted.
type AttachmentResolver interface {
	ResolveAttachmentURL(ctx context.Context, attachmentID int64) (string, bool)
}

// AttachmentResolverFunc adapts a plain function to AttachmentResolver.
type AttachmentResolverFunc func(ctx context.Context, attachmentID int64) (string, bool)

// ResolveAttachmentURL implements AttachmentResolver.
func (fn AttachmentResolverFunc) ResolveAttachmentURL(ctx context.Context, attachmentID int64) (string, bool) {
	if fn == nil {
		return "", false
	}
	return fn(ctx, attachmentID)
}

// AuthorDirectory resolves registered author ids to display details.
type AuthorDirectory interface {
	LookupAuthor(ctx context.Context, authorID int64) (AuthorProfile, bool)
}

// AuthorProfile is the subset of author data needed to render a credit line.
type AuthorProfile struct {
	ID          int64
	DisplayName string
	URL         string
}
