package noop

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// ErrCacheMiss is returned by the no-op cache for every lookup.
var ErrCacheMiss = errors.New("noop: cache miss")

// Cache returns an interfaces.CacheProvider that stores nothing.
func Cache() interfaces.CacheProvider {
	return cacheAdapter{}
}

type cacheAdapter struct{}

func (cacheAdapter) Get(context.Context, string) (any, error) {
	return nil, ErrCacheMiss
}

func (cacheAdapter) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (cacheAdapter) Delete(context.Context, string) error {
	return nil
}

func (cacheAdapter) Clear(context.Context) error {
	return nil
}

// Resolver returns an attachment resolver that knows no attachments.
func Resolver() interfaces.AttachmentResolver {
	return interfaces.AttachmentResolverFunc(func(context.Context, int64) (string, bool) {
		return "", false
	})
}

// Authors returns an author directory with no registered authors.
func Authors() interfaces.AuthorDirectory {
	return authorsAdapter{}
}

type authorsAdapter struct{}

func (authorsAdapter) LookupAuthor(context.Context, int64) (interfaces.AuthorProfile, bool) {
	return interfaces.AuthorProfile{}, false
}
