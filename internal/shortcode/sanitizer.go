package shortcode

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

var defaultSchemes = []string{"http", "https"}

// Sanitizer cleans rendered credit markup with a bluemonday policy and
// checks credit links before they are written into a shortcode.
type Sanitizer struct {
	policy  *bluemonday.Policy
	schemes []string
}

// SanitizerOption configures a Sanitizer.
type SanitizerOption func(*Sanitizer)

// WithURLSchemes replaces the accepted link schemes (http and https by default).
func WithURLSchemes(schemes ...string) SanitizerOption {
	return func(s *Sanitizer) {
		s.schemes = s.schemes[:0]
		for _, scheme := range schemes {
			s.schemes = append(s.schemes, strings.ToLower(scheme))
		}
	}
}

// NewSanitizer builds the credit policy: the UGC baseline plus the figure,
// caption and credit-span markup, schema.org microdata and an author
// controlled rel attribute.
func NewSanitizer(opts ...SanitizerOption) *Sanitizer {
	s := &Sanitizer{schemes: slices.Clone(defaultSchemes)}
	for _, opt := range opts {
		opt(s)
	}
	s.policy = creditPolicy(s.schemes)
	return s
}

func creditPolicy(schemes []string) *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption", "span", "div")
	policy.AllowAttrs("class", "id").Globally()
	policy.AllowAttrs("width", "height", "srcset", "sizes", "loading").OnElements("img")
	policy.AllowAttrs("itemscope", "itemtype", "itemprop").OnElements("figure", "span")
	policy.AllowURLSchemes(schemes...)
	// rel="nofollow" is a per-credit choice.
	policy.RequireNoFollowOnLinks(false)
	policy.AllowAttrs("rel").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	return policy
}

// Sanitize applies the policy.
func (s *Sanitizer) Sanitize(html string) (string, error) {
	return s.policy.Sanitize(html), nil
}

// ValidateURL accepts empty and relative links and absolute links with an
// allowed scheme.
func (s *Sanitizer) ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrURLScheme, err)
	}
	if parsed.Scheme == "" || slices.Contains(s.schemes, strings.ToLower(parsed.Scheme)) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrURLScheme, parsed.Scheme)
}

// ValidateAttributes rejects event handler attributes such as onload.
func (s *Sanitizer) ValidateAttributes(attrs map[string]any) error {
	for key := range attrs {
		if len(key) > 2 && strings.EqualFold(key[:2], "on") {
			return fmt.Errorf("%w: %s", ErrUnsafeAttribute, key)
		}
	}
	return nil
}

var _ interfaces.ShortcodeSanitizer = (*Sanitizer)(nil)
