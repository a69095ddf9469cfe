package credit

import (
	"context"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-media-credit/internal/adapters/noop"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// sizeSuffix matches the -WIDTHxHEIGHT suffix of generated image sizes.
var sizeSuffix = regexp.MustCompile(`-\d+x\d+$`)

// ImageMatcher decides whether an <img> fragment shows a given attachment.
type ImageMatcher struct {
	resolver interfaces.AttachmentResolver
}

// NewImageMatcher builds a matcher resolving attachment URLs through resolver.
func NewImageMatcher(resolver interfaces.AttachmentResolver) *ImageMatcher {
	if resolver == nil {
		resolver = noop.Resolver()
	}
	return &ImageMatcher{resolver: resolver}
}

// BasenamePattern resolves the attachment URL and returns its basename,
// escaped for literal use in a regular expression. ok is false when the
// attachment cannot be resolved or its URL has no usable file name.
func (m *ImageMatcher) BasenamePattern(ctx context.Context, imageID int64) (string, bool) {
	if m == nil || imageID <= 0 {
		return "", false
	}
	raw, ok := m.resolver.ResolveAttachmentURL(ctx, imageID)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	base := Basename(raw)
	if base == "" {
		return "", false
	}
	return regexp.QuoteMeta(base), true
}

// Basename returns the file name of rawURL without its extension and without
// an exact -WIDTHxHEIGHT size suffix: photo-150x150.jpg gives photo while
// photo-thumb.jpg and photo-1.jpg are kept as is. The name is taken from the
// raw URL text so percent escapes survive and still match a src written the
// same way.
func Basename(rawURL string) string {
	p := strings.TrimSpace(rawURL)
	p, _, _ = strings.Cut(p, "#")
	p, _, _ = strings.Cut(p, "?")
	if _, rest, ok := strings.Cut(p, "//"); ok {
		_, p, _ = strings.Cut(rest, "/")
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	name := path.Base(p)
	name = strings.TrimSuffix(name, path.Ext(name))
	return sizeSuffix.ReplaceAllString(name, "")
}

// Matches reports whether fragment holds an <img> whose src matches pattern
// and whose class list carries wp-image-<imageID>. Both must hold on the same
// element, and the class is compared as a whole token so wp-image-12 does not
// claim wp-image-123.
func (m *ImageMatcher) Matches(fragment string, imageID int64, pattern string) bool {
	if pattern == "" || imageID <= 0 || !strings.Contains(fragment, "<img") {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return false
	}

	class := "wp-image-" + strconv.FormatInt(imageID, 10)
	found := false
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok || !re.MatchString(src) {
			return true
		}
		if hasClass(img, class) {
			found = true
			return false
		}
		return true
	})
	return found
}

// hasClass compares whole class tokens, unlike a substring check on the
// attribute.
func hasClass(sel *goquery.Selection, class string) bool {
	attr, ok := sel.Attr("class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(attr) {
		if token == class {
			return true
		}
	}
	return false
}
