package credit

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-media-credit/internal/shortcode"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Rewrite returns the shortcode text that replaces match.Full. The identity
// attribute comes first: id=<n> when update.AuthorID is set, otherwise
// name="<freeform>". Other attributes keep their order. link follows
// update.URL and nofollow="1" is written only alongside a link.
func Rewrite(match shortcode.Match, attrs shortcode.Attributes, update interfaces.CreditUpdate) string {
	remaining := attrs.Clone().Delete("id").Delete("name")

	if update.URL != "" {
		remaining = remaining.Set("link", update.URL)
	} else {
		remaining = remaining.Delete("link")
	}

	if update.URL != "" && update.Nofollow {
		remaining = remaining.Set("nofollow", "1")
	} else {
		remaining = remaining.Delete("nofollow")
	}

	var builder strings.Builder
	builder.WriteByte('[')
	builder.WriteString(match.Name)
	builder.WriteByte(' ')
	builder.WriteString(identity(update))
	if remaining.Len() > 0 {
		builder.WriteByte(' ')
		builder.WriteString(remaining.String())
	}
	builder.WriteByte(']')
	builder.WriteString(match.Inner)
	builder.WriteString("[/")
	builder.WriteString(match.Name)
	builder.WriteByte(']')
	return builder.String()
}

// identity writes the freeform name verbatim; quoting policy is the caller's.
func identity(update interfaces.CreditUpdate) string {
	if update.AuthorID > 0 {
		return "id=" + strconv.FormatInt(update.AuthorID, 10)
	}
	return `name="` + update.Freeform + `"`
}

// Apply splices replacement over the located span of match. Offsets are
// used rather than text so an identical escaped or earlier copy is untouched.
func Apply(content string, match shortcode.Match, replacement string) string {
	if match.Full == "" || match.Start < 0 || match.End > len(content) || content[match.Start:match.End] != match.Full {
		return content
	}
	return content[:match.Start] + replacement + content[match.End:]
}
