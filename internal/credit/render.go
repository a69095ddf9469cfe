package credit

import (
	"context"
	"fmt"
	"html/template"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-media-credit/internal/adapters/noop"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/internal/shortcode"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// CaptionShortcode is the caption tag credits are commonly nested in.
const CaptionShortcode = "caption"

// Captions are processed before credits so a caption consumes its nested
// credit instead of receiving it pre-rendered.
const (
	captionOrder = 0
	creditOrder  = 10
)

// DefaultSeparator joins a registered author's name and the organization.
const DefaultSeparator = " | "

// captionImage splits caption bodies into the leading image markup and the
// caption text.
var captionImage = regexp.MustCompile(`(?s)^\s*((?:<a [^>]+>\s*)?<img [^>]+>(?:\s*</a>)?)(.*)$`)

// Settings controls how credits are displayed.
type Settings struct {
	Shortcode    string
	Separator    string
	Organization string
	// CreditAtEnd suppresses inline credits and lists them after the content.
	CreditAtEnd bool
	// NoDefaultCredit hides the organization-only credit shown for images
	// without an author or name.
	NoDefaultCredit bool
	SchemaOrg       bool
	// RenderCacheTTL caches rendered figures when a cache is attached with
	// WithRenderCache. Author renames show up once entries expire.
	RenderCacheTTL time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Shortcode == "" {
		s.Shortcode = DefaultShortcode
	}
	if s.Separator == "" {
		s.Separator = DefaultSeparator
	}
	return s
}

// Renderer expands stored credit shortcodes into display markup.
type Renderer struct {
	settings  Settings
	authors   interfaces.AuthorDirectory
	registry  *shortcode.Registry
	service   *shortcode.Service
	sanitizer interfaces.ShortcodeSanitizer
	metrics   interfaces.ShortcodeMetrics
	cache     interfaces.CacheProvider
	logger    interfaces.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRenderLogger attaches a logger.
func WithRenderLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRenderMetrics records render timings and failures.
func WithRenderMetrics(metrics interfaces.ShortcodeMetrics) RendererOption {
	return func(r *Renderer) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// WithRenderCache stores rendered figures in cache for Settings.RenderCacheTTL.
func WithRenderCache(cache interfaces.CacheProvider) RendererOption {
	return func(r *Renderer) {
		r.cache = cache
	}
}

// WithSanitizer replaces the default bluemonday sanitizer.
func WithSanitizer(sanitizer interfaces.ShortcodeSanitizer) RendererOption {
	return func(r *Renderer) {
		if sanitizer != nil {
			r.sanitizer = sanitizer
		}
	}
}

// NewRenderer registers the credit and caption shortcodes and returns a
// renderer for post content. authors may be nil, in which case id credits
// fall back to their name attribute.
func NewRenderer(authors interfaces.AuthorDirectory, settings Settings, opts ...RendererOption) (*Renderer, error) {
	if authors == nil {
		authors = noop.Authors()
	}
	r := &Renderer{
		settings:  settings.withDefaults(),
		authors:   authors,
		sanitizer: shortcode.NewSanitizer(),
		metrics:   shortcode.NoOpMetrics(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}

	validator := shortcode.NewValidator()
	r.registry = shortcode.NewRegistry(validator)
	for _, def := range []interfaces.ShortcodeDefinition{r.creditDefinition(), r.captionDefinition()} {
		if err := r.registry.Register(def); err != nil {
			return nil, fmt.Errorf("credit: register %s: %w", def.Name, err)
		}
	}

	renderer := shortcode.NewRenderer(r.registry, validator,
		shortcode.WithRendererSanitizer(r.sanitizer),
		shortcode.WithRendererMetrics(r.metrics),
		shortcode.WithRendererCache(r.cache),
	)
	r.service = shortcode.NewService(r.registry, renderer,
		shortcode.WithDefaultSanitizer(r.sanitizer),
		shortcode.WithLogger(r.logger),
		shortcode.WithMetrics(r.metrics),
	)
	return r, nil
}

// Settings returns the effective display settings.
func (r *Renderer) Settings() Settings {
	return r.settings
}

// Registry exposes the shortcode registry so hosts can add their own tags.
func (r *Renderer) Registry() *shortcode.Registry {
	return r.registry
}

// Render expands credit and caption shortcodes in content. In credit-at-end
// mode the unique credits, in document order, are listed in a trailing block.
func (r *Renderer) Render(ctx context.Context, content string) (string, error) {
	var credits []string
	if r.settings.CreditAtEnd {
		credits = r.documentCredits(ctx, content)
	}

	out, err := r.service.Process(ctx, content)
	if err != nil {
		return "", err
	}
	if len(credits) == 0 {
		return out, nil
	}

	block, err := r.sanitizer.Sanitize(endBlock(credits))
	if err != nil {
		return "", err
	}
	return out + block, nil
}

func (r *Renderer) creditDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        r.settings.Shortcode,
		Version:     "1",
		Description: "Credit line wrapped around an image",
		Order:       creditOrder,
		CacheTTL:    r.settings.RenderCacheTTL,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{Name: "id", Type: interfaces.ShortcodeParamInt},
				{Name: "name", Type: interfaces.ShortcodeParamString},
				{Name: "link", Type: interfaces.ShortcodeParamURL},
				{Name: "nofollow", Type: interfaces.ShortcodeParamBool},
				{Name: "align", Type: interfaces.ShortcodeParamString, Default: "alignnone"},
				{Name: "width", Type: interfaces.ShortcodeParamInt},
			},
			Passthrough: true,
		},
		Handler: r.renderCredit,
	}
}

func (r *Renderer) captionDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        CaptionShortcode,
		Version:     "1",
		Description: "Image caption, optionally holding a credit",
		Order:       captionOrder,
		CacheTTL:    r.settings.RenderCacheTTL,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{Name: "id", Type: interfaces.ShortcodeParamString},
				{Name: "align", Type: interfaces.ShortcodeParamString, Default: "alignnone"},
				{Name: "width", Type: interfaces.ShortcodeParamInt},
				{Name: "caption", Type: interfaces.ShortcodeParamString},
			},
			Passthrough: true,
		},
		Handler: r.renderCaption,
	}
}

func (r *Renderer) renderCredit(ctx interfaces.ShortcodeContext, params map[string]any, inner string) (template.HTML, error) {
	if r.settings.CreditAtEnd {
		return template.HTML(inner), nil
	}
	credit := r.creditLine(ctx.Context, creditParamsFrom(params))
	align := stringParam(params, "align")

	var builder strings.Builder
	builder.WriteString(`<figure class="media-credit-container `)
	builder.WriteString(template.HTMLEscapeString(align))
	builder.WriteByte('"')
	if r.settings.SchemaOrg {
		builder.WriteString(` itemscope itemtype="http://schema.org/ImageObject"`)
	}
	builder.WriteByte('>')
	builder.WriteString(inner)
	builder.WriteString(r.creditSpan(credit))
	builder.WriteString("</figure>")
	return template.HTML(builder.String()), nil
}

func (r *Renderer) renderCaption(ctx interfaces.ShortcodeContext, params map[string]any, inner string) (template.HTML, error) {
	image, text := inner, ""
	credit := ""

	if nested := shortcode.Locate(inner, r.settings.Shortcode); len(nested) > 0 {
		match := nested[0]
		image = match.Inner
		text = inner[:match.Start] + inner[match.End:]
		if !r.settings.CreditAtEnd {
			credit = r.creditLine(ctx.Context, creditParamsFrom(shortcode.ParseAttributes(match.RawAttributes).Map()))
		}
	} else if parts := captionImage.FindStringSubmatch(inner); parts != nil {
		image, text = parts[1], parts[2]
	}
	if caption := stringParam(params, "caption"); caption != "" {
		text = caption
	}
	text = strings.TrimSpace(text)

	var builder strings.Builder
	builder.WriteString("<figure")
	if id := stringParam(params, "id"); id != "" {
		builder.WriteString(` id="`)
		builder.WriteString(template.HTMLEscapeString(id))
		builder.WriteByte('"')
	}
	builder.WriteString(` class="wp-caption `)
	builder.WriteString(template.HTMLEscapeString(stringParam(params, "align")))
	builder.WriteString(`">`)
	builder.WriteString(strings.TrimSpace(image))
	if credit != "" {
		builder.WriteString(r.creditSpan(credit))
	}
	if text != "" {
		builder.WriteString(`<figcaption class="wp-caption-text">`)
		builder.WriteString(text)
		builder.WriteString("</figcaption>")
	}
	builder.WriteString("</figure>")
	return template.HTML(builder.String()), nil
}

func (r *Renderer) creditSpan(credit string) string {
	if credit == "" {
		return ""
	}
	if r.settings.SchemaOrg {
		return `<span class="media-credit" itemprop="copyrightHolder">` + credit + "</span>"
	}
	return `<span class="media-credit">` + credit + "</span>"
}

// creditParams is the credit-relevant subset of a shortcode's attributes.
type creditParams struct {
	ID       int64
	Name     string
	Link     string
	Nofollow bool
}

// creditParamsFrom reads raw (string) or coerced params.
func creditParamsFrom(params map[string]any) creditParams {
	out := creditParams{
		Name: stringParam(params, "name"),
		Link: stringParam(params, "link"),
	}
	switch v := params["id"].(type) {
	case int64:
		out.ID = v
	case string:
		out.ID, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	switch v := params["nofollow"].(type) {
	case bool:
		out.Nofollow = v
	case string:
		out.Nofollow = v == "1" || strings.EqualFold(v, "true")
	}
	return out
}

func stringParam(params map[string]any, key string) string {
	if value, ok := params[key].(string); ok {
		return value
	}
	return ""
}

// creditLine builds the escaped credit HTML. Registered authors are shown by
// display name followed by the organization; freeform names verbatim.
func (r *Renderer) creditLine(ctx context.Context, params creditParams) string {
	name, link := params.Name, params.Link
	registered := false

	if params.ID > 0 {
		if profile, ok := r.authors.LookupAuthor(ctx, params.ID); ok {
			name = profile.DisplayName
			registered = true
			if link == "" {
				link = profile.URL
			}
		} else {
			logging.WithFields(r.logger, map[string]any{
				"author_id": params.ID,
			}).Debug("credit.render.author_missing")
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		if r.settings.NoDefaultCredit || r.settings.Organization == "" {
			return ""
		}
		return template.HTMLEscapeString(r.settings.Organization)
	}

	text := template.HTMLEscapeString(name)
	if link != "" {
		rel := ""
		if params.Nofollow {
			rel = ` rel="nofollow"`
		}
		text = `<a href="` + template.HTMLEscapeString(link) + `"` + rel + ">" + text + "</a>"
	}
	if registered && r.settings.Organization != "" {
		text += template.HTMLEscapeString(r.settings.Separator + r.settings.Organization)
	}
	return text
}

// documentCredits lists the unique credit lines of content in order.
func (r *Renderer) documentCredits(ctx context.Context, content string) []string {
	var credits []string
	for match := range shortcode.Matches(content, r.settings.Shortcode) {
		line := r.creditLine(ctx, creditParamsFrom(shortcode.ParseAttributes(match.RawAttributes).Map()))
		if line != "" && !slices.Contains(credits, line) {
			credits = append(credits, line)
		}
	}
	return credits
}

func endBlock(credits []string) string {
	label := "Images courtesy of "
	if len(credits) == 1 {
		label = "Image courtesy of "
	}
	return `<div class="media-credit-end">` + label + joinCredits(credits) + "</div>"
}

// joinCredits renders "A", "A and B" or "A, B and C".
func joinCredits(credits []string) string {
	switch len(credits) {
	case 0:
		return ""
	case 1:
		return credits[0]
	}
	return strings.Join(credits[:len(credits)-1], ", ") + " and " + credits[len(credits)-1]
}
