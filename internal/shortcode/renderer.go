package shortcode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"maps"
	"slices"
	"time"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// CacheKeyPrefix namespaces cached output; keys continue with the tag name
// so a host can clear one tag's output by prefix.
const CacheKeyPrefix = "media_credit:shortcode:"

// Renderer runs a single definition: it coerces parameters, calls the
// handler, sanitises the output and optionally caches it.
type Renderer struct {
	registry  interfaces.ShortcodeRegistry
	validator *Validator
	sanitizer interfaces.ShortcodeSanitizer
	cache     interfaces.CacheProvider
	metrics   interfaces.ShortcodeMetrics
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRendererSanitizer overrides the bluemonday sanitizer.
func WithRendererSanitizer(s interfaces.ShortcodeSanitizer) RendererOption {
	return func(r *Renderer) {
		r.sanitizer = s
	}
}

// WithRendererCache caches output of definitions with a CacheTTL.
func WithRendererCache(cache interfaces.CacheProvider) RendererOption {
	return func(r *Renderer) {
		r.cache = cache
	}
}

// WithRendererMetrics records cache hits.
func WithRendererMetrics(metrics interfaces.ShortcodeMetrics) RendererOption {
	return func(r *Renderer) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// NewRenderer returns a renderer over registry. A nil validator uses NewValidator.
func NewRenderer(registry interfaces.ShortcodeRegistry, validator *Validator, opts ...RendererOption) *Renderer {
	if validator == nil {
		validator = NewValidator()
	}
	r := &Renderer{
		registry:  registry,
		validator: validator,
		sanitizer: NewSanitizer(),
		metrics:   NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render expands one shortcode occurrence.
func (r *Renderer) Render(ctx interfaces.ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error) {
	def, ok := r.registry.Get(shortcode)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownShortcode, shortcode)
	}
	if def.Handler == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingHandler, shortcode)
	}
	coerced, err := r.validator.CoerceParams(def, params)
	if err != nil {
		return "", err
	}

	cache := r.cache
	if cache == nil || def.CacheTTL <= 0 {
		return r.execute(ctx, def, coerced, inner)
	}

	stdCtx := ctx.Context
	if stdCtx == nil {
		stdCtx = context.Background()
	}
	key := cacheKey(def.Name, coerced, inner)
	if cached, err := cache.Get(stdCtx, key); err == nil {
		if html, ok := cached.(string); ok {
			r.metrics.IncrementCacheHit(def.Name)
			return template.HTML(html), nil
		}
	}
	out, err := r.execute(ctx, def, coerced, inner)
	if err != nil {
		return "", err
	}
	_ = cache.Set(stdCtx, key, string(out), def.CacheTTL)
	return out, nil
}

func (r *Renderer) execute(ctx interfaces.ShortcodeContext, def interfaces.ShortcodeDefinition, params map[string]any, inner string) (template.HTML, error) {
	out, err := def.Handler(ctx, params, inner)
	if err != nil {
		return "", err
	}
	sanitizer := ctx.Sanitizer
	if sanitizer == nil {
		sanitizer = r.sanitizer
	}
	if sanitizer == nil {
		return out, nil
	}
	clean, err := sanitizer.Sanitize(string(out))
	if err != nil {
		return "", err
	}
	return template.HTML(clean), nil
}

// cacheKey hashes the coerced parameters in key order together with the body.
func cacheKey(name string, params map[string]any, inner string) string {
	h := sha256.New()
	for _, key := range slices.Sorted(maps.Keys(params)) {
		fmt.Fprintf(h, "%s=%v\x00", key, params[key])
	}
	h.Write([]byte(inner))
	return CacheKeyPrefix + name + ":" + hex.EncodeToString(h.Sum(nil)[:16])
}

// NoOpMetrics returns a ShortcodeMetrics that drops every observation.
func NoOpMetrics() interfaces.ShortcodeMetrics {
	return discardMetrics{}
}

type discardMetrics struct{}

func (discardMetrics) ObserveRenderDuration(string, time.Duration) {}
func (discardMetrics) IncrementRenderError(string)                 {}
func (discardMetrics) IncrementCacheHit(string)                    {}

var _ interfaces.ShortcodeRenderer = (*Renderer)(nil)
