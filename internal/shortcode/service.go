package shortcode

import (
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// maxNestingDepth bounds how deep AllowInner bodies are expanded.
const maxNestingDepth = 8

// Service expands every registered tag in post content.
type Service struct {
	registry  interfaces.ShortcodeRegistry
	renderer  interfaces.ShortcodeRenderer
	sanitizer interfaces.ShortcodeSanitizer
	logger    interfaces.Logger
	metrics   interfaces.ShortcodeMetrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDefaultSanitizer sets the sanitizer handed to handlers through
// ShortcodeContext.
func WithDefaultSanitizer(sanitizer interfaces.ShortcodeSanitizer) ServiceOption {
	return func(s *Service) {
		if sanitizer != nil {
			s.sanitizer = sanitizer
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records render durations and failures.
func WithMetrics(metrics interfaces.ShortcodeMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewService returns a Service rendering registry's tags through renderer.
func NewService(registry interfaces.ShortcodeRegistry, renderer interfaces.ShortcodeRenderer, opts ...ServiceOption) *Service {
	s := &Service{
		registry:  registry,
		renderer:  renderer,
		sanitizer: NewSanitizer(),
		logger:    logging.NoOp(),
		metrics:   NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process makes one pass per definition, in registry order, replacing each
// occurrence with its rendered output. Escaped [[tag]...[/tag]] forms and
// unregistered tags are left as written.
func (s *Service) Process(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	if s.registry == nil || s.renderer == nil {
		return "", ErrServiceNotInitialised
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := s.logger.WithContext(ctx)

	out, rendered, err := s.expand(s.context(ctx, 0), logger, content)
	if err != nil {
		return "", err
	}
	logging.WithFields(logger, map[string]any{"shortcodes": rendered}).Debug("shortcode.process.completed")
	return out, nil
}

func (s *Service) expand(sc interfaces.ShortcodeContext, logger interfaces.Logger, content string) (string, int, error) {
	rendered := 0
	for _, def := range s.registry.List() {
		out, n, err := s.expandTag(sc, logger, def, content)
		if err != nil {
			return "", 0, err
		}
		content = out
		rendered += n
	}
	return content, rendered, nil
}

// expandTag replaces the occurrences of one tag. Bodies of AllowInner
// definitions are expanded first, up to maxNestingDepth.
func (s *Service) expandTag(sc interfaces.ShortcodeContext, logger interfaces.Logger, def interfaces.ShortcodeDefinition, content string) (string, int, error) {
	var out strings.Builder
	last, rendered := 0, 0
	for match := range Matches(content, def.Name) {
		inner := match.Inner
		if def.AllowInner && sc.Depth < maxNestingDepth {
			nested, n, err := s.expand(s.context(sc.Context, sc.Depth+1), logger, inner)
			if err != nil {
				return "", 0, err
			}
			inner = nested
			rendered += n
		}
		html, err := s.render(sc, logger, def.Name, ParseAttributes(match.RawAttributes).Map(), inner)
		if err != nil {
			return "", 0, err
		}
		out.WriteString(content[last:match.Start])
		out.WriteString(string(html))
		last = match.End
		rendered++
	}
	if last == 0 {
		return content, rendered, nil
	}
	out.WriteString(content[last:])
	return out.String(), rendered, nil
}

// Render expands a single tag occurrence outside of Process.
func (s *Service) Render(ctx interfaces.ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error) {
	if s.renderer == nil {
		return "", ErrServiceNotInitialised
	}
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.Sanitizer == nil {
		ctx.Sanitizer = s.sanitizer
	}
	return s.render(ctx, s.logger.WithContext(ctx.Context), shortcode, params, inner)
}

func (s *Service) render(sc interfaces.ShortcodeContext, logger interfaces.Logger, shortcode string, params map[string]any, inner string) (template.HTML, error) {
	start := time.Now()
	html, err := s.renderer.Render(sc, shortcode, params, inner)
	elapsed := time.Since(start)
	s.metrics.ObserveRenderDuration(shortcode, elapsed)

	entry := logging.WithFields(logger, map[string]any{
		"shortcode":   shortcode,
		"depth":       sc.Depth,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		s.metrics.IncrementRenderError(shortcode)
		entry.Error("shortcode.render.failed", "error", err)
		return "", err
	}
	entry.Trace("shortcode.render.completed")
	return html, nil
}

func (s *Service) context(ctx context.Context, depth int) interfaces.ShortcodeContext {
	return interfaces.ShortcodeContext{Context: ctx, Sanitizer: s.sanitizer, Depth: depth}
}
