package shortcode

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

type memoryCache struct {
	store map[string]cacheEntry
}

type cacheEntry struct {
	value any
	ttl   time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string]cacheEntry{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (any, error) {
	if entry, ok := c.store[key]; ok {
		return entry.value, nil
	}
	return nil, fmt.Errorf("cache miss")
}

func (c *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	c.store[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *memoryCache) Clear(context.Context) error {
	c.store = map[string]cacheEntry{}
	return nil
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(html string) (string, error) { return html, nil }

func (passthroughSanitizer) ValidateURL(string) error { return nil }

func (passthroughSanitizer) ValidateAttributes(map[string]any) error { return nil }

func mustRegister(t *testing.T, registry *Registry, defs ...interfaces.ShortcodeDefinition) {
	t.Helper()
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			t.Fatalf("register %s: %v", def.Name, err)
		}
	}
}

func TestRenderer_HandlerOutputIsCoercedAndSanitised(t *testing.T) {
	registry := NewRegistry(NewValidator())
	mustRegister(t, registry, interfaces.ShortcodeDefinition{
		Name: "media-credit",
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{Name: "id", Type: interfaces.ShortcodeParamInt},
				{Name: "align", Type: interfaces.ShortcodeParamString, Default: "alignnone"},
			},
		},
		Handler: func(_ interfaces.ShortcodeContext, params map[string]any, inner string) (template.HTML, error) {
			return template.HTML(fmt.Sprintf(`<figure class="%s" onclick="x()">%s<span>%d</span></figure>`, params["align"], inner, params["id"])), nil
		},
	})

	renderer := NewRenderer(registry, NewValidator())
	html, err := renderer.Render(interfaces.ShortcodeContext{}, "media-credit", map[string]any{"id": "7"}, `<img src="/a.jpg">`)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(html) != `<figure class="alignnone"><img src="/a.jpg"><span>7</span></figure>` {
		t.Fatalf("unexpected output: %s", html)
	}
}

func TestRenderer_SanitizerStripsScript(t *testing.T) {
	registry := NewRegistry(NewValidator())
	mustRegister(t, registry, interfaces.ShortcodeDefinition{
		Name: "bad",
		Handler: func(interfaces.ShortcodeContext, map[string]any, string) (template.HTML, error) {
			return `<p>safe</p><script>alert('xss')</script><img src="/a.jpg" onerror="x()">`, nil
		},
	})

	renderer := NewRenderer(registry, NewValidator())
	html, err := renderer.Render(interfaces.ShortcodeContext{}, "bad", nil, "")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := string(html)
	if strings.Contains(out, "<script") || strings.Contains(out, "onerror") {
		t.Fatalf("sanitizer left unsafe markup: %s", out)
	}
	if !strings.Contains(out, "<p>safe</p>") {
		t.Fatalf("sanitizer dropped safe markup: %s", out)
	}
}

func TestRenderer_CacheHit(t *testing.T) {
	registry := NewRegistry(NewValidator())
	calls := 0
	mustRegister(t, registry, interfaces.ShortcodeDefinition{
		Name:     "cached",
		CacheTTL: time.Hour,
		Handler: func(interfaces.ShortcodeContext, map[string]any, string) (template.HTML, error) {
			calls++
			return "<p>cached</p>", nil
		},
	})

	cache := newMemoryCache()
	metrics := newMetricsStub()
	renderer := NewRenderer(registry, NewValidator(), WithRendererCache(cache), WithRendererMetrics(metrics))

	for range 2 {
		if _, err := renderer.Render(interfaces.ShortcodeContext{}, "cached", nil, ""); err != nil {
			t.Fatalf("Render() error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if len(cache.store) != 1 {
		t.Fatalf("expected cache to store 1 item, got %d", len(cache.store))
	}
	for key := range cache.store {
		if !strings.HasPrefix(key, CacheKeyPrefix+"cached:") {
			t.Fatalf("unexpected cache key %q", key)
		}
	}
	if metrics.cacheHitCount("cached") != 1 {
		t.Fatalf("expected 1 cache hit, got %d", metrics.cacheHitCount("cached"))
	}
}

func TestRenderer_Errors(t *testing.T) {
	registry := NewRegistry(noopValidator{})
	mustRegister(t, registry, interfaces.ShortcodeDefinition{Name: "empty"})
	renderer := NewRenderer(registry, nil, WithRendererSanitizer(passthroughSanitizer{}))

	if _, err := renderer.Render(interfaces.ShortcodeContext{}, "missing", nil, ""); !errors.Is(err, ErrUnknownShortcode) {
		t.Fatalf("expected ErrUnknownShortcode, got %v", err)
	}
	if _, err := renderer.Render(interfaces.ShortcodeContext{}, "empty", nil, ""); !errors.Is(err, ErrMissingHandler) {
		t.Fatalf("expected ErrMissingHandler, got %v", err)
	}
}
