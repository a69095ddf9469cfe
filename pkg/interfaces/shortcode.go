package interfaces

import (
	"context"
	"html/template"
	"time"
)

// ShortcodeRegistry stores the enclosing tags a renderer knows how to expand.
// Implementations must be safe for concurrent use.
type ShortcodeRegistry interface {
	// Register fails when the name is taken or the definition is invalid.
	Register(definition ShortcodeDefinition) error
	Get(name string) (ShortcodeDefinition, bool)
	// List returns definitions in processing order.
	List() []ShortcodeDefinition
	// Remove ignores unknown names.
	Remove(name string)
}

// ShortcodeRenderer expands one occurrence of a registered tag.
type ShortcodeRenderer interface {
	Render(ctx ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error)
}

// ShortcodeSanitizer cleans rendered markup and vets credit links.
type ShortcodeSanitizer interface {
	Sanitize(html string) (string, error)
	ValidateURL(raw string) error
	ValidateAttributes(attrs map[string]any) error
}

// ShortcodeMetrics receives render telemetry.
type ShortcodeMetrics interface {
	ObserveRenderDuration(shortcode string, duration time.Duration)
	IncrementRenderError(shortcode string)
	IncrementCacheHit(shortcode string)
}

// ShortcodeDefinition describes one enclosing tag. Definitions are processed
// in ascending Order, ties broken by name, so a wrapper such as [caption]
// can take a lower Order and consume the credit nested in it.
type ShortcodeDefinition struct {
	Name        string
	Version     string
	Description string
	Order       int
	// AllowInner expands registered tags in the body before Handler runs.
	AllowInner bool
	// CacheTTL enables output caching when the renderer has a cache.
	CacheTTL time.Duration
	Schema   ShortcodeSchema
	Handler  ShortcodeHandler
}

// ShortcodeSchema declares the attributes a tag understands.
type ShortcodeSchema struct {
	Params []ShortcodeParam
	// Passthrough keeps undeclared attributes instead of rejecting them.
	Passthrough bool
}

// ShortcodeParam is one declared attribute.
type ShortcodeParam struct {
	Name     string
	Type     ShortcodeParamType
	Required bool
	Default  any
	Validate ShortcodeValidator
}

// ShortcodeParamType selects how a raw attribute value is coerced.
type ShortcodeParamType string

const (
	ShortcodeParamString ShortcodeParamType = "string"
	ShortcodeParamInt    ShortcodeParamType = "int"
	ShortcodeParamBool   ShortcodeParamType = "bool"
	ShortcodeParamURL    ShortcodeParamType = "url"
)

// ShortcodeValidator checks a coerced attribute value.
type ShortcodeValidator func(value any) error

// ShortcodeHandler renders a tag from its coerced attributes and body.
type ShortcodeHandler func(ctx ShortcodeContext, params map[string]any, inner string) (template.HTML, error)

// ShortcodeContext is passed to handlers. Depth is zero for top-level tags
// and grows by one for each AllowInner body being expanded.
type ShortcodeContext struct {
	Context   context.Context
	Sanitizer ShortcodeSanitizer
	Depth     int
}
