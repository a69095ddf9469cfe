package logging

import (
	"context"
	"maps"
)

type fieldsKey struct{}

// ContextWithFields layers fields over those already bound to ctx. Loggers
// built WithContext(ctx) include them on every entry.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	parent, _ := ctx.Value(fieldsKey{}).(map[string]any)
	layered := make(map[string]any, len(parent)+len(fields))
	maps.Copy(layered, parent)
	maps.Copy(layered, fields)
	return context.WithValue(ctx, fieldsKey{}, layered)
}

// ContextFields returns a copy of the fields bound to ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	if fields, ok := ctx.Value(fieldsKey{}).(map[string]any); ok && len(fields) > 0 {
		return maps.Clone(fields)
	}
	return nil
}
