package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Module names a logger namespace. Entries carry it in the "module" field.
type Module string

const (
	Root        Module = "media_credit"
	Transformer Module = "media_credit.transformer"
	Media       Module = "media_credit.media"
	Commands    Module = "media_credit.commands"
	HTTP        Module = "media_credit.http"
	Render      Module = "media_credit.render"
)

// Logger resolves the namespace through provider. A nil provider, or one
// that returns nil, yields a no-op logger.
func (m Module) Logger(provider interfaces.LoggerProvider) interfaces.Logger {
	if strings.TrimSpace(string(m)) == "" {
		m = Root
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(string(m))
	}
	return WithFields(Ensure(logger), map[string]any{"module": string(m)})
}

// ModuleLogger is Module(module).Logger(provider) for callers holding a
// plain string.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	return Module(module).Logger(provider)
}

func TransformerLogger(p interfaces.LoggerProvider) interfaces.Logger { return Transformer.Logger(p) }
func MediaLogger(p interfaces.LoggerProvider) interfaces.Logger       { return Media.Logger(p) }
func CommandsLogger(p interfaces.LoggerProvider) interfaces.Logger    { return Commands.Logger(p) }
func HTTPLogger(p interfaces.LoggerProvider) interfaces.Logger        { return HTTP.Logger(p) }
func RenderLogger(p interfaces.LoggerProvider) interfaces.Logger      { return Render.Logger(p) }

// WithFields binds fields when logger implements FieldsLogger and returns
// it unchanged otherwise. fields is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}

// WithAttachment tags entries with the attachment and, when known, the parent post.
func WithAttachment(logger interfaces.Logger, attachmentID, postID int64) interfaces.Logger {
	fields := make(map[string]any, 2)
	for key, id := range map[string]int64{"attachment_id": attachmentID, "post_id": postID} {
		if id > 0 {
			fields[key] = id
		}
	}
	return WithFields(logger, fields)
}

// Ensure returns logger, or a no-op logger when nil.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
