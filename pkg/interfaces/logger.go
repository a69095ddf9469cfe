package interfaces

import "context"

// Logger is the leveled logger every media credit component writes to. Its
// method set matches github.com/goliatone/go-logger, so a go-logger instance
// satisfies it directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by module name, for example
// "media_credit.transformer" or "media_credit.http".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields
// such as attachment_id and post_id on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
