// Package gologger adapts github.com/goliatone/go-logger to the media credit
// logging interfaces.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Config selects the go-logger output. Empty Format means JSON; an unknown
// Level leaves go-logger's default in place.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to the named modules, e.g. "media_credit.http".
	Focus []string
}

// Provider hands out go-logger children named after media credit modules.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds the root go-logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	var format glog.Option
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		format = glog.WithLoggerTypeJSON()
	case "console":
		format = glog.WithLoggerTypeConsole()
	case "pretty":
		format = glog.WithLoggerTypePretty()
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}

	options := []glog.Option{format}
	if level := glogLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}
	root := glog.NewLogger(options...)

	var focus []string
	for _, module := range cfg.Focus {
		if module = strings.TrimSpace(module); module != "" {
			focus = append(focus, module)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

func glogLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	}
	return ""
}

// GetLogger returns the go-logger child for a module name. A nil provider
// yields the no-op logger.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return adapt(p.root)
	}
	return adapt(p.root.GetLogger(name))
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &moduleLogger{inner: inner}
}

type moduleLogger struct {
	inner glog.Logger
}

func (l *moduleLogger) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *moduleLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *moduleLogger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *moduleLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *moduleLogger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *moduleLogger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

// WithFields needs go-logger's FieldsLogger; without it fields are dropped.
func (l *moduleLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return adapt(with.WithFields(maps.Clone(fields)))
	}
	return l
}

// WithContext binds ctx and copies the fields stored with
// logging.ContextWithFields (request_id, http_path) onto the logger.
func (l *moduleLogger) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	bound := adapt(l.inner.WithContext(ctx))
	if fields := logging.ContextFields(ctx); len(fields) > 0 {
		return logging.WithFields(bound, fields)
	}
	return bound
}

var _ interfaces.FieldsLogger = (*moduleLogger)(nil)
