// Package console writes media credit log entries as single key=value lines.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Level orders entry severities.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelLabels = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

func (l Level) String() string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return levelLabels[LevelInfo]
}

// ParseLevel reads logging.level from configuration. "warning" is accepted
// as an alias of warn.
func ParseLevel(value string) (Level, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "WARNING" {
		return LevelWarn, true
	}
	for level, label := range levelLabels {
		if label == value {
			return level, true
		}
	}
	return LevelInfo, false
}

// leadingKeys are written first, in this order, so the credit being touched
// is visible at a glance. Remaining keys follow alphabetically.
var leadingKeys = []string{"module", "attachment_id", "post_id"}

// Options configures NewProvider.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
}

// sink is shared by every logger handed out by one provider.
type sink struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
	min Level
}

func (s *sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line)
}

type provider struct{ sink *sink }

// NewProvider returns a provider writing to stdout at DEBUG and above unless
// opts override either.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{out: opts.Writer, now: opts.TimeFunc, min: LevelDebug}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.MinLevel != nil {
		s.min = *opts.MinLevel
	}
	return provider{sink: s}
}

func (p provider) GetLogger(name string) interfaces.Logger {
	return &logger{sink: p.sink, fields: map[string]any{"logger": name}}
}

type logger struct {
	sink   *sink
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.emit(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.emit(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.emit(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.emit(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.emit(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.emit(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	next := &logger{sink: l.sink, fields: make(map[string]any, len(l.fields)+len(fields)), ctx: l.ctx}
	maps.Copy(next.fields, l.fields)
	maps.Copy(next.fields, fields)
	return next
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	return &logger{sink: l.sink, fields: l.fields, ctx: ctx}
}

func (l *logger) emit(level Level, msg string, args []any) {
	if l.sink == nil || level < l.sink.min {
		return
	}
	entry := Entry{
		Time:    l.sink.now().UTC(),
		Level:   level,
		Message: msg,
		Fields:  make(map[string]any, len(l.fields)+len(args)/2),
	}
	maps.Copy(entry.Fields, l.fields)
	maps.Copy(entry.Fields, logging.ContextFields(l.ctx))
	entry.addArgs(args)
	l.sink.write(entry.String() + "\n")
}

// Entry is one formatted log line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  map[string]any
}

// addArgs stores key/value pairs. A dangling value or a non-string key is
// kept under field_<pair index>.
func (e *Entry) addArgs(args []any) {
	for pair := 0; pair*2 < len(args); pair++ {
		i := pair * 2
		if i+1 == len(args) {
			e.Fields["field_"+strconv.Itoa(pair)] = args[i]
			return
		}
		if key, ok := args[i].(string); ok && key != "" {
			e.Fields[key] = args[i+1]
		} else {
			e.Fields["field_"+strconv.Itoa(pair)] = args[i+1]
		}
	}
}

func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", e.Time.Format(time.RFC3339Nano), e.Level, e.Message)
	for _, key := range e.keys() {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(render(e.Fields[key]))
	}
	return b.String()
}

func (e Entry) keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for _, key := range leadingKeys {
		if _, ok := e.Fields[key]; ok {
			keys = append(keys, key)
		}
	}
	var rest []string
	for key := range e.Fields {
		if !slices.Contains(leadingKeys, key) {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

func render(value any) string {
	var text string
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case error:
		text = v.Error()
	case fmt.Stringer:
		text = v.String()
	case string:
		text = v
	default:
		text = fmt.Sprint(v)
	}
	if text == "" || strings.ContainsFunc(text, needsQuote) {
		return strconv.Quote(text)
	}
	return text
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
