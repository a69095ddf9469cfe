package credit

import (
	"context"
	"maps"
	"sync"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

type stubResolver map[int64]string

func (s stubResolver) ResolveAttachmentURL(_ context.Context, id int64) (string, bool) {
	url, ok := s[id]
	return url, ok
}

type stubAuthors map[int64]interfaces.AuthorProfile

func (s stubAuthors) LookupAuthor(_ context.Context, id int64) (interfaces.AuthorProfile, bool) {
	profile, ok := s[id]
	return profile, ok
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func newOutcomeRecorder() *outcomeRecorder {
	return &outcomeRecorder{outcomes: map[string]int{}}
}

func (o *outcomeRecorder) IncrementOutcome(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
}

func (o *outcomeRecorder) count(outcome string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[outcome]
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	fields  map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}, fields: map[string]any{}}
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: maps.Clone(l.fields)})
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.record("trace", msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &recordingLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(*l.entries))
	for i, entry := range *l.entries {
		out[i] = entry.msg
	}
	return out
}

func (l *recordingLogger) last() logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return (*l.entries)[len(*l.entries)-1]
}
