package di_test

import (
	"context"
	"maps"
	"sync"
	"testing"

	creditcmd "github.com/goliatone/go-media-credit/internal/commands/credit"
	"github.com/goliatone/go-media-credit/internal/di"
	"github.com/goliatone/go-media-credit/internal/media"
	"github.com/goliatone/go-media-credit/internal/runtimeconfig"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

func TestContainerLogsConfiguration(t *testing.T) {
	sink := &entrySink{}
	if _, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithLoggerProvider(sink)); err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	entry := sink.first("media_credit.container.configured")
	if entry == nil {
		t.Fatalf("expected configured entry, got %+v", sink.entries)
	}
	if entry.fields["storage"] != "memory" || entry.fields["module"] != "media_credit.container" {
		t.Fatalf("unexpected fields: %v", entry.fields)
	}
}

func TestContainerCommandEntriesCarryAttachment(t *testing.T) {
	sink := &entrySink{}
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithLoggerProvider(sink))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	ctx := context.Background()
	if _, err := container.MediaService().Register(ctx, media.RegisterInput{
		AttachmentID: 11,
		URL:          "https://example.com/uploads/orphan.jpg",
	}); err != nil {
		t.Fatalf("register attachment: %v", err)
	}

	cmd := creditcmd.UpdateAttachmentCreditCommand{AttachmentID: 11, Freeform: "Jane Doe"}
	if _, err := container.CreditCommand().Apply(ctx, cmd); err != nil {
		t.Fatalf("apply: %v", err)
	}
	_, _ = container.CreditCommand().Apply(ctx, creditcmd.UpdateAttachmentCreditCommand{AttachmentID: 11})

	for _, tc := range []struct {
		msg   string
		level string
	}{
		{"media_credit.command.update.no_parent", "DEBUG"},
		{"media_credit.command.applied", "INFO"},
		{"media_credit.command.rejected", "WARN"},
	} {
		entry := sink.first(tc.msg)
		if entry == nil {
			t.Fatalf("expected %s entry, got %+v", tc.msg, sink.entries)
		}
		if entry.level != tc.level {
			t.Fatalf("%s logged at %s, want %s", tc.msg, entry.level, tc.level)
		}
		if got := entry.fields["attachment_id"]; got != int64(11) {
			t.Fatalf("%s: expected attachment_id 11, got %v (%T)", tc.msg, got, got)
		}
	}
	if got := sink.first("media_credit.command.applied").fields["command"]; got != cmd.Type() {
		t.Fatalf("expected command type on outcome entry, got %v", got)
	}
}

type loggedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

// entrySink is a LoggerProvider that keeps every entry in memory.
type entrySink struct {
	mu      sync.Mutex
	entries []loggedEntry
}

func (s *entrySink) GetLogger(name string) interfaces.Logger {
	return sinkLogger{sink: s, fields: map[string]any{"logger": name}}
}

func (s *entrySink) first(msg string) *loggedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].msg == msg {
			return &s.entries[i]
		}
	}
	return nil
}

type sinkLogger struct {
	sink   *entrySink
	fields map[string]any
}

func (l sinkLogger) Trace(msg string, args ...any) { l.write("TRACE", msg, args) }
func (l sinkLogger) Debug(msg string, args ...any) { l.write("DEBUG", msg, args) }
func (l sinkLogger) Info(msg string, args ...any)  { l.write("INFO", msg, args) }
func (l sinkLogger) Warn(msg string, args ...any)  { l.write("WARN", msg, args) }
func (l sinkLogger) Error(msg string, args ...any) { l.write("ERROR", msg, args) }
func (l sinkLogger) Fatal(msg string, args ...any) { l.write("FATAL", msg, args) }

func (l sinkLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return sinkLogger{sink: l.sink, fields: merged}
}

func (l sinkLogger) WithContext(context.Context) interfaces.Logger {
	return l
}

func (l sinkLogger) write(level, msg string, args []any) {
	fields := maps.Clone(l.fields)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, loggedEntry{level: level, msg: msg, fields: fields})
}
