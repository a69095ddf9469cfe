package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("media_credit.transformer")
	logger = logging.WithFields(logger, map[string]any{"module": "media_credit.transformer"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"correlation_id": "req-1234",
	})
	logger = logger.WithContext(ctx)

	logger.Info("credit.transformer.updated",
		"attachment_id", int64(4711),
		"credit", "Jane Doe",
	)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z INFO credit.transformer.updated module=media_credit.transformer attachment_id=4711 correlation_id=req-1234 credit="Jane Doe" logger=media_credit.transformer`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("media_credit.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected info log to be written, got %s", lines[0])
	}
}

func TestConsoleLogger_PositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return time.Unix(0, 0) },
	})

	provider.GetLogger("x").Error("failed", "error", errors.New("boom"), "dangling")

	got := strings.TrimSpace(buf.String())
	if !strings.Contains(got, "error=boom") || !strings.Contains(got, "field_1=dangling") {
		t.Fatalf("unexpected entry %s", got)
	}
}

func TestEntryLeadingKeys(t *testing.T) {
	entry := console.Entry{
		Time:    time.Unix(0, 0).UTC(),
		Level:   console.LevelWarn,
		Message: "credit.post.no_parent",
		Fields: map[string]any{
			"zeta":          "",
			"post_id":       int64(9),
			"attachment_id": int64(4),
			"at":            time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
	want := `1970-01-01T00:00:00Z WARN credit.post.no_parent attachment_id=4 post_id=9 at=2024-01-02T03:04:05Z zeta=""`
	if got := entry.String(); got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":    console.LevelTrace,
		"DEBUG":    console.LevelDebug,
		" warning": console.LevelWarn,
		"fatal":    console.LevelFatal,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
