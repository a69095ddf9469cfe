package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Outcome classifies how a command run ended.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
	OutcomeCanceled Outcome = "canceled"
	OutcomeFailed   Outcome = "failed"
)

// Report is handed to observers once a run has finished.
type Report struct {
	Command   string
	Operation string
	Outcome   Outcome
	Duration  time.Duration
	Err       error
	// Fields holds the message's own log fields plus command/operation.
	Fields map[string]any
}

// Observer is notified after every run, including rejected ones.
type Observer[T command.Message] func(ctx context.Context, msg T, report Report)

// FieldsProvider lets a message add identifying fields (attachment or post
// ids) to the entries and reports produced for it.
type FieldsProvider interface {
	LogFields() map[string]any
}

// Metrics receives per-command timings. prommetrics.Recorder implements it.
type Metrics interface {
	ObserveCommand(command, outcome string, duration time.Duration)
}

// LogObserver writes one entry per run: info when applied, warn when the
// message was rejected and error otherwise.
func LogObserver[T command.Message](logger interfaces.Logger) Observer[T] {
	logger = logging.Ensure(logger)
	return func(ctx context.Context, _ T, report Report) {
		entry := logging.WithFields(logger.WithContext(ctx), report.Fields)
		args := []any{"duration_ms", report.Duration.Milliseconds()}
		switch report.Outcome {
		case OutcomeApplied:
			entry.Info("media_credit.command.applied", args...)
		case OutcomeRejected:
			entry.Warn("media_credit.command.rejected", append(args, "error", report.Err)...)
		case OutcomeCanceled:
			entry.Error("media_credit.command.canceled", append(args, "error", report.Err)...)
		default:
			entry.Error("media_credit.command.failed", append(args, "error", report.Err)...)
		}
	}
}

// MetricsObserver forwards timings to metrics. A nil metrics yields nil.
func MetricsObserver[T command.Message](metrics Metrics) Observer[T] {
	if metrics == nil {
		return nil
	}
	return func(_ context.Context, _ T, report Report) {
		metrics.ObserveCommand(report.Command, string(report.Outcome), report.Duration)
	}
}

func messageFields[T command.Message](msg T, operation string) map[string]any {
	fields := map[string]any{"command": command.GetMessageType(msg)}
	if operation != "" {
		fields["operation"] = operation
	}
	if provider, ok := any(msg).(FieldsProvider); ok {
		for key, value := range provider.LogFields() {
			fields[key] = value
		}
	}
	return fields
}
