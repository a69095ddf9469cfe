package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type recreditMessage struct {
	AttachmentID int64
}

func (recreditMessage) Type() string { return "media_credit.test.recredit" }

func (recreditMessage) Validate() error { return nil }

type recreditFailure struct {
	AttachmentID int64
}

func (recreditFailure) Type() string { return "media_credit.test.recredit_failure" }

func (recreditFailure) Validate() error { return nil }

func TestDispatchedCreditRetriesTransientStoreErrors(t *testing.T) {
	t.Parallel()

	var attempts int
	var outcomes []Outcome
	handler := NewHandler(func(_ context.Context, msg recreditMessage) error {
		attempts++
		if attempts == 1 {
			return errors.New("post store busy")
		}
		return nil
	},
		WithTimeout[recreditMessage](time.Second),
		WithObserver(func(_ context.Context, _ recreditMessage, report Report) {
			outcomes = append(outcomes, report.Outcome)
		}),
	)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), recreditMessage{AttachmentID: 21}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if len(outcomes) != 2 || outcomes[0] != OutcomeFailed || outcomes[1] != OutcomeApplied {
		t.Fatalf("expected failed then applied, got %v", outcomes)
	}
}

func TestDispatchedCreditSurfacesPersistentFailure(t *testing.T) {
	t.Parallel()

	var attempts int
	handler := NewHandler(func(_ context.Context, _ recreditFailure) error {
		attempts++
		return errors.New("post store offline")
	}, WithTimeout[recreditFailure](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), recreditFailure{AttachmentID: 21})
	if err == nil {
		t.Fatal("expected dispatch to fail once retries are exhausted")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}
