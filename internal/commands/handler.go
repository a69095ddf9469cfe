package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single command run.
const DefaultCommandTimeout = 30 * time.Second

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler runs credit commands: it validates the message, applies the
// timeout, categorises the error and notifies observers.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	observers []Observer[T]
	logged    bool
}

// NewHandler creates a handler that satisfies go-command's Commander interface.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if !h.logged {
		h.observers = append([]Observer[T]{LogObserver[T](h.logger)}, h.observers...)
	}
	return h
}

// Execute conforms to command.Commander[T].Execute.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	return h.Run(ctx, msg, h.exec)
}

// Run executes fn for msg under the handler's validation, timeout and
// reporting. Callers that need a result out of the run capture it in fn.
func (h *Handler[T]) Run(ctx context.Context, msg T, fn command.CommandFunc[T]) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fields := messageFields(msg, h.operation)
	start := time.Now()

	err := h.run(ctx, msg, fn, fields)
	h.notify(ctx, msg, Report{
		Command:   command.GetMessageType(msg),
		Operation: h.operation,
		Outcome:   OutcomeOf(err),
		Duration:  time.Since(start),
		Err:       err,
		Fields:    fields,
	})
	return err
}

func (h *Handler[T]) run(ctx context.Context, msg T, fn command.CommandFunc[T], fields map[string]any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return WrapValidationError(err)
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return WrapContextError(err)
	}

	logging.WithFields(h.logger.WithContext(ctx), fields).Debug("media_credit.command.start")
	err := fn(ctx, msg)
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}
	if OutcomeOf(err) == OutcomeCanceled {
		return WrapContextError(err)
	}
	return WrapExecuteError(err)
}

func (h *Handler[T]) notify(ctx context.Context, msg T, report Report) {
	for _, observer := range h.observers {
		observer(ctx, msg, report)
	}
}

// WithTimeout overrides the default run timeout. Zero disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout < 0 {
			timeout = 0
		}
		h.timeout = timeout
	}
}

// WithLogger injects the logger used for start entries and the default
// LogObserver.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = logging.Ensure(logger)
	}
}

// WithOperation sets the operation name carried by entries and reports.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithObserver adds an observer. Nil observers are ignored.
func WithObserver[T command.Message](observer Observer[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		if observer != nil {
			h.observers = append(h.observers, observer)
		}
	}
}

// WithoutLogObserver drops the default outcome entry, for hosts that
// report outcomes themselves.
func WithoutLogObserver[T command.Message]() HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logged = true
	}
}
