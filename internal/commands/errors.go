package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command errors. HTTP responses and CLI output
// surface them verbatim.
const (
	CodeInvalid  = "MEDIA_CREDIT_COMMAND_INVALID"
	CodeCanceled = "MEDIA_CREDIT_COMMAND_CANCELED"
	CodeTimeout  = "MEDIA_CREDIT_COMMAND_TIMEOUT"
	CodeFailed   = "MEDIA_CREDIT_COMMAND_FAILED"
)

// WrapValidationError marks err as a rejected message. A validation error
// that is already wrapped is stamped with CodeInvalid; errors in any other
// category keep theirs.
func WrapValidationError(err error) error {
	if err == nil {
		return err
	}
	var coded *goerrors.Error
	if errors.As(err, &coded) {
		if coded.Category == goerrors.CategoryValidation {
			coded.TextCode = CodeInvalid
		}
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "credit command rejected").
		WithTextCode(CodeInvalid)
}

// WrapContextError distinguishes a cancelled caller from an expired deadline.
func WrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "credit command timed out").
			WithTextCode(CodeTimeout)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "credit command canceled").
		WithTextCode(CodeCanceled)
}

// WrapExecuteError marks a failure raised while applying the command.
func WrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "credit command failed").
		WithTextCode(CodeFailed)
}

// OutcomeOf maps an error returned by Handler back to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return OutcomeRejected
	}
	return OutcomeFailed
}
