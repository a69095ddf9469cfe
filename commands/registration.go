// Package commands binds the media credit command handlers to whatever the
// host uses to run commands: a CLI or cron registry, go-command's dispatcher,
// or both.
package commands

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-command/dispatcher"

	creditcmd "github.com/goliatone/go-media-credit/internal/commands/credit"
	"github.com/goliatone/go-media-credit/internal/di"
)

// ErrNoHandlers is returned when the container built no command handlers.
var ErrNoHandlers = errors.New("commands: container has no command handlers")

// Target receives each handler. The returned release func, when non-nil,
// undoes the binding.
type Target interface {
	Bind(handler any) (release func(), err error)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(handler any) (func(), error)

func (f TargetFunc) Bind(handler any) (func(), error) { return f(handler) }

// CommandRegistry is the host side registry used for CLI and cron exposure.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Registry records handlers in a host registry. Registrations are permanent.
func Registry(registry CommandRegistry) Target {
	return TargetFunc(func(handler any) (func(), error) {
		return nil, registry.RegisterCommand(handler)
	})
}

// Dispatcher subscribes handlers to go-command's process wide dispatcher so
// dispatcher.Dispatch reaches them.
func Dispatcher() Target {
	return TargetFunc(func(handler any) (func(), error) {
		switch h := handler.(type) {
		case *creditcmd.UpdateAttachmentCreditHandler:
			return dispatcher.SubscribeCommand[creditcmd.UpdateAttachmentCreditCommand](h).Unsubscribe, nil
		default:
			return nil, fmt.Errorf("commands: no dispatcher binding for %T", handler)
		}
	})
}

// Bindings lists the handlers that were bound.
type Bindings struct {
	Handlers []any
	releases []func()
}

// Release undoes every binding that can be undone. It is safe to call twice.
func (b *Bindings) Release() {
	if b == nil {
		return
	}
	for i := len(b.releases) - 1; i >= 0; i-- {
		b.releases[i]()
	}
	b.releases = nil
}

// Bind hands every command handler the container built to each target.
// Target errors are joined; handlers that bound successfully stay bound.
func Bind(container *di.Container, targets ...Target) (*Bindings, error) {
	bindings := &Bindings{}
	if container == nil {
		return bindings, nil
	}
	if handler := container.CreditCommand(); handler != nil {
		bindings.Handlers = append(bindings.Handlers, handler)
	}
	if len(bindings.Handlers) == 0 {
		return bindings, ErrNoHandlers
	}

	var errs []error
	for _, handler := range bindings.Handlers {
		for _, target := range targets {
			if target == nil {
				continue
			}
			release, err := target.Bind(handler)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if release != nil {
				bindings.releases = append(bindings.releases, release)
			}
		}
	}
	return bindings, errors.Join(errs...)
}
