package shortcode

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// tagName matches the names WordPress accepts for shortcode tags.
var tagName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DefinitionValidator checks a definition before the registry accepts it.
type DefinitionValidator interface {
	ValidateDefinition(def interfaces.ShortcodeDefinition) error
}

// Registry keeps definitions sorted in processing order. Names are trimmed
// but case-sensitive: [Caption] and [caption] are different tags.
type Registry struct {
	mu        sync.RWMutex
	ordered   []interfaces.ShortcodeDefinition
	validator DefinitionValidator
}

// NewRegistry returns an empty registry. validator may be nil.
func NewRegistry(validator DefinitionValidator) *Registry {
	return &Registry{validator: validator}
}

func processingOrder(a, b interfaces.ShortcodeDefinition) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// Register adds def. It fails with ErrInvalidDefinition for names that are
// not valid tags and ErrDuplicateDefinition when the name is taken.
func (r *Registry) Register(def interfaces.ShortcodeDefinition) error {
	def.Name = strings.TrimSpace(def.Name)
	if !tagName.MatchString(def.Name) {
		return fmt.Errorf("%w: tag name %q", ErrInvalidDefinition, def.Name)
	}
	if r.validator != nil {
		if err := r.validator.ValidateDefinition(def); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(def.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateDefinition, def.Name)
	}
	at, _ := slices.BinarySearchFunc(r.ordered, def, processingOrder)
	r.ordered = slices.Insert(r.ordered, at, def)
	return nil
}

func (r *Registry) indexOf(name string) int {
	return slices.IndexFunc(r.ordered, func(def interfaces.ShortcodeDefinition) bool {
		return def.Name == name
	})
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (interfaces.ShortcodeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(strings.TrimSpace(name)); i >= 0 {
		return r.ordered[i], true
	}
	return interfaces.ShortcodeDefinition{}, false
}

// List returns a copy of the definitions in processing order.
func (r *Registry) List() []interfaces.ShortcodeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.ordered)
}

// Names returns the tag names in processing order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.ordered))
	for i, def := range r.ordered {
		names[i] = def.Name
	}
	return names
}

// Remove drops name; unknown names are ignored.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(strings.TrimSpace(name)); i >= 0 {
		r.ordered = slices.Delete(r.ordered, i, i+1)
	}
}

var _ interfaces.ShortcodeRegistry = (*Registry)(nil)
