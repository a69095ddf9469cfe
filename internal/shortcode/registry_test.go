package shortcode

import (
	"errors"
	"slices"
	"testing"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

type noopValidator struct{}

func (noopValidator) ValidateDefinition(interfaces.ShortcodeDefinition) error { return nil }

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry(noopValidator{})

	def := interfaces.ShortcodeDefinition{
		Name: "media-credit",
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{Name: "id", Type: interfaces.ShortcodeParamInt},
			},
			Passthrough: true,
		},
	}
	if err := registry.Register(def); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	got, ok := registry.Get(" media-credit ")
	if !ok {
		t.Fatalf("Get() expected definition")
	}
	if got.Name != def.Name {
		t.Fatalf("Get() wrong definition, got %s", got.Name)
	}
	if _, ok := registry.Get("Media-Credit"); ok {
		t.Fatalf("Get() should be case sensitive")
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	registry := NewRegistry(noopValidator{})

	def := interfaces.ShortcodeDefinition{Name: "caption"}
	if err := registry.Register(def); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if err := registry.Register(def); !errors.Is(err, ErrDuplicateDefinition) {
		t.Fatalf("Register() expected ErrDuplicateDefinition, got %v", err)
	}
}

func TestRegistry_RejectsBadNames(t *testing.T) {
	registry := NewRegistry(noopValidator{})
	for _, name := range []string{"", "  ", "two words", "a]b", "x/y"} {
		if err := registry.Register(interfaces.ShortcodeDefinition{Name: name}); !errors.Is(err, ErrInvalidDefinition) {
			t.Fatalf("Register(%q) expected ErrInvalidDefinition, got %v", name, err)
		}
	}
}

func TestRegistry_ListSortedAndRemove(t *testing.T) {
	registry := NewRegistry(noopValidator{})
	for _, name := range []string{"media-credit", "caption", "gallery"} {
		if err := registry.Register(interfaces.ShortcodeDefinition{Name: name}); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	names := registry.Names()
	want := []string{"caption", "gallery", "media-credit"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() order mismatch at %d: got %s, want %s", i, names[i], want[i])
		}
	}

	registry.Remove("gallery")
	registry.Remove("unknown")
	if got := registry.List(); len(got) != 2 {
		t.Fatalf("List() expected 2 definitions after remove, got %d", len(got))
	}
}

func TestRegistry_ProcessingOrder(t *testing.T) {
	registry := NewRegistry(nil)
	mustRegister(t, registry,
		interfaces.ShortcodeDefinition{Name: "media-credit", Order: 10},
		interfaces.ShortcodeDefinition{Name: "wp_caption", Order: 0},
		interfaces.ShortcodeDefinition{Name: "caption", Order: 0},
		interfaces.ShortcodeDefinition{Name: "gallery", Order: 20},
	)

	want := []string{"caption", "wp_caption", "media-credit", "gallery"}
	if got := registry.Names(); !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	registry.Remove("wp_caption")
	if err := registry.Register(interfaces.ShortcodeDefinition{Name: "wrap", Order: -1}); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if got := registry.List()[0].Name; got != "wrap" {
		t.Fatalf("expected lowest order first, got %s", got)
	}
}
