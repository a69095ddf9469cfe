package shortcode

import (
	"errors"
	"html/template"
	"testing"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

func creditLikeDefinition(passthrough bool) interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name: "media-credit",
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{Name: "id", Type: interfaces.ShortcodeParamInt},
				{Name: "name", Type: interfaces.ShortcodeParamString},
				{Name: "link", Type: interfaces.ShortcodeParamURL},
				{Name: "nofollow", Type: interfaces.ShortcodeParamBool, Default: false},
				{Name: "align", Type: interfaces.ShortcodeParamString, Default: "alignnone"},
			},
			Passthrough: passthrough,
		},
		Handler: func(interfaces.ShortcodeContext, map[string]any, string) (template.HTML, error) {
			return "", nil
		},
	}
}

func TestValidator_CoerceParams(t *testing.T) {
	v := NewValidator()

	got, err := v.CoerceParams(creditLikeDefinition(false), map[string]any{
		"id":       "42",
		"nofollow": "1",
		"link":     "https://example.com/jane",
	})
	if err != nil {
		t.Fatalf("CoerceParams() unexpected error: %v", err)
	}

	if got["id"] != int64(42) {
		t.Fatalf("id mismatch, got %#v", got["id"])
	}
	if got["nofollow"] != true {
		t.Fatalf("nofollow mismatch, got %#v", got["nofollow"])
	}
	if got["align"] != "alignnone" {
		t.Fatalf("expected default align, got %#v", got["align"])
	}
	if got["link"] != "https://example.com/jane" {
		t.Fatalf("link mismatch, got %#v", got["link"])
	}
}

func TestValidator_FlagCoercion(t *testing.T) {
	got, err := NewValidator().CoerceParams(creditLikeDefinition(false), ParseAttributes(`nofollow name`).Map())
	if err != nil {
		t.Fatalf("CoerceParams() unexpected error: %v", err)
	}
	if got["nofollow"] != true {
		t.Fatalf("bare nofollow should coerce to true, got %#v", got["nofollow"])
	}
	if got["name"] != "" {
		t.Fatalf("bare name flag should coerce to empty string, got %#v", got["name"])
	}
}

func TestValidator_UnknownAndPassthrough(t *testing.T) {
	v := NewValidator()
	supplied := map[string]any{"foo": "bar"}

	if _, err := v.CoerceParams(creditLikeDefinition(false), supplied); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}

	got, err := v.CoerceParams(creditLikeDefinition(true), supplied)
	if err != nil {
		t.Fatalf("passthrough CoerceParams() unexpected error: %v", err)
	}
	if got["foo"] != "bar" {
		t.Fatalf("passthrough should keep foo, got %#v", got)
	}
}

func TestValidator_TypeErrors(t *testing.T) {
	v := NewValidator()
	cases := map[string]map[string]any{
		"int":    {"id": "abc"},
		"bool":   {"nofollow": "maybe"},
		"scheme": {"link": "javascript:alert(1)"},
	}
	for name, supplied := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := v.CoerceParams(creditLikeDefinition(false), supplied); !errors.Is(err, ErrParameterType) {
				t.Fatalf("expected ErrParameterType, got %v", err)
			}
		})
	}
}

func TestValidator_MissingRequired(t *testing.T) {
	v := NewValidator()
	def := creditLikeDefinition(false)
	def.Schema.Params = append(def.Schema.Params, interfaces.ShortcodeParam{
		Name: "width", Type: interfaces.ShortcodeParamInt, Required: true,
	})

	if _, err := v.CoerceParams(def, map[string]any{}); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestValidator_CustomValidation(t *testing.T) {
	v := NewValidator()
	def := creditLikeDefinition(false)
	def.Schema.Params[4].Validate = func(value any) error {
		switch value.(string) {
		case "alignnone", "alignleft", "alignright", "aligncenter":
			return nil
		}
		return errors.New("invalid align")
	}

	if _, err := v.CoerceParams(def, map[string]any{"align": "alignleft"}); err != nil {
		t.Fatalf("CoerceParams() unexpected error: %v", err)
	}
	if _, err := v.CoerceParams(def, map[string]any{"align": "sideways"}); err == nil {
		t.Fatal("CoerceParams() expected error for invalid align")
	}
}

func TestValidator_ValidateDefinition(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateDefinition(interfaces.ShortcodeDefinition{Name: "bare"}); !errors.Is(err, ErrMissingHandler) {
		t.Fatalf("expected ErrMissingHandler, got %v", err)
	}

	def := creditLikeDefinition(false)
	def.Schema.Params = append(def.Schema.Params, interfaces.ShortcodeParam{Name: "id", Type: interfaces.ShortcodeParamInt})
	if err := v.ValidateDefinition(def); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition for duplicate param, got %v", err)
	}

	def = creditLikeDefinition(false)
	def.Schema.Params[0].Type = "array"
	if err := v.ValidateDefinition(def); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition for unknown type, got %v", err)
	}
}

func TestValidator_LinkValidator(t *testing.T) {
	v := NewValidator(WithLinkValidator(NewSanitizer(WithURLSchemes("https", "mailto"))))
	if _, err := v.CoerceParams(creditLikeDefinition(false), map[string]any{"link": "mailto:desk@example.com"}); err != nil {
		t.Fatalf("expected mailto link to pass, got %v", err)
	}
	_, err := v.CoerceParams(creditLikeDefinition(false), map[string]any{"link": "http://example.com"})
	if !errors.Is(err, ErrParameterType) {
		t.Fatalf("expected http link to be rejected, got %v", err)
	}
}
