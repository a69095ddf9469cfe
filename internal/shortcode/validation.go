package shortcode

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// coercer turns a parsed attribute value into the declared parameter type.
type coercer func(v *Validator, value any) (any, error)

var coercers = map[interfaces.ShortcodeParamType]coercer{
	interfaces.ShortcodeParamString: func(_ *Validator, value any) (any, error) {
		return text(value), nil
	},
	interfaces.ShortcodeParamInt: func(_ *Validator, value any) (any, error) {
		if s, ok := value.(string); ok {
			value = strings.TrimSpace(s)
		}
		return cast.ToInt64E(value)
	},
	interfaces.ShortcodeParamBool: func(_ *Validator, value any) (any, error) {
		return truthy(value)
	},
	interfaces.ShortcodeParamURL: func(v *Validator, value any) (any, error) {
		link := strings.TrimSpace(text(value))
		if err := v.urls.ValidateURL(link); err != nil {
			return nil, err
		}
		return link, nil
	},
}

var paramTypes = func() []any {
	types := make([]any, 0, len(coercers))
	for paramType := range coercers {
		types = append(types, paramType)
	}
	return types
}()

// Validator checks definitions at registration and coerces attribute
// values at render time.
type Validator struct {
	urls interfaces.ShortcodeSanitizer
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithLinkValidator sets who decides which link values are acceptable.
// NewSanitizer's http/https rule is the default.
func WithLinkValidator(urls interfaces.ShortcodeSanitizer) ValidatorOption {
	return func(v *Validator) {
		if urls != nil {
			v.urls = urls
		}
	}
}

// NewValidator returns a Validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	if v.urls == nil {
		v.urls = NewSanitizer()
	}
	return v
}

// ValidateDefinition requires a handler and a schema whose parameters have
// unique names and known types.
func (v *Validator) ValidateDefinition(def interfaces.ShortcodeDefinition) error {
	if err := validation.Validate(def.Name, validation.Required, validation.Match(tagName)); err != nil {
		return fmt.Errorf("%w: name %v", ErrInvalidDefinition, err)
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: %s", ErrMissingHandler, def.Name)
	}

	problems := validation.Errors{}
	declared := map[string]bool{}
	for i, param := range def.Schema.Params {
		key := param.Name
		if key == "" {
			key = fmt.Sprint(i)
		}
		key = "params." + key
		switch {
		case declared[param.Name]:
			problems[key] = validation.NewError("shortcode.param.duplicate", "is declared twice")
		case validation.Validate(param.Name, validation.Required, validation.Match(tagName)) != nil:
			problems[key] = validation.NewError("shortcode.param.name", "is not a valid attribute name")
		default:
			if err := validation.Validate(param.Type, validation.Required, validation.In(paramTypes...)); err != nil {
				problems[key] = err
			}
		}
		declared[param.Name] = true
	}
	if err := problems.Filter(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, def.Name, err)
	}
	return nil
}

// CoerceParams returns the definition's defaults overlaid with supplied,
// each value converted to its declared type. Undeclared attributes are an
// error unless the schema is Passthrough, which keeps them as written.
func (v *Validator) CoerceParams(def interfaces.ShortcodeDefinition, supplied map[string]any) (map[string]any, error) {
	declared := make(map[string]interfaces.ShortcodeParam, len(def.Schema.Params))
	params := make(map[string]any, len(supplied)+len(def.Schema.Params))
	for _, param := range def.Schema.Params {
		declared[param.Name] = param
		if param.Default != nil {
			params[param.Name] = param.Default
		}
	}

	for name, value := range supplied {
		param, known := declared[name]
		if !known {
			if !def.Schema.Passthrough {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
			}
			params[name] = value
			continue
		}
		coerce, ok := coercers[param.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %s has unsupported type %q", ErrParameterType, name, param.Type)
		}
		converted, err := coerce(v, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %v", ErrParameterType, name, err)
		}
		if param.Validate != nil {
			if err := param.Validate(converted); err != nil {
				return nil, err
			}
		}
		params[name] = converted
	}

	for _, param := range def.Schema.Params {
		if _, ok := params[param.Name]; param.Required && !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, param.Name)
		}
	}
	return params, nil
}

// text reads a bare flag (parsed as true) as empty text.
func text(value any) string {
	if _, flag := value.(bool); flag {
		return ""
	}
	return cast.ToString(value)
}

// truthy accepts the spellings stored credits use for nofollow: a bare
// flag, "1", "true", "yes" or "on".
func truthy(value any) (bool, error) {
	s, ok := value.(string)
	if !ok {
		return cast.ToBoolE(value)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "", "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("cannot read %q as a flag", s)
}
