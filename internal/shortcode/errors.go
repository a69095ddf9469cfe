package shortcode

import "errors"

// Registration.
var (
	ErrDuplicateDefinition = errors.New("shortcode: duplicate definition")
	ErrInvalidDefinition   = errors.New("shortcode: invalid definition")
	ErrMissingHandler      = errors.New("shortcode: definition has no handler")
)

// Rendering.
var (
	ErrUnknownShortcode      = errors.New("shortcode: unknown shortcode")
	ErrServiceNotInitialised = errors.New("shortcode: service not initialised")
	ErrUnknownParameter      = errors.New("shortcode: unknown parameter")
	ErrMissingParameter      = errors.New("shortcode: missing required parameter")
	// ErrParameterType wraps every coercion failure, including a rejected link.
	ErrParameterType = errors.New("shortcode: parameter type mismatch")
)

// Credit links and attributes.
var (
	ErrURLScheme       = errors.New("shortcode: url scheme not permitted")
	ErrUnsafeAttribute = errors.New("shortcode: attribute not permitted")
)
