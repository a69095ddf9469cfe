package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-media-credit/internal/commands"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/internal/media"
	"github.com/goliatone/go-media-credit/internal/posts"
	"github.com/goliatone/go-media-credit/internal/shortcode"
	"github.com/goliatone/go-media-credit/internal/validation"
)

const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error   string             `json:"error"`
	Code    string             `json:"code,omitempty"`
	Message string             `json:"message,omitempty"`
	Issues  []validation.Issue `json:"issues,omitempty"`
}

// route joins the configured base path with the endpoint segments.
func route(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	for _, part := range append([]string{base}, segments...) {
		if trimmed := strings.Trim(strings.TrimSpace(part), "/"); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return "/" + strings.Join(parts, "/")
}

// decodePayload reads the body, checks it against the named schema and
// decodes it into target.
func decodePayload(w http.ResponseWriter, r *http.Request, payload validation.Payload, target any) error {
	if r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if err := validation.Check(payload, raw); err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := errorFor(err)
	writeJSON(w, status, body)
}

// errorRule maps a family of errors to a status and error label. Rules are
// checked in order and the first match wins.
type errorRule struct {
	status int
	label  string
	match  func(error) bool
}

var errorRules = []errorRule{
	{http.StatusRequestEntityTooLarge, "payload_too_large", isType[*http.MaxBytesError]},
	{http.StatusNotFound, "not_found", isType[*media.NotFoundError]},
	{http.StatusNotFound, "not_found", isType[*posts.NotFoundError]},
	{http.StatusUnprocessableEntity, "validation_failed", func(err error) bool {
		return errors.Is(err, validation.ErrSchemaValidation)
	}},
	{http.StatusBadRequest, "bad_request", func(err error) bool {
		return errors.Is(err, shortcode.ErrURLScheme) ||
			errors.Is(err, shortcode.ErrParameterType) ||
			goerrors.IsCategory(err, goerrors.CategoryValidation)
	}},
	{http.StatusGatewayTimeout, "timeout", func(err error) bool {
		return textCode(err) == commands.CodeTimeout
	}},
	{http.StatusServiceUnavailable, "canceled", func(err error) bool {
		return commands.OutcomeOf(err) == commands.OutcomeCanceled
	}},
}

func errorFor(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	body := errorResponse{Error: "internal_error", Code: textCode(err), Message: err.Error()}
	for _, rule := range errorRules {
		if rule.match(err) {
			body.Error = rule.label
			if rule.status == http.StatusUnprocessableEntity {
				body.Issues = validation.Issues(err)
			}
			return rule.status, body
		}
	}
	return http.StatusInternalServerError, body
}

func isType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func textCode(err error) string {
	var coded *goerrors.Error
	if errors.As(err, &coded) {
		return coded.TextCode
	}
	return ""
}

// withRequestFields binds the request path, and the X-Request-ID header
// when present, to the request context for every log entry.
func withRequestFields(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields := map[string]any{"http_path": r.URL.Path}
		if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" {
			fields["request_id"] = id
		}
		next(w, r.WithContext(logging.ContextWithFields(r.Context(), fields)))
	}
}
