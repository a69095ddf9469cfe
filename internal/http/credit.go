package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	creditcmd "github.com/goliatone/go-media-credit/internal/commands/credit"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/internal/shortcode"
	"github.com/goliatone/go-media-credit/internal/validation"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// ContentRenderer expands stored shortcodes into display HTML.
type ContentRenderer interface {
	Render(ctx context.Context, content string) (string, error)
}

// CreditCommander applies attachment credit updates.
type CreditCommander interface {
	Apply(ctx context.Context, msg creditcmd.UpdateAttachmentCreditCommand) (creditcmd.UpdateResult, error)
}

// CreditAPI serves the media credit endpoints.
type CreditAPI struct {
	basePath    string
	transformer interfaces.CreditTransformer
	renderer    ContentRenderer
	commands    CreditCommander
	urls        interfaces.ShortcodeSanitizer
	logger      interfaces.Logger
}

// CreditOption mutates the CreditAPI configuration.
type CreditOption func(*CreditAPI)

// NewCreditAPI constructs a CreditAPI.
func NewCreditAPI(opts ...CreditOption) *CreditAPI {
	api := &CreditAPI{
		basePath: "/api",
		urls:     shortcode.NewSanitizer(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base path (defaults to "/api").
func WithBasePath(path string) CreditOption {
	return func(api *CreditAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithTransformer wires the credit transformer used by the update endpoint.
func WithTransformer(transformer interfaces.CreditTransformer) CreditOption {
	return func(api *CreditAPI) {
		api.transformer = transformer
	}
}

// WithRenderer wires the renderer used by the render endpoint.
func WithRenderer(renderer ContentRenderer) CreditOption {
	return func(api *CreditAPI) {
		api.renderer = renderer
	}
}

// WithCommands wires the attachment credit command handler.
func WithCommands(commander CreditCommander) CreditOption {
	return func(api *CreditAPI) {
		api.commands = commander
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) CreditOption {
	return func(api *CreditAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register mounts the routes whose collaborators are configured.
func (api *CreditAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: credit api is nil")
	}

	root := route(api.basePath, "media-credit")
	if api.transformer != nil {
		mux.HandleFunc("POST "+root+"/update", withRequestFields(api.handleUpdate))
	}
	if api.renderer != nil {
		mux.HandleFunc("POST "+root+"/render", withRequestFields(api.handleRender))
	}
	if api.commands != nil {
		mux.HandleFunc("POST "+root+"/attachments/{id}/credit", withRequestFields(api.handleAttachmentCredit))
	}
	return nil
}

type updateRequest struct {
	Content      string `json:"content"`
	AttachmentID int64  `json:"attachment_id"`
	AuthorID     int64  `json:"author_id"`
	Freeform     string `json:"freeform"`
	URL          string `json:"url"`
	Nofollow     bool   `json:"nofollow"`
}

type contentResponse struct {
	Content string `json:"content"`
}

func (api *CreditAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodePayload(w, r, validation.CreditUpdate, &req); err != nil {
		writeError(w, err)
		return
	}
	url := strings.TrimSpace(req.URL)
	if err := api.urls.ValidateURL(url); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	content := api.transformer.UpdateCredit(ctx, req.Content, req.AttachmentID, interfaces.CreditUpdate{
		AuthorID: req.AuthorID,
		Freeform: strings.TrimSpace(req.Freeform),
		URL:      url,
		Nofollow: req.Nofollow,
	})
	logging.WithFields(logging.WithAttachment(api.logger.WithContext(ctx), req.AttachmentID, 0), map[string]any{
		"changed": content != req.Content,
	}).Debug("http.credit.update")
	writeJSON(w, http.StatusOK, contentResponse{Content: content})
}

type renderRequest struct {
	Content string `json:"content"`
}

type renderResponse struct {
	HTML string `json:"html"`
}

func (api *CreditAPI) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodePayload(w, r, validation.CreditRender, &req); err != nil {
		writeError(w, err)
		return
	}
	html, err := api.renderer.Render(r.Context(), req.Content)
	if err != nil {
		logging.WithFields(api.logger.WithContext(r.Context()), map[string]any{
			"error": err,
		}).Warn("http.credit.render_failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{HTML: html})
}

type attachmentCreditRequest struct {
	AuthorID   int64  `json:"author_id"`
	Freeform   string `json:"freeform"`
	URL        string `json:"url"`
	Nofollow   bool   `json:"nofollow"`
	PostID     int64  `json:"post_id"`
	AllowEmpty bool   `json:"allow_empty"`
}

type attachmentCreditResponse struct {
	AttachmentID   int64  `json:"attachment_id"`
	PostID         int64  `json:"post_id,omitempty"`
	ContentChanged bool   `json:"content_changed"`
	Content        string `json:"content,omitempty"`
}

func (api *CreditAPI) handleAttachmentCredit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "attachment id must be a positive integer"})
		return
	}
	var req attachmentCreditRequest
	if err := decodePayload(w, r, validation.AttachmentCredit, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := api.commands.Apply(r.Context(), creditcmd.UpdateAttachmentCreditCommand{
		AttachmentID: id,
		AuthorID:     req.AuthorID,
		Freeform:     req.Freeform,
		URL:          req.URL,
		Nofollow:     req.Nofollow,
		PostID:       req.PostID,
		AllowEmpty:   req.AllowEmpty,
	})
	if err != nil {
		logging.WithFields(logging.WithAttachment(api.logger.WithContext(r.Context()), id, req.PostID), map[string]any{
			"error": err,
		}).Warn("http.credit.update_failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attachmentCreditResponse{
		AttachmentID:   id,
		PostID:         result.PostID,
		ContentChanged: result.ContentChanged,
		Content:        result.Content,
	})
}
