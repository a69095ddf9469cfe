// Package mediacredit keeps the credit shortcodes stored in post content in
// step with the credits recorded on media attachments, and renders those
// shortcodes for display.
package mediacredit

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-media-credit/commands"
	"github.com/goliatone/go-media-credit/internal/authors"
	creditcmd "github.com/goliatone/go-media-credit/internal/commands/credit"
	"github.com/goliatone/go-media-credit/internal/di"
	"github.com/goliatone/go-media-credit/internal/media"
	"github.com/goliatone/go-media-credit/internal/posts"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// MediaService exports the attachment service contract.
type MediaService = media.Service

// PostService exports the post service contract.
type PostService = posts.Service

// AuthorDirectory exports the author directory.
type AuthorDirectory = *authors.Directory

// CreditUpdate exports the credit written into shortcodes.
type CreditUpdate = interfaces.CreditUpdate

// UpdateAttachmentCreditCommand exports the attachment credit command.
type UpdateAttachmentCreditCommand = creditcmd.UpdateAttachmentCreditCommand

// UpdateResult exports the outcome of an attachment credit update.
type UpdateResult = creditcmd.UpdateResult

// ContentRenderer expands credit shortcodes for display.
type ContentRenderer interface {
	Render(ctx context.Context, content string) (string, error)
}

// Module is the top level media credit runtime.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Transformer returns the credit shortcode transformer.
func (m *Module) Transformer() interfaces.CreditTransformer {
	return m.container.Transformer()
}

// UpdateCredit rewrites the credit wrapping imageID in content.
func (m *Module) UpdateCredit(ctx context.Context, content string, imageID int64, update CreditUpdate) string {
	return m.container.Transformer().UpdateCredit(ctx, content, imageID, update)
}

// Media returns the attachment service.
func (m *Module) Media() MediaService {
	return m.container.MediaService()
}

// Posts returns the post service.
func (m *Module) Posts() PostService {
	return m.container.PostService()
}

// Authors returns the author directory.
func (m *Module) Authors() AuthorDirectory {
	return m.container.AuthorDirectory()
}

// Renderer returns the display renderer, or nil when rendering is disabled.
func (m *Module) Renderer() ContentRenderer {
	if renderer := m.container.Renderer(); renderer != nil {
		return renderer
	}
	return nil
}

// UpdateAttachmentCredit stores the credit on the attachment and rewrites the
// parent post when the attachment has one.
func (m *Module) UpdateAttachmentCredit(ctx context.Context, cmd UpdateAttachmentCreditCommand) (UpdateResult, error) {
	return m.container.CreditCommand().Apply(ctx, cmd)
}

// BindCommands hands the module's command handlers to host registries or to
// go-command's dispatcher. See commands.Registry and commands.Dispatcher.
func (m *Module) BindCommands(targets ...commands.Target) (*commands.Bindings, error) {
	return commands.Bind(m.container, targets...)
}

// HTTPHandler returns a mux serving the credit endpoints under the configured
// base path, plus /metrics when metrics are enabled.
func (m *Module) HTTPHandler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := m.container.CreditAPI().Register(mux); err != nil {
		return nil, fmt.Errorf("mediacredit: register credit api: %w", err)
	}
	if recorder := m.container.Metrics(); recorder != nil {
		base := strings.TrimRight(m.container.Config.HTTP.BasePath, "/")
		mux.Handle("GET "+base+"/metrics", recorder.Handler())
	}
	return mux, nil
}

// Close releases the resources the module opened.
func (m *Module) Close() error {
	return m.container.Close()
}
