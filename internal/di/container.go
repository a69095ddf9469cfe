package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-media-credit/internal/adapters/memcache"
	"github.com/goliatone/go-media-credit/internal/adapters/noop"
	"github.com/goliatone/go-media-credit/internal/authors"
	creditcmd "github.com/goliatone/go-media-credit/internal/commands/credit"
	"github.com/goliatone/go-media-credit/internal/credit"
	httpapi "github.com/goliatone/go-media-credit/internal/http"
	"github.com/goliatone/go-media-credit/internal/logging"
	"github.com/goliatone/go-media-credit/internal/logging/console"
	"github.com/goliatone/go-media-credit/internal/logging/gologger"
	"github.com/goliatone/go-media-credit/internal/media"
	prommetrics "github.com/goliatone/go-media-credit/internal/metrics/prometheus"
	"github.com/goliatone/go-media-credit/internal/posts"
	"github.com/goliatone/go-media-credit/internal/runtimeconfig"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Subscription is a dispatcher registration the container tears down on Close.
type Subscription interface {
	Unsubscribe()
}

type unsubscribeFunc func()

func (f unsubscribeFunc) Unsubscribe() { f() }

// Container wires module dependencies from runtimeconfig.Config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	cache         interfaces.CacheProvider

	registry *prometheus.Registry
	metrics  *prommetrics.Recorder

	attachmentRepo media.AttachmentRepository
	postRepo       posts.PostRepository
	authorRepo     authors.AuthorRepository

	mediaSvc    media.Service
	postSvc     posts.Service
	authorDir   *authors.Directory
	transformer *credit.Transformer
	renderer    *credit.Renderer
	creditCmd   *creditcmd.UpdateAttachmentCreditHandler
	api         *httpapi.CreditAPI

	subscriptions []Subscription
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies an already opened database; the container will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithCacheProvider overrides the service-level lookup cache.
func WithCacheProvider(cache interfaces.CacheProvider) Option {
	return func(c *Container) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithMetricsRegistry registers collectors on reg instead of a private registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithAttachmentRepository overrides the attachment repository.
func WithAttachmentRepository(repo media.AttachmentRepository) Option {
	return func(c *Container) {
		c.attachmentRepo = repo
	}
}

// WithPostRepository overrides the post repository.
func WithPostRepository(repo posts.PostRepository) Option {
	return func(c *Container) {
		c.postRepo = repo
	}
}

// WithAuthorRepository overrides the author repository.
func WithAuthorRepository(repo authors.AuthorRepository) Option {
	return func(c *Container) {
		c.authorRepo = repo
	}
}

// NewContainer validates cfg and builds every collaborator.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureCache()
	c.configureMetrics()
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		c.closeDB()
		return nil, err
	}
	c.configureCommands()
	c.configureHTTP()

	logging.WithFields(c.logger, map[string]any{
		"storage": cfg.StorageDriver(),
		"cache":   cfg.Features.Cache,
		"metrics": cfg.Features.Metrics,
	}).Debug("media_credit.container.configured")
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		cfg := c.Config.Logging
		switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     cfg.Level,
				Format:    cfg.Format,
				AddSource: cfg.AddSource,
				Focus:     cfg.Focus,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		default:
			opts := console.Options{}
			if level, ok := console.ParseLevel(cfg.Level); ok {
				opts.MinLevel = &level
			}
			c.loggerProvider = console.NewProvider(opts)
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "media_credit.container")
	return nil
}

func (c *Container) configureStorage() error {
	if c.bunDB == nil {
		db, err := openBunDB(c.Config)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = db != nil
	}
	if c.bunDB == nil || !c.Config.Storage.AutoMigrate {
		return nil
	}
	if err := migrate(context.Background(), c.bunDB); err != nil {
		c.closeDB()
		return err
	}
	return nil
}

func (c *Container) configureCache() {
	ttl := c.Config.Cache.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if !c.Config.Features.Cache {
		c.cache = noop.Cache()
		c.cacheService, c.keySerializer = nil, nil
		return
	}
	if c.cache == nil {
		c.cache = memcache.New(ttl)
	}
	if c.bunDB == nil || c.cacheService != nil {
		return
	}
	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = ttl
	service, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		logging.WithFields(c.logger, map[string]any{
			"error": err,
		}).Warn("media_credit.container.repository_cache_disabled")
		return
	}
	c.cacheService = service
	c.keySerializer = repocache.NewDefaultKeySerializer()
}

func (c *Container) configureMetrics() {
	if !c.Config.Features.Metrics {
		return
	}
	c.metrics = prommetrics.NewRecorder(c.registry)
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		if c.attachmentRepo == nil {
			c.attachmentRepo = media.NewBunAttachmentRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.postRepo == nil {
			c.postRepo = posts.NewBunPostRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.authorRepo == nil {
			c.authorRepo = authors.NewBunAuthorRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		return
	}
	if c.attachmentRepo == nil {
		c.attachmentRepo = media.NewMemoryAttachmentRepository()
	}
	if c.postRepo == nil {
		c.postRepo = posts.NewMemoryPostRepository()
	}
	if c.authorRepo == nil {
		c.authorRepo = authors.NewMemoryAuthorRepository()
	}
}

func (c *Container) configureServices() error {
	ttl := c.Config.Cache.DefaultTTL
	mediaLogger := logging.MediaLogger(c.loggerProvider)

	c.mediaSvc = media.NewService(c.attachmentRepo,
		media.WithCache(c.cache, ttl),
		media.WithLogger(mediaLogger),
	)
	c.postSvc = posts.NewService(c.postRepo,
		posts.WithLogger(logging.ModuleLogger(c.loggerProvider, "media_credit.posts")),
	)
	c.authorDir = authors.NewDirectory(c.authorRepo,
		authors.WithCache(c.cache, ttl),
		authors.WithLogger(logging.ModuleLogger(c.loggerProvider, "media_credit.authors")),
	)

	transformerOpts := []credit.TransformerOption{
		credit.WithLogger(logging.TransformerLogger(c.loggerProvider)),
		credit.WithShortcodeName(c.Config.Credits.Shortcode),
	}
	if c.metrics != nil {
		transformerOpts = append(transformerOpts, credit.WithMetrics(c.metrics))
	}
	c.transformer = credit.NewTransformer(c.mediaSvc, transformerOpts...)

	if !c.Config.Features.Rendering {
		return nil
	}
	rendererOpts := []credit.RendererOption{
		credit.WithRenderLogger(logging.RenderLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		rendererOpts = append(rendererOpts, credit.WithRenderMetrics(c.metrics))
	}
	if c.Config.Features.Cache && c.Config.Cache.RenderTTL > 0 {
		rendererOpts = append(rendererOpts, credit.WithRenderCache(c.cache))
	}
	renderer, err := credit.NewRenderer(c.authorDir, c.creditSettings(), rendererOpts...)
	if err != nil {
		return fmt.Errorf("di: renderer: %w", err)
	}
	c.renderer = renderer
	return nil
}

func (c *Container) creditSettings() credit.Settings {
	cfg := c.Config.Credits
	return credit.Settings{
		Shortcode:       cfg.Shortcode,
		Separator:       cfg.Separator,
		Organization:    cfg.Organization,
		CreditAtEnd:     cfg.CreditAtEnd,
		NoDefaultCredit: cfg.NoDefaultCredit,
		SchemaOrg:       cfg.SchemaOrg,
		RenderCacheTTL:  c.Config.Cache.RenderTTL,
	}
}

func (c *Container) configureCommands() {
	opts := []creditcmd.HandlerOption{
		creditcmd.WithAuthors(c.authorDir),
		creditcmd.WithTimeout(c.Config.Commands.Timeout),
	}
	if c.metrics != nil {
		opts = append(opts, creditcmd.WithMetrics(c.metrics))
	}
	c.creditCmd = creditcmd.NewUpdateAttachmentCreditHandler(
		c.mediaSvc,
		c.postSvc,
		c.transformer,
		logging.CommandsLogger(c.loggerProvider),
		opts...,
	)
	if c.Config.Commands.AutoRegisterDispatcher {
		sub := dispatcher.SubscribeCommand[creditcmd.UpdateAttachmentCreditCommand](c.creditCmd)
		c.subscriptions = append(c.subscriptions, unsubscribeFunc(sub.Unsubscribe))
	}
}

func (c *Container) configureHTTP() {
	opts := []httpapi.CreditOption{
		httpapi.WithBasePath(c.Config.HTTP.BasePath),
		httpapi.WithTransformer(c.transformer),
		httpapi.WithCommands(c.creditCmd),
		httpapi.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.renderer != nil {
		opts = append(opts, httpapi.WithRenderer(c.renderer))
	}
	c.api = httpapi.NewCreditAPI(opts...)
}

// Close releases dispatcher subscriptions and any database the container opened.
func (c *Container) Close() error {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}
	c.subscriptions = nil
	return c.closeDB()
}

func (c *Container) closeDB() error {
	if !c.ownsDB || c.bunDB == nil {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB, c.ownsDB = nil, false
	return err
}

// LoggerProvider returns the configured logger provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BunDB returns the SQL handle, or nil for memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// Cache returns the service-level lookup cache.
func (c *Container) Cache() interfaces.CacheProvider {
	return c.cache
}

// MediaService returns the attachment service.
func (c *Container) MediaService() media.Service {
	return c.mediaSvc
}

// PostService returns the post service.
func (c *Container) PostService() posts.Service {
	return c.postSvc
}

// AuthorDirectory returns the author directory.
func (c *Container) AuthorDirectory() *authors.Directory {
	return c.authorDir
}

// Transformer returns the credit transformer.
func (c *Container) Transformer() *credit.Transformer {
	return c.transformer
}

// Renderer returns the credit renderer, or nil when rendering is disabled.
func (c *Container) Renderer() *credit.Renderer {
	return c.renderer
}

// CreditCommand returns the attachment credit command handler.
func (c *Container) CreditCommand() *creditcmd.UpdateAttachmentCreditHandler {
	return c.creditCmd
}

// CreditAPI returns the HTTP adapter.
func (c *Container) CreditAPI() *httpapi.CreditAPI {
	return c.api
}

// Metrics returns the Prometheus recorder, or nil when metrics are disabled.
func (c *Container) Metrics() *prommetrics.Recorder {
	return c.metrics
}
