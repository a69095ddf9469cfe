package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	ErrLoggingProviderRequired = errors.New("media credit config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("media credit config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("media credit config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("media credit config: logging format is invalid")
	ErrStorageDriverUnknown    = errors.New("media credit config: storage driver is invalid")
	ErrStorageDSNRequired      = errors.New("media credit config: storage dsn is required for sql drivers")
	ErrCacheTTLInvalid         = errors.New("media credit config: cache ttl must be positive when cache is enabled")
	ErrShortcodeNameInvalid    = errors.New("media credit config: shortcode name is invalid")
	ErrCommandTimeoutInvalid   = errors.New("media credit config: command timeout must be zero or positive")
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates feature flags and adapter settings for the module.
type Config struct {
	Features Features       `toml:"features"`
	Logging  LoggingConfig  `toml:"logging"`
	Storage  StorageConfig  `toml:"storage"`
	Cache    CacheConfig    `toml:"cache"`
	Credits  CreditsConfig  `toml:"credits"`
	HTTP     HTTPConfig     `toml:"http"`
	Commands CommandsConfig `toml:"commands"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger    bool `toml:"logger"`
	Cache     bool `toml:"cache"`
	Metrics   bool `toml:"metrics"`
	Rendering bool `toml:"rendering"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver      string `toml:"driver"`
	DSN         string `toml:"dsn"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	DefaultTTL time.Duration `toml:"default_ttl"`
	// RenderTTL caches rendered credit figures; zero renders every time.
	RenderTTL time.Duration `toml:"render_ttl"`
}

// CreditsConfig controls how credits are stored and displayed.
type CreditsConfig struct {
	Shortcode       string `toml:"shortcode"`
	Separator       string `toml:"separator"`
	Organization    string `toml:"organization"`
	CreditAtEnd     bool   `toml:"credit_at_end"`
	NoDefaultCredit bool   `toml:"no_default_credit"`
	SchemaOrg       bool   `toml:"schema_org"`
}

// HTTPConfig captures the adapter mount point.
type HTTPConfig struct {
	BasePath string `toml:"base_path"`
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	AutoRegisterDispatcher bool          `toml:"auto_register_dispatcher"`
	Timeout                time.Duration `toml:"timeout"`
}

// DefaultConfig returns the in-memory, console-logged defaults.
func DefaultConfig() Config {
	return Config{
		Features: Features{
			Cache:     true,
			Rendering: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
		},
		Cache: CacheConfig{
			DefaultTTL: 5 * time.Minute,
		},
		Credits: CreditsConfig{
			Shortcode: "media-credit",
			Separator: " | ",
		},
		HTTP: HTTPConfig{
			BasePath: "/api",
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// LoadFile decodes a TOML file on top of DefaultConfig and validates it.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("media credit config: read %s: %w", path, err)
	}
	return Decode(string(raw), cfg)
}

// Decode overlays TOML document data on base and validates the result.
func Decode(data string, base Config) (Config, error) {
	cfg := base
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return base, fmt.Errorf("media credit config: decode: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return base, fmt.Errorf("media credit config: unknown keys %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Driver) {
	case DriverMemory, "":
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if cfg.Features.Cache && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Cache.RenderTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if name := strings.TrimSpace(cfg.Credits.Shortcode); name != "" && strings.ContainsAny(name, " []/\"'") {
		return fmt.Errorf("%w: %q", ErrShortcodeNameInvalid, name)
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// StorageDriver returns the normalized driver name.
func (cfg Config) StorageDriver() string {
	driver := normalize(cfg.Storage.Driver)
	if driver == "" {
		return DriverMemory
	}
	return driver
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
