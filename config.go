package mediacredit

import "github.com/goliatone/go-media-credit/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrShortcodeNameInvalid    = runtimeconfig.ErrShortcodeNameInvalid
	ErrCommandTimeoutInvalid   = runtimeconfig.ErrCommandTimeoutInvalid
)

type (
	Config         = runtimeconfig.Config
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	CreditsConfig  = runtimeconfig.CreditsConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	CommandsConfig = runtimeconfig.CommandsConfig
)

// DefaultConfig returns memory-backed defaults with caching and rendering on.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
