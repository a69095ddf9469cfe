package di

import (
	"testing"

	"github.com/goliatone/go-media-credit/internal/logging/gologger"
	"github.com/goliatone/go-media-credit/internal/runtimeconfig"
)

func TestConfigureLoggerProvider(t *testing.T) {
	cases := []struct {
		name     string
		enabled  bool
		provider string
		check    func(*testing.T, *Container)
	}{
		{
			name:     "go-logger",
			enabled:  true,
			provider: "gologger",
			check: func(t *testing.T, c *Container) {
				if _, ok := c.loggerProvider.(*gologger.Provider); !ok {
					t.Fatalf("expected go-logger provider, got %T", c.loggerProvider)
				}
			},
		},
		{
			name:     "console",
			enabled:  true,
			provider: "console",
			check: func(t *testing.T, c *Container) {
				if c.loggerProvider == nil {
					t.Fatal("expected a console provider")
				}
				if _, ok := c.loggerProvider.(*gologger.Provider); ok {
					t.Fatal("expected console provider, got go-logger")
				}
			},
		},
		{
			name: "disabled",
			check: func(t *testing.T, c *Container) {
				if c.loggerProvider != nil {
					t.Fatalf("expected no provider, got %T", c.loggerProvider)
				}
				c.logger.Info("dropped")
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			cfg.Features.Logger = tc.enabled
			if tc.provider != "" {
				cfg.Logging.Provider = tc.provider
				cfg.Logging.Level = "debug"
				cfg.Logging.Format = "json"
			}
			container, err := NewContainer(cfg)
			if err != nil {
				t.Fatalf("NewContainer returned error: %v", err)
			}
			tc.check(t, container)
		})
	}
}
