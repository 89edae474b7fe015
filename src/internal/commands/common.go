package commands

import (
	"context"
	"fmt"

	"github.com/ipmerge/ipmerge/src/internal/config"
	"github.com/ipmerge/ipmerge/src/internal/log"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	// Context is cancelled when the process receives SIGINT or SIGTERM.
	Context    context.Context
	ConfigPath string
	EnvFile    string
	Verbose    bool
}

func (c *AppContext) ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// loadAndValidateConfig loads the configuration file, or the built-in defaults
// when no path is given, and validates it.
func loadAndValidateConfig(configPath string) (*config.Config, error) {
	var cfg *config.Config
	if configPath == "" {
		log.Debugf("No configuration file given, using defaults")
		cfg = config.DefaultConfig()
	} else {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCredentials reads the publish credentials. It runs before any network call so
// that a missing token fails the command immediately.
func loadCredentials(ctx *AppContext) (*config.Credentials, error) {
	creds, err := config.LoadCredentials(ctx.EnvFile)
	if err != nil {
		return nil, err
	}
	log.Debugf("Publishing as %s", creds)
	return creds, nil
}
