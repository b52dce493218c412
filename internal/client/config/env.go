package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// EnvConfig mirrors the environment surface. Unset variables leave the
// corresponding Config field untouched.
type EnvConfig struct {
	APIBaseURL       *string        `env:"API_URL"`
	DatabasePath     *string        `env:"DB"`
	RequestTimeout   *time.Duration `env:"REQUEST_TIMEOUT"`
	NoticeTTL        *time.Duration `env:"NOTICE_TTL"`
	TokenScheme      *string        `env:"TOKEN_SCHEME"`
	DescriptorsFile  *string        `env:"DESCRIPTORS_FILE"`
	CheckboxEncoding *string        `env:"CHECKBOX_ENCODING"`
	LogLevel         *string        `env:"LOG_LEVEL"`
	LogBackend       *string        `env:"LOG_BACKEND"`
}

const envPrefix = "SAMPLEKEEPER_"

// dotenvFile is a test seam.
var dotenvFile = ".env"

// osLookuper reads the process environment, falling back to .env entries.
func osLookuper() envconfig.Lookuper {
	dotenv, err := godotenv.Read(dotenvFile)
	if err != nil {
		// A missing or unreadable .env simply contributes nothing.
		dotenv = map[string]string{}
	}
	return envconfig.MultiLookuper(envconfig.OsLookuper(), envconfig.MapLookuper(dotenv))
}

// parseEnv overlays cfg with SAMPLEKEEPER_* values from l.
func parseEnv(cfg *Config, l envconfig.Lookuper) error {
	var ec EnvConfig
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &ec,
		Lookuper: envconfig.PrefixLookuper(envPrefix, l),
	}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	setString(&cfg.APIBaseURL, ec.APIBaseURL)
	setString(&cfg.DatabasePath, ec.DatabasePath)
	setString(&cfg.TokenScheme, ec.TokenScheme)
	setString(&cfg.DescriptorsFile, ec.DescriptorsFile)
	setString(&cfg.CheckboxEncoding, ec.CheckboxEncoding)
	setString(&cfg.LogLevel, ec.LogLevel)
	setString(&cfg.LogBackend, ec.LogBackend)
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.NoticeTTL != nil {
		cfg.NoticeTTL = *ec.NoticeTTL
	}
	return nil
}
