package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/dmitrijs2005/samplekeeper/internal/common"
)

// Checkbox wire encodings.
const (
	CheckboxAsInt  = "int"
	CheckboxAsBool = "bool"
)

// Config holds runtime settings for the samplekeeper CLI.
//
// Fields:
//   - APIBaseURL: base URL of the REST backend, including the /api prefix.
//   - DatabasePath: SQLite file holding the persisted session.
//   - RequestTimeout: per-request timeout; zero leaves the transport default.
//   - NoticeTTL: how long a transient status message stays visible.
//   - TokenScheme: prefix of the Authorization header value.
//   - DescriptorsFile: optional YAML entity table replacing the built-in one.
//   - CheckboxEncoding: "int" (1/0, default) or "bool" on the wire.
//   - LogLevel / LogBackend: logging.Options passthrough.
type Config struct {
	APIBaseURL       string
	DatabasePath     string
	RequestTimeout   time.Duration
	NoticeTTL        time.Duration
	TokenScheme      string
	DescriptorsFile  string
	CheckboxEncoding string
	LogLevel         string
	LogBackend       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.DatabasePath = "samplekeeper.db"
	c.RequestTimeout = 0
	c.NoticeTTL = 3 * time.Second
	c.TokenScheme = common.DefaultTokenScheme
	c.DescriptorsFile = ""
	c.CheckboxEncoding = CheckboxAsInt
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.APIBaseURL, validation.Required, is.URL),
		validation.Field(&c.DatabasePath, validation.Required),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.NoticeTTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.TokenScheme, validation.Required),
		validation.Field(&c.CheckboxEncoding, validation.Required, validation.In(CheckboxAsInt, CheckboxAsBool)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogBackend, validation.In("slog", "zerolog")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if a -c/-config flag is present in args), from the environment
// (including a .env file) and from command-line flags. Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, osLookuper()); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
