// Package config loads runtime configuration for the samplekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment: a .env file in the working directory (joho/godotenv) and
//     SAMPLEKEEPER_* variables (sethvargo/go-envconfig). Real environment
//     variables win over .env entries.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API (e.g. http://localhost:8000/api)
//	-d string   path of the local session database
//	-t int      request timeout in seconds (0 = transport default)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "database_path": "samplekeeper.db",
//	  "request_timeout": "30s",
//	  "notice_ttl": "3s",
//	  "token_scheme": "Token",
//	  "descriptors_file": "entities.yaml",
//	  "checkbox_encoding": "int",
//	  "log_level": "info",
//	  "log_backend": "slog"
//	}
//
// Environment variables
//
//	SAMPLEKEEPER_API_URL, SAMPLEKEEPER_DB, SAMPLEKEEPER_REQUEST_TIMEOUT,
//	SAMPLEKEEPER_NOTICE_TTL, SAMPLEKEEPER_TOKEN_SCHEME,
//	SAMPLEKEEPER_DESCRIPTORS_FILE, SAMPLEKEEPER_CHECKBOX_ENCODING,
//	SAMPLEKEEPER_LOG_LEVEL, SAMPLEKEEPER_LOG_BACKEND
//
// Primary API
//
//   - type Config                              - runtime settings
//   - func LoadConfig(args) (*Config, error)   - defaults, JSON, env, flags, then Validate
//   - func (*Config) LoadDefaults()            - sets sensible defaults
package config
