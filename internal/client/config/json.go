package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/samplekeeper/internal/flagx"
	"github.com/dmitrijs2005/samplekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "zero" so a partial file only overrides
// what it names.
type JsonConfig struct {
	APIBaseURL       *string         `json:"api_base_url"`
	DatabasePath     *string         `json:"database_path"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	NoticeTTL        *timex.Duration `json:"notice_ttl"`
	TokenScheme      *string         `json:"token_scheme"`
	DescriptorsFile  *string         `json:"descriptors_file"`
	CheckboxEncoding *string         `json:"checkbox_encoding"`
	LogLevel         *string         `json:"log_level"`
	LogBackend       *string         `json:"log_backend"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// -c/-config in args. Without the flag it is a no-op.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.TokenScheme, jc.TokenScheme)
	setString(&cfg.DescriptorsFile, jc.DescriptorsFile)
	setString(&cfg.CheckboxEncoding, jc.CheckboxEncoding)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.NoticeTTL != nil {
		cfg.NoticeTTL = jc.NoticeTTL.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
