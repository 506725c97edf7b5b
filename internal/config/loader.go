package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// envBindings maps each mapstructure key to the literal environment
// variable name it's read from. Flat, unprefixed names match spec.md §6
// exactly (RANGER_HOST, not RANGERACL_RANGER_HOST) — this intentionally
// departs from the teacher's SENTINEL_GATE_-prefixed, dot-to-underscore
// scheme since the spec fixes the variable names itself.
var envBindings = map[string]string{
	"ranger.host":             "RANGER_HOST",
	"ranger.user":             "RANGER_USER",
	"ranger.password":         "RANGER_PASSWORD",
	"ranger.service_name":     "RANGER_SERVICE_NAME",
	"ranger.servicedef_name":  "RANGER_SERVICEDEF_NAME",
	"ranger.refresh_interval": "RANGER_REFRESH_INTERVAL",
	"ranger.request_timeout":  "RANGER_REQUEST_TIMEOUT",

	"audit.solr_url":          "SOLR_AUDIT_URL",
	"audit.channel_size":      "AUDIT_CHANNEL_SIZE",
	"audit.batch_size":        "AUDIT_BATCH_SIZE",
	"audit.flush_interval":    "AUDIT_FLUSH_INTERVAL",
	"audit.send_timeout":      "AUDIT_SEND_TIMEOUT",
	"audit.warning_threshold": "AUDIT_WARNING_THRESHOLD",

	"server.listen_addr": "LISTEN_ADDR",
	"server.agent_host":  "API_HOST",
	"server.log_level":   "LOG_LEVEL",

	"cache.decision_ttl":      "RANGER_CACHE_TTL",
	"cache.decision_capacity": "DECISION_CACHE_CAPACITY",
	"cache.subject_ttl":       "SUBJECT_CACHE_TTL",
	"cache.subject_capacity":  "SUBJECT_CACHE_CAPACITY",

	"ip_whitelist": "IP_WHITELIST",
}

// Load binds every environment variable in envBindings, unmarshals the
// result into a Config, applies defaults, and validates it.
func Load() (*Config, error) {
	v := viper.New()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
