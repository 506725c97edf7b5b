// Package config provides the environment-variable configuration schema
// for the decision point: where the policy source and audit sink live,
// which service to enforce, and the operational knobs around caching and
// logging.
package config

// Config is the top-level configuration, populated entirely from
// environment variables (no config file — see loader.go).
type Config struct {
	// Ranger is the policy source connection and the service this process
	// enforces policies for.
	Ranger RangerConfig `mapstructure:"ranger"`

	// Audit configures the Solr-compatible audit sink and the emitter's
	// backpressure behavior.
	Audit AuditConfig `mapstructure:"audit"`

	// Server configures the HTTP listener and logging.
	Server ServerConfig `mapstructure:"server"`

	// Cache configures the decision and subject TTL caches.
	Cache CacheConfig `mapstructure:"cache"`

	// IPWhitelist restricts which client IPs may call /check. Empty means
	// the check is disabled — it is opt-in, per spec.md §6.
	IPWhitelist []string `mapstructure:"ip_whitelist"`
}

// RangerConfig configures the policy source client (C2) and the service
// whose policies this process enforces.
type RangerConfig struct {
	Host              string `mapstructure:"host" validate:"required,url"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	ServiceName       string `mapstructure:"service_name" validate:"required"`
	ServiceDefName    string `mapstructure:"servicedef_name" validate:"required"`
	RefreshInterval   string `mapstructure:"refresh_interval" validate:"omitempty"`
	RequestTimeout    string `mapstructure:"request_timeout" validate:"omitempty"`
}

// AuditConfig configures where decisions are audited and how the emitter
// applies backpressure under load.
type AuditConfig struct {
	SolrURL          string `mapstructure:"solr_url" validate:"required,url"`
	ChannelSize      int    `mapstructure:"channel_size" validate:"omitempty,min=1"`
	BatchSize        int    `mapstructure:"batch_size" validate:"omitempty,min=1"`
	FlushInterval    string `mapstructure:"flush_interval" validate:"omitempty"`
	SendTimeout      string `mapstructure:"send_timeout" validate:"omitempty"`
	WarningThreshold int    `mapstructure:"warning_threshold" validate:"omitempty,min=0,max=100"`
}

// ServerConfig configures the HTTP listener and logging. AgentHost is
// spec.md's API_HOST — it is not the listen address; it is stamped into
// every audit record's agentHost field so the audit trail can tell which
// process instance made the decision. ListenAddr is this implementation's
// own operational addition, since spec.md names no bind-address variable.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"omitempty,hostname_port"`
	AgentHost  string `mapstructure:"agent_host" validate:"omitempty"`
	LogLevel   string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// CacheConfig configures the decision (C5) and subject (C4) TTL caches.
type CacheConfig struct {
	DecisionTTL      string `mapstructure:"decision_ttl" validate:"omitempty"`
	DecisionCapacity int    `mapstructure:"decision_capacity" validate:"omitempty,min=1"`
	SubjectTTL       string `mapstructure:"subject_ttl" validate:"omitempty"`
	SubjectCapacity  int    `mapstructure:"subject_capacity" validate:"omitempty,min=1"`
}

// SetDefaults fills every unset optional field with its documented default.
// Required fields (Ranger host/user/password/service names, Audit.SolrURL)
// have no default — absence is a configuration error caught by Validate.
func (c *Config) SetDefaults() {
	if c.Ranger.RefreshInterval == "" {
		c.Ranger.RefreshInterval = "30s"
	}
	if c.Ranger.RequestTimeout == "" {
		c.Ranger.RequestTimeout = "10s"
	}

	if c.Audit.ChannelSize == 0 {
		c.Audit.ChannelSize = 1000
	}
	if c.Audit.BatchSize == 0 {
		c.Audit.BatchSize = 50
	}
	if c.Audit.FlushInterval == "" {
		c.Audit.FlushInterval = "1s"
	}
	if c.Audit.SendTimeout == "" {
		c.Audit.SendTimeout = "100ms"
	}
	if c.Audit.WarningThreshold == 0 {
		c.Audit.WarningThreshold = 80
	}

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "0.0.0.0:8080"
	}
	if c.Server.AgentHost == "" {
		c.Server.AgentHost = "localhost"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Cache.DecisionTTL == "" {
		c.Cache.DecisionTTL = "300s"
	}
	if c.Cache.DecisionCapacity == 0 {
		c.Cache.DecisionCapacity = 10000
	}
	if c.Cache.SubjectTTL == "" {
		c.Cache.SubjectTTL = "300s"
	}
	if c.Cache.SubjectCapacity == 0 {
		c.Cache.SubjectCapacity = 10000
	}
}
