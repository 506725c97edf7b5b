package config

import (
	"strings"
	"testing"
)

func minimalValidConfig() *Config {
	cfg := &Config{
		Ranger: RangerConfig{
			Host:           "https://ranger.internal:6080",
			User:           "rangeracl",
			Password:       "secret",
			ServiceName:    "s3-prod",
			ServiceDefName: "s3",
		},
		Audit: AuditConfig{SolrURL: "http://solr.internal:8983/solr/ranger_audits"},
	}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_MissingRangerHost(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Ranger.Host = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Host") {
		t.Errorf("error = %q, want to contain 'Host'", err.Error())
	}
}

func TestValidate_InvalidRangerHostURL(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Ranger.Host = "not-a-url"

	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() expected error for invalid URL, got nil")
	}
}

func TestValidate_MissingSolrURL(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Audit.SolrURL = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "SolrURL") {
		t.Errorf("error = %q, want to contain 'SolrURL'", err.Error())
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Server.LogLevel = "verbose"

	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() expected error for invalid log level, got nil")
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "info", "warn", "warning", "error"} {
		cfg := minimalValidConfig()
		cfg.Server.LogLevel = level
		if err := Validate(cfg); err != nil {
			t.Errorf("Validate() with log level %q unexpected error: %v", level, err)
		}
	}
}

func TestValidate_InvalidWarningThreshold(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Audit.WarningThreshold = 150

	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() expected error for out-of-range threshold, got nil")
	}
}

func TestValidate_IPWhitelist_ValidEntries(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.IPWhitelist = []string{"10.0.0.1", "192.168.1.0/24"}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_IPWhitelist_InvalidEntry(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.IPWhitelist = []string{"not-an-ip"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() expected error for malformed whitelist entry, got nil")
	}
	if !strings.Contains(err.Error(), "ip_whitelist") {
		t.Errorf("error = %q, want to contain 'ip_whitelist'", err.Error())
	}
}

func TestValidate_InvalidServerAddr(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Server.ListenAddr = "!!!not-a-host-port"

	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() expected error for invalid server addr, got nil")
	}
}
