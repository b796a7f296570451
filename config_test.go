package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var configEnv = []string{
	"CONFIG_FILE", "PORT", "TCP_ADDR", "ALLOWED_ORIGINS", "RATE_LIMIT", "SEND_BUFFER", "LOG_LEVEL", "LOG_PRETTY",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(Options{})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := defaultConfig()
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("LoadConfig() = %+v, want %+v", *cfg, want)
	}
	if cfg.ListenAddr() != ":3001" {
		t.Errorf("ListenAddr() = %q, want :3001", cfg.ListenAddr())
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, `
port = "4000"
tcp_addr = ":4001"
allowed_origins = ["https://example.com"]
rate_limit = 10
send_buffer = 4
log_level = "debug"
log_pretty = true
`)

	cfg, err := LoadConfig(Options{ConfigFile: path})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := Config{
		Port:           "4000",
		TCPAddr:        ":4001",
		AllowedOrigins: []string{"https://example.com"},
		RateLimit:      10,
		SendBuffer:     4,
		LogLevel:       "debug",
		LogPretty:      true,
	}
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("LoadConfig() = %+v, want %+v", *cfg, want)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, `
port = "4000"
rate_limit = 10
log_level = "debug"
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "5000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(Options{LogLevel: "error"})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want env value 5000", cfg.Port)
	}
	if cfg.RateLimit != 10 {
		t.Errorf("RateLimit = %d, want file value 10", cfg.RateLimit)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want flag value error", cfg.LogLevel)
	}
	wantOrigins := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, wantOrigins) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, wantOrigins)
	}

	cfg, err = LoadConfig(Options{Port: "6000"})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "6000" {
		t.Errorf("Port = %q, want flag value 6000", cfg.Port)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		opts Options
	}{
		{name: "non numeric port", opts: Options{Port: "http"}},
		{name: "bad rate limit", env: map[string]string{"RATE_LIMIT": "fast"}},
		{name: "negative rate limit", env: map[string]string{"RATE_LIMIT": "-1"}},
		{name: "zero send buffer", env: map[string]string{"SEND_BUFFER": "0"}},
		{name: "bad log pretty", env: map[string]string{"LOG_PRETTY": "sometimes"}},
		{name: "missing config file", opts: Options{ConfigFile: filepath.Join(os.TempDir(), "does-not-exist.toml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if _, err := LoadConfig(tt.opts); err == nil {
				t.Error("LoadConfig() error = nil, want an error")
			}
		})
	}
}

func TestValidateRequiresOrigin(t *testing.T) {
	cfg := defaultConfig()
	cfg.AllowedOrigins = nil
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil for empty origins")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"":         "info",
		"debug":    "debug",
		"DEV":      "debug",
		"warn":     "warn",
		"error":    "error",
		"off":      "disabled",
		"trace":    "trace",
		"nonsense": "info",
	}
	for raw, want := range tests {
		if got := parseLogLevel(raw).String(); got != want {
			t.Errorf("parseLogLevel(%q) = %q, want %q", raw, got, want)
		}
	}
}
