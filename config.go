package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultPort       = "3001"
	DefaultRateLimit  = 60
	DefaultSendBuffer = 32
	DefaultLogLevel   = "info"
)

type Config struct {
	Port           string   `toml:"port"`
	TCPAddr        string   `toml:"tcp_addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// Requests per minute per IP and endpoint; 0 disables limiting.
	RateLimit  int    `toml:"rate_limit"`
	SendBuffer int    `toml:"send_buffer"`
	LogLevel   string `toml:"log_level"`
	LogPretty  bool   `toml:"log_pretty"`
}

// Options carries command line overrides. Empty fields are ignored.
type Options struct {
	ConfigFile string
	Port       string
	TCPAddr    string
	LogLevel   string
}

func defaultConfig() Config {
	return Config{
		Port:           DefaultPort,
		AllowedOrigins: []string{"*"},
		RateLimit:      DefaultRateLimit,
		SendBuffer:     DefaultSendBuffer,
		LogLevel:       DefaultLogLevel,
	}
}

// LoadConfig resolves configuration with the following priority:
// 1. command line options
// 2. environment variables (a .env file is loaded first when present)
// 3. the TOML config file, if one is given
// 4. defaults
func LoadConfig(opts Options) (*Config, error) {
	godotenv.Load()
	cfg := defaultConfig()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if _, err := toml.DecodeFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("config parse failed (%s): %w", configFile, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.TCPAddr != "" {
		cfg.TCPAddr = opts.TCPAddr
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if tcpAddr := os.Getenv("TCP_ADDR"); tcpAddr != "" {
		cfg.TCPAddr = tcpAddr
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	if raw := os.Getenv("RATE_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = limit
	}
	if raw := os.Getenv("SEND_BUFFER"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("SEND_BUFFER: %w", err)
		}
		cfg.SendBuffer = size
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if raw := os.Getenv("LOG_PRETTY"); raw != "" {
		pretty, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		cfg.LogPretty = pretty
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config missing port")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("send buffer must be positive, got %d", c.SendBuffer)
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("config needs at least one allowed origin")
	}
	return nil
}

func (c Config) ListenAddr() string {
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
