package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DatabaseURL string     `yaml:"database_url"`
	HTTPAddr    string     `yaml:"http_addr"`
	SMTP        SMTPConfig `yaml:"smtp"`
	IMAP        IMAPConfig `yaml:"imap"`
	LogLevel    string     `yaml:"log_level"`
	LogFormat   string     `yaml:"log_format"`
}

// SMTPConfig configures outbound RFP mail.
type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	// From defaults to User when empty
	From string `yaml:"from"`
}

// IMAPConfig configures the vendor reply inbox.
type IMAPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Pass        string `yaml:"pass"`
	Mailbox     string `yaml:"mailbox"`
	PollSeconds int    `yaml:"poll_seconds"`
	PollEnabled bool   `yaml:"poll_enabled"`
}

// Defaults returns a Config with all default values set.
func Defaults() Config {
	return Config{
		HTTPAddr: ":4000",
		SMTP: SMTPConfig{
			Port: 587,
		},
		IMAP: IMAPConfig{
			Port:        993,
			Mailbox:     "INBOX",
			PollSeconds: 60,
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// DefaultPath is the config file read when neither -config nor RFPDESK_CONFIG is given.
const DefaultPath = "rfpdesk.yaml"

// ResolvePath picks the config file: an explicit path (the -config flag) wins,
// then RFPDESK_CONFIG, then DefaultPath.
func ResolvePath(path string, getenv func(string) string) string {
	if path != "" {
		return path
	}
	if envPath := getenv("RFPDESK_CONFIG"); envPath != "" {
		return envPath
	}
	return DefaultPath
}

// Load reads an optional YAML file over the defaults, then applies environment overrides.
// An empty path is resolved with ResolvePath. A missing file is fine; env-only deployments are common.
func Load(path string) (Config, error) {
	path = ResolvePath(path, os.Getenv)

	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	setString("DATABASE_URL", &c.DatabaseURL)
	setString("HTTP_ADDR", &c.HTTPAddr)
	setString("SMTP_HOST", &c.SMTP.Host)
	setString("SMTP_USER", &c.SMTP.User)
	setString("SMTP_PASS", &c.SMTP.Pass)
	setString("SMTP_FROM", &c.SMTP.From)
	setString("IMAP_HOST", &c.IMAP.Host)
	setString("IMAP_USER", &c.IMAP.User)
	setString("IMAP_PASS", &c.IMAP.Pass)
	setString("IMAP_MAILBOX", &c.IMAP.Mailbox)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_FORMAT", &c.LogFormat)

	if err := setInt("SMTP_PORT", &c.SMTP.Port); err != nil {
		return err
	}
	if err := setInt("IMAP_PORT", &c.IMAP.Port); err != nil {
		return err
	}
	if err := setInt("IMAP_POLL_SECONDS", &c.IMAP.PollSeconds); err != nil {
		return err
	}

	if v := getenv("IMAP_POLL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid IMAP_POLL_ENABLED %q: %w", v, err)
		}
		c.IMAP.PollEnabled = enabled
	}

	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.User
	}
	return nil
}

// Validate checks that required fields are present and values are valid.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", c.SMTP.Port)
	}
	if c.IMAP.Port <= 0 || c.IMAP.Port > 65535 {
		return fmt.Errorf("invalid imap port %d", c.IMAP.Port)
	}
	if c.IMAP.PollSeconds <= 0 {
		return fmt.Errorf("imap poll_seconds must be > 0, got %d", c.IMAP.PollSeconds)
	}
	if c.IMAP.PollEnabled && !c.IMAPConfigured() {
		return fmt.Errorf("imap polling enabled but IMAP_HOST/IMAP_USER/IMAP_PASS are incomplete")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be 'json' or 'console', got %q", c.LogFormat)
	}
	return nil
}

// SMTPConfigured reports whether RFPs can be mailed.
func (c Config) SMTPConfigured() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

// IMAPConfigured reports whether the reply inbox can be polled.
func (c Config) IMAPConfigured() bool {
	return c.IMAP.Host != "" && c.IMAP.User != "" && c.IMAP.Pass != ""
}

// PollInterval is the time between inbox polls.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.IMAP.PollSeconds) * time.Second
}

// SMTPAddr is host:port for the SMTP server.
func (c Config) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.SMTP.Host, c.SMTP.Port)
}

// IMAPAddr is host:port for the IMAP server.
func (c Config) IMAPAddr() string {
	return fmt.Sprintf("%s:%d", c.IMAP.Host, c.IMAP.Port)
}
