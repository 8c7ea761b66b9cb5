package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

type ServerConfig struct {
	Port          int    `yaml:"port"`
	GinMode       string `yaml:"gin_mode"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type EmailConfig struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	FromName string `yaml:"from_name"`
}

type SessionConfig struct {
	// Backend is "memory" or "redis". Both keep values server-side.
	Backend string `yaml:"backend"`
	Name    string `yaml:"name"`
	MaxAge  int    `yaml:"max_age"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ReportsConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// PDFConfig.FontPath is an optional TTF for the profile export.
type PDFConfig struct {
	FontPath string `yaml:"font_path"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Secrets are read from the environment only, never from the YAML file.
type Secrets struct {
	AESKey        string
	TokenKey      []byte
	TokenTTL      time.Duration
	MailUser      string
	MailPassword  string
	SessionSecret []byte
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Reports  ReportsConfig  `yaml:"reports"`
	PDF      PDFConfig      `yaml:"pdf"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`

	Secrets Secrets `yaml:"-"`
}

// Load reads the YAML file (CONFIG_PATH or config/config.yaml), then the
// secrets from the environment. A missing YAML file is not an error; a
// missing secret is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg := &Config{}
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	secrets, err := LoadSecrets(os.Getenv)
	if err != nil {
		return nil, err
	}
	cfg.Secrets = secrets
	return cfg, nil
}

// LoadSecrets reads the secret settings through getenv. Every value except
// SESSION_SECRET is required.
func LoadSecrets(getenv func(string) string) (Secrets, error) {
	var missing []string
	get := func(key string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	s := Secrets{
		AESKey:       get("AES_256"),
		TokenKey:     []byte(get("TOKEN_PRIVATE_KEY")),
		MailUser:     get("EMAIL_SENDER"),
		MailPassword: get("EMAIL_SENDER_PASSWORD"),
	}
	expiry := get("TOKEN_EXPIRATION")
	if len(missing) > 0 {
		return Secrets{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	ttl, err := ParseDuration(expiry)
	if err != nil {
		return Secrets{}, fmt.Errorf("TOKEN_EXPIRATION: %w", err)
	}
	if ttl <= 0 {
		return Secrets{}, fmt.Errorf("TOKEN_EXPIRATION must be positive, got %q", expiry)
	}
	s.TokenTTL = ttl

	if v := strings.TrimSpace(getenv("SESSION_SECRET")); v != "" {
		s.SessionSecret = []byte(v)
	} else {
		s.SessionSecret = []byte("session:" + s.AESKey)
	}
	return s, nil
}

var msDuration = regexp.MustCompile(`(?i)^(-?\d*\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = 365*day + 6*time.Hour
)

var msUnits = map[string]time.Duration{
	"": time.Millisecond, "ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": day, "day": day, "days": day,
	"w": week, "week": week, "weeks": week,
	"y": year, "yr": year, "yrs": year, "year": year, "years": year,
}

// ParseDuration reads TOKEN_EXPIRATION. It takes a number with an optional
// unit ("3600000", "2h", "1.5 hours", "7d", "1w", "1y"; a bare number is
// milliseconds) as well as time.ParseDuration syntax ("1h30m").
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty duration")
	}
	if m := msDuration.FindStringSubmatch(v); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(n * float64(msUnits[strings.ToLower(m[2])])), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.GinMode = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "debug"
	}
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = fmt.Sprintf("https://localhost:%d", c.Server.Port)
	}
	c.Server.PublicBaseURL = strings.TrimRight(c.Server.PublicBaseURL, "/")
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Email.SMTPHost == "" {
		c.Email.SMTPHost = "smtp.gmail.com"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Proyecto Ética y Seguridad"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.Name == "" {
		c.Session.Name = "sid"
	}
	if c.Session.MaxAge == 0 {
		c.Session.MaxAge = 24 * 60 * 60
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
