// Package config loads server settings from a .env file, an optional YAML
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins []string

	// Database
	DBPath string

	// Security
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminEmails     []string

	// Balance cache. RedisAddr empty means in-process cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Rate limiting, per client IP. X-Forwarded-For is honoured only
	// for requests arriving from TrustedProxies.
	RateLimitRPS   float64
	RateLimitBurst int
	TrustedProxies []string

	// Metrics endpoint basic auth; empty user disables auth.
	MetricsUser string
	MetricsPass string

	LogLevel string
}

// fileSchema is the layout of the optional YAML file named by CONFIG_FILE.
type fileSchema struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"db"`
	Auth struct {
		JWTSecret       string   `yaml:"jwt_secret"`
		AccessTokenTTL  string   `yaml:"access_token_ttl"`
		RefreshTokenTTL string   `yaml:"refresh_token_ttl"`
		AdminEmails     []string `yaml:"admin_emails"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	RateLimit struct {
		RPS            float64  `yaml:"rps"`
		Burst          int      `yaml:"burst"`
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"rate_limit"`
	Metrics struct {
		User string `yaml:"user"`
		Pass string `yaml:"pass"`
	} `yaml:"metrics"`
	Logs struct {
		Level string `yaml:"level"`
	} `yaml:"logs"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:            "8080",
		CORSOrigins:     []string{"*"},
		DBPath:          "data/pairpay.db",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		CacheTTL:        5 * time.Minute,
		RateLimitRPS:    10,
		RateLimitBurst:  20,
		LogLevel:        "info",
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.Port, f.Server.Port)
	if len(f.Server.CORSOrigins) > 0 {
		c.CORSOrigins = f.Server.CORSOrigins
	}
	setString(&c.DBPath, f.Database.Path)
	setString(&c.JWTSecret, f.Auth.JWTSecret)
	if len(f.Auth.AdminEmails) > 0 {
		c.AdminEmails = f.Auth.AdminEmails
	}
	setString(&c.RedisAddr, f.Redis.Addr)
	setString(&c.RedisPassword, f.Redis.Password)
	if f.Redis.DB != 0 {
		c.RedisDB = f.Redis.DB
	}
	if f.RateLimit.RPS > 0 {
		c.RateLimitRPS = f.RateLimit.RPS
	}
	if f.RateLimit.Burst > 0 {
		c.RateLimitBurst = f.RateLimit.Burst
	}
	if len(f.RateLimit.TrustedProxies) > 0 {
		c.TrustedProxies = f.RateLimit.TrustedProxies
	}
	setString(&c.MetricsUser, f.Metrics.User)
	setString(&c.MetricsPass, f.Metrics.Pass)
	setString(&c.LogLevel, f.Logs.Level)

	for _, d := range []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"auth.access_token_ttl", f.Auth.AccessTokenTTL, &c.AccessTokenTTL},
		{"auth.refresh_token_ttl", f.Auth.RefreshTokenTTL, &c.RefreshTokenTTL},
		{"cache.ttl", f.Cache.TTL, &c.CacheTTL},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.CORSOrigins = getEnvList("CORS_ORIGINS", c.CORSOrigins)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.AdminEmails = getEnvList("ADMIN_EMAILS", c.AdminEmails)
	c.TrustedProxies = getEnvList("TRUSTED_PROXIES", c.TrustedProxies)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.MetricsUser = getEnv("METRICS_USER", c.MetricsUser)
	c.MetricsPass = getEnv("METRICS_PASS", c.MetricsPass)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	var err error
	if c.RedisDB, err = getEnvInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst); err != nil {
		return err
	}
	if c.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", c.RateLimitRPS); err != nil {
		return err
	}
	if c.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", c.AccessTokenTTL); err != nil {
		return err
	}
	if c.RefreshTokenTTL, err = getEnvDuration("REFRESH_TOKEN_TTL", c.RefreshTokenTTL); err != nil {
		return err
	}
	if c.CacheTTL, err = getEnvDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.MetricsUser != "" && c.MetricsPass == "" {
		return fmt.Errorf("METRICS_PASS is required when METRICS_USER is set")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// IsAdminEmail reports whether mail is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(mail string) bool {
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, mail) {
			return true
		}
	}
	return false
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intVal, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
