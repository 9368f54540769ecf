package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	RedisAddress    string
	RedisPassword   string
	RedisDB         int
	HTTPAddress     string
	GRPCAddress     string
	HTTPSCertFile   string
	HTTPSKeyFile    string
	LogLevel        string
	HealthInterval  time.Duration
	PasswordPepper  string
	SessionTTL      time.Duration
	ForgetTokenTTL  time.Duration
	ForgetTokenKey  string
	Issuer          string
	CookieName      string
	CookieDomain    string
	CookiePath      string
	CookieMaxAge    time.Duration
	CookieSecure    bool
	AllowedOrigins  []string
	AllowCredential bool
}

var required = []string{
	"DATABASE_URL",
	"REDIS_ADDRESS",
	"PASSWORD_PEPPER",
	"FORGET_TOKEN_SECRET",
}

// Load reads an optional .env and config.json, then the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HEALTH_INTERVAL", "10s")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("FORGET_TOKEN_TTL", "15m")
	v.SetDefault("JWT_ISSUER", "account-service")
	v.SetDefault("COOKIE_NAME", "login_token")
	v.SetDefault("COOKIE_PATH", "/")
	v.SetDefault("COOKIE_MAX_AGE", "8760h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("ALLOW_CREDENTIALS", true)

	for _, key := range append(required,
		"REDIS_PASSWORD", "HTTPS_CERT_FILE", "HTTPS_KEY_FILE",
		"COOKIE_DOMAIN", "ALLOWED_ORIGINS",
	) {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	cfg := &Config{
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBMaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		RedisAddress:    v.GetString("REDIS_ADDRESS"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		HTTPAddress:     v.GetString("HTTP_ADDRESS"),
		GRPCAddress:     v.GetString("GRPC_ADDRESS"),
		HTTPSCertFile:   v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:    v.GetString("HTTPS_KEY_FILE"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		HealthInterval:  v.GetDuration("HEALTH_INTERVAL"),
		PasswordPepper:  v.GetString("PASSWORD_PEPPER"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		ForgetTokenTTL:  v.GetDuration("FORGET_TOKEN_TTL"),
		ForgetTokenKey:  v.GetString("FORGET_TOKEN_SECRET"),
		Issuer:          v.GetString("JWT_ISSUER"),
		CookieName:      v.GetString("COOKIE_NAME"),
		CookieDomain:    v.GetString("COOKIE_DOMAIN"),
		CookiePath:      v.GetString("COOKIE_PATH"),
		CookieMaxAge:    v.GetDuration("COOKIE_MAX_AGE"),
		CookieSecure:    v.GetBool("COOKIE_SECURE"),
		AllowedOrigins:  splitCSV(v.GetString("ALLOWED_ORIGINS")),
		AllowCredential: v.GetBool("ALLOW_CREDENTIALS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.ForgetTokenTTL <= 0 {
		return errors.New("FORGET_TOKEN_TTL must be positive")
	}
	if c.HealthInterval <= 0 {
		return errors.New("HEALTH_INTERVAL must be positive")
	}
	if c.CookieName == "" {
		return errors.New("COOKIE_NAME cannot be empty")
	}
	if (c.HTTPSCertFile == "") != (c.HTTPSKeyFile == "") {
		return errors.New("HTTPS_CERT_FILE and HTTPS_KEY_FILE must be set together")
	}
	return nil
}

// TLSEnabled reports whether both certificate files are configured.
func (c *Config) TLSEnabled() bool {
	return c.HTTPSCertFile != "" && c.HTTPSKeyFile != ""
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
