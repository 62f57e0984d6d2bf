package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	OTP      OTPConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	Storage string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// Lifetime is the validity window of an issued session token.
func (c JWTConfig) Lifetime() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	TLS      bool
}

// Enabled reports whether enough SMTP settings are present to deliver mail.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.Port != 0 && e.From != ""
}

type OTPConfig struct {
	Length                 int
	SignupExpiryMinutes    int
	LoginExpiryMinutes     int
	ResetExpiryMinutes     int
	MaxAttempts            int
	CleanupIntervalMinutes int
}

type RedisConfig struct {
	URL string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom is LoadConfig with an explicit env file path. A missing file
// is not an error; environment variables always win over file values.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "audit-auth")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_TLS", false)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_SIGNUP_EXPIRY_MINUTES", 5)
	v.SetDefault("OTP_LOGIN_EXPIRY_MINUTES", 5)
	v.SetDefault("OTP_RESET_EXPIRY_MINUTES", 15)
	v.SetDefault("OTP_MAX_ATTEMPTS", 5)
	v.SetDefault("OTP_CLEANUP_INTERVAL_MINUTES", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
			Storage: strings.ToLower(v.GetString("STORAGE")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
			TLS:      v.GetBool("SMTP_TLS"),
		},
		OTP: OTPConfig{
			Length:                 v.GetInt("OTP_LENGTH"),
			SignupExpiryMinutes:    v.GetInt("OTP_SIGNUP_EXPIRY_MINUTES"),
			LoginExpiryMinutes:     v.GetInt("OTP_LOGIN_EXPIRY_MINUTES"),
			ResetExpiryMinutes:     v.GetInt("OTP_RESET_EXPIRY_MINUTES"),
			MaxAttempts:            v.GetInt("OTP_MAX_ATTEMPTS"),
			CleanupIntervalMinutes: v.GetInt("OTP_CLEANUP_INTERVAL_MINUTES"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("config: JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if c.OTP.Length < 4 || c.OTP.Length > 8 {
		return fmt.Errorf("config: OTP_LENGTH must be between 4 and 8, got %d", c.OTP.Length)
	}
	if c.OTP.SignupExpiryMinutes <= 0 || c.OTP.LoginExpiryMinutes <= 0 || c.OTP.ResetExpiryMinutes <= 0 {
		return errors.New("config: OTP expiry minutes must be positive")
	}
	if c.OTP.MaxAttempts < 0 {
		return fmt.Errorf("config: OTP_MAX_ATTEMPTS must not be negative, got %d", c.OTP.MaxAttempts)
	}
	switch c.App.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE %q", c.App.Storage)
	}
	return nil
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
