package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	AdminAPI  AdminAPIConfig
	Session   SessionConfig
	Slip      SlipConfig
	SMTP      SMTPConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Stub      StubConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	Timezone string
}

// AdminAPIConfig points at the upstream admin REST API
type AdminAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// SlipConfig controls where invoice slips are staged and copied
type SlipConfig struct {
	TempDir     string
	CopySink    string
	Dir         string
	PrinterAddr string
	EmailTo     []string
}

// SMTPConfig is used by the email copy sink
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Format string
}

// StubConfig configures the development admin API stub
type StubConfig struct {
	Port        string
	FixturePath string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "admin-console")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("ADMIN_API_BASE_URL", "http://localhost:5000")
	viper.SetDefault("ADMIN_API_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SESSION_SECRET", "change-this-secret-in-production")
	viper.SetDefault("SESSION_TTL_MINUTES", 120)
	viper.SetDefault("SLIP_TEMP_DIR", "")
	viper.SetDefault("SLIP_COPY_SINK", "none")
	viper.SetDefault("SLIP_DIR", "./slips")
	viper.SetDefault("SLIP_PRINTER_ADDRESS", "")
	viper.SetDefault("SLIP_EMAIL_TO", "")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM_NAME", "Admin Console")
	viper.SetDefault("SMTP_FROM_EMAIL", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("STUB_PORT", "5000")
	viper.SetDefault("STUB_FIXTURE_PATH", "")

	return &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Env:      viper.GetString("APP_ENV"),
			Port:     viper.GetString("APP_PORT"),
			Debug:    viper.GetBool("APP_DEBUG"),
			Timezone: viper.GetString("APP_TIMEZONE"),
		},
		AdminAPI: AdminAPIConfig{
			BaseURL: viper.GetString("ADMIN_API_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("ADMIN_API_TIMEOUT_SECONDS")) * time.Second,
		},
		Session: SessionConfig{
			Secret: viper.GetString("SESSION_SECRET"),
			TTL:    time.Duration(viper.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
		},
		Slip: SlipConfig{
			TempDir:     viper.GetString("SLIP_TEMP_DIR"),
			CopySink:    viper.GetString("SLIP_COPY_SINK"),
			Dir:         viper.GetString("SLIP_DIR"),
			PrinterAddr: viper.GetString("SLIP_PRINTER_ADDRESS"),
			EmailTo:     splitList(viper.GetString("SLIP_EMAIL_TO")),
		},
		SMTP: SMTPConfig{
			Host:      viper.GetString("SMTP_HOST"),
			Port:      viper.GetInt("SMTP_PORT"),
			Username:  viper.GetString("SMTP_USERNAME"),
			Password:  viper.GetString("SMTP_PASSWORD"),
			FromName:  viper.GetString("SMTP_FROM_NAME"),
			FromEmail: viper.GetString("SMTP_FROM_EMAIL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(viper.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Stub: StubConfig{
			Port:        viper.GetString("STUB_PORT"),
			FixturePath: viper.GetString("STUB_FIXTURE_PATH"),
		},
	}
}

// Location returns the time zone date-only input is interpreted in
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// splitList splits a comma separated env value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
