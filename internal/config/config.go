package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	LogLevel   string

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	DefaultAdminEmail     string
	DefaultAdminPassword  string
	DefaultAdminFirstName string
	DefaultAdminLastName  string

	VIESURL       string
	VATRetries    int
	VATRetryDelay time.Duration
	VATTimeout    time.Duration

	EmailServer   string
	EmailPort     int
	EmailUsername string
	EmailPassword string
	EmailFrom     string
	EmailFromName string
	EmailUseTLS   bool
	FrontendURL   string

	KafkaAddress string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServerPort: envInt("SERVER_PORT", 8080),
		LogLevel:   envDefault("LOG_LEVEL", "info"),

		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		JWTSecret:       []byte(os.Getenv("JWT_SECRET")),
		AccessTokenTTL:  time.Duration(envInt("ACCESS_TOKEN_TTL_MINUTES", 1440)) * time.Minute,
		RefreshTokenTTL: time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 30)) * 24 * time.Hour,
		ResetTokenTTL:   time.Duration(envInt("RESET_TOKEN_TTL_MINUTES", 15)) * time.Minute,

		DefaultAdminEmail:     envDefault("DEFAULT_ADMIN_EMAIL", "admin@example.com"),
		DefaultAdminPassword:  os.Getenv("DEFAULT_ADMIN_PASSWORD"),
		DefaultAdminFirstName: envDefault("DEFAULT_ADMIN_FIRST_NAME", "Default"),
		DefaultAdminLastName:  envDefault("DEFAULT_ADMIN_LAST_NAME", "Admin"),

		VIESURL:       envDefault("VIES_URL", "https://ec.europa.eu/taxation_customs/vies/services/checkVatService"),
		VATRetries:    envInt("VAT_RETRIES", 3),
		VATRetryDelay: time.Duration(envInt("VAT_RETRY_DELAY_MS", 1500)) * time.Millisecond,
		VATTimeout:    time.Duration(envInt("VAT_TIMEOUT_SECONDS", 10)) * time.Second,

		EmailServer:   os.Getenv("EMAIL_SERVER"),
		EmailPort:     envInt("EMAIL_PORT", 587),
		EmailUsername: os.Getenv("EMAIL_USERNAME"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		EmailFromName: envDefault("EMAIL_FROM_NAME", "Accounting"),
		EmailUseTLS:   envBool("EMAIL_USE_TLS", true),
		FrontendURL:   envDefault("FRONTEND_URL", "http://localhost:5173"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
	}

	return cfg, nil
}

// MustValidate aborts the process when a value the auth core cannot run
// without is missing.
func (c *Config) MustValidate() {
	mustNonEmptyBytes(c.JWTSecret, "JWT_SECRET")
	mustNonEmpty(c.DB_HOST, "DB_HOST")
	mustNonEmpty(c.DB_NAME, "DB_NAME")
	mustNonEmpty(c.DefaultAdminPassword, "DEFAULT_ADMIN_PASSWORD")
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func mustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func mustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}
