package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"chamado-service/database"
	aws_pkg "chamado-service/pkg/aws"
)

// Config holds all configuration for the chamado service.
type Config struct {
	Port string
	Env  string

	JWTSecret    string
	CookieSecure bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleProjectID    string
	GoogleAuthURI      string
	GoogleTokenURI     string
	GoogleCertURL      string
	GoogleRedirectURL  string

	EmployeeEndpoint string
	TicketEndpoint   string
	APIKey           string
	APIName          string

	AllowedDomains []string
	AllowedOrigins []string

	RedisURL    string
	Postgres    database.PostgresConfig
	S3Bucket    string
	SNSTopicARN string

	CloudWatchEnabled bool
	LogFile           string
}

// secretGetter is the part of the Secrets Manager client LoadConfig needs.
type secretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetSecretJSON(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		Env:          getEnv("APP_ENV", "development"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleProjectID:    os.Getenv("GOOGLE_CLIENT_PROJECT_ID"),
		GoogleAuthURI:      os.Getenv("GOOGLE_AUTH_URI"),
		GoogleTokenURI:     os.Getenv("GOOGLE_TOKEN_URI"),
		GoogleCertURL:      os.Getenv("GOOGLE_AUTH_PROVIDER_X509_CERT_URL"),
		GoogleRedirectURL:  parseRedirectURIs(os.Getenv("GOOGLE_REDIRECT_URIS")),

		EmployeeEndpoint: os.Getenv("API_ENDPOINT_FUNCIONARIO"),
		TicketEndpoint:   os.Getenv("API_ENDPOINT_CHAMADO"),
		APIKey:           os.Getenv("API_KEY"),
		APIName:          getEnv("API_NAME", "X-API-Key"),

		AllowedDomains: splitList(getEnv("ALLOWED_EMAIL_DOMAINS", "uisa.com.br")),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "America/Sao_Paulo"),
		},
		S3Bucket:    os.Getenv("S3_BUCKET"),
		SNSTopicARN: os.Getenv("CHAMADO_SNS_TOPIC_ARN"),

		CloudWatchEnabled: getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		LogFile:           os.Getenv("LOG_FILE"),
	}

	// Override secrets from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(ctx); err == nil {
			applySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applySecrets(ctx context.Context, cfg *Config, sm secretGetter) {
	if v, err := sm.GetSecret(ctx, "chamado/JWT_SECRET"); err == nil && v != "" {
		cfg.JWTSecret = v
	}
	if v, err := sm.GetSecret(ctx, "chamado/API_KEY"); err == nil && v != "" {
		cfg.APIKey = v
	}
	if v, err := sm.GetSecret(ctx, "chamado/GOOGLE_CLIENT_SECRET"); err == nil && v != "" {
		cfg.GoogleClientSecret = v
	}
	if m, err := sm.GetSecretJSON(ctx, "chamado/DB_CREDENTIALS"); err == nil {
		if v := m["POSTGRES_USER"]; v != "" {
			cfg.Postgres.User = v
		}
		if v := m["POSTGRES_PASSWORD"]; v != "" {
			cfg.Postgres.Password = v
		}
		if v := m["POSTGRES_DB"]; v != "" {
			cfg.Postgres.DBName = v
		}
		if v := m["POSTGRES_HOST"]; v != "" {
			cfg.Postgres.Host = v
		}
		if v := m["POSTGRES_PORT"]; v != "" {
			cfg.Postgres.Port = v
		}
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" || c.GoogleRedirectURL == "" {
		return fmt.Errorf("google oauth config incomplete")
	}
	if c.EmployeeEndpoint == "" || c.TicketEndpoint == "" {
		return fmt.Errorf("API_ENDPOINT_FUNCIONARIO and API_ENDPOINT_CHAMADO are required")
	}
	if c.Postgres.User == "" || c.Postgres.Password == "" || c.Postgres.DBName == "" || c.Postgres.Host == "" {
		return fmt.Errorf("database config incomplete")
	}
	return nil
}

// parseRedirectURIs accepts a JSON array, using its first entry, or a plain
// URL.
func parseRedirectURIs(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var uris []string
		if err := json.Unmarshal([]byte(raw), &uris); err == nil {
			if len(uris) > 0 {
				return strings.TrimSpace(uris[0])
			}
			return ""
		}
	}
	return strings.Trim(raw, `"`)
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
