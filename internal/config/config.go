// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Validate checks the Config struct tags.
var Validate = validator.New()

const (
	AuthAdvisory = "advisory"
	AuthJWT      = "jwt"
	AuthPaseto   = "paseto"
)

// Config is the process configuration, read from the environment and an
// optional .env file.
type Config struct {
	Port     string `validate:"required,number"`
	LogLevel string `validate:"oneof=trace debug info warn error"`

	AuthMode         string `validate:"oneof=advisory jwt paseto"`
	JWTPublicKeyPath string `validate:"omitempty,file"`
	JWTSecret        string
	PasetoSecret     string `validate:"required_if=AuthMode paseto"`
	PasetoSalt       string

	RedisAddr     string // empty disables the outcome queue
	RedisPassword string
	RedisDB       int    `validate:"min=0"`
	ResultsQueue  string `validate:"required"`

	DatabaseURL    string // empty disables persistence and the friend check
	MigrateOnStart bool

	CatalogPath    string   `validate:"omitempty,file"`
	AllowedOrigins []string `validate:"min=1"`
	OutboxSize     int      `validate:"min=1,max=4096"`
}

// LoadConfig reads .env (if present) and the environment, then validates.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		AuthMode:         strings.ToLower(getEnv("AUTH_MODE", AuthAdvisory)),
		JWTPublicKeyPath: os.Getenv("JWT_PUBLIC_KEY_PATH"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		PasetoSecret:     os.Getenv("PASETO_SECRET"),
		PasetoSalt:       getEnv("PASETO_SALT", "arcade"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PW"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ResultsQueue:  getEnv("RESULTS_QUEUE_NAME", "arcade_match_results"),

		DatabaseURL:    databaseURL(),
		MigrateOnStart: getEnvBool("DB_MIGRATE", false),

		CatalogPath:    os.Getenv("CATALOG_PATH"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		OutboxSize:     getEnvInt("OUTBOX_SIZE", 32),
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}
	if config.AuthMode == AuthJWT && config.JWTPublicKeyPath == "" && config.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_MODE=jwt needs JWT_PUBLIC_KEY_PATH or JWT_SECRET")
	}
	return config, nil
}

// databaseURL prefers DATABASE_URL and falls back to the discrete
// POSTGRES_* / PG_* variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
