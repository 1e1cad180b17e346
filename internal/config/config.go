package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa todo lo que cmd/api lee del entorno.
// Backends vacíos => adapters in-memory (modo dev).
type Config struct {
	Port      string
	ServerURL string

	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AMQPURL string

	S3Bucket   string
	AWSRegion  string
	S3Endpoint string

	JWTSecret string
	TokenTTL  time.Duration

	AdminEmail    string
	AdminPassword string

	IdempotencyTTL time.Duration

	LogLevel  string
	LogFormat string
	AppName   string
}

// Load carga .env si existe (no es obligatorio) y después lee el entorno.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:      getenv("PORT", "8080"),
		ServerURL: strings.TrimRight(firstNonEmpty(os.Getenv("SERVER_URL"), os.Getenv("NEXT_PUBLIC_SERVER_URL"), "http://localhost:8080"), "/"),

		DBDSN: firstNonEmpty(os.Getenv("DB_DSN"), os.Getenv("DATABASE_URI")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AMQPURL: os.Getenv("AMQP_URL"),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		AWSRegion:  getenv("AWS_REGION", "us-east-1"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
		AppName:   getenv("APP_NAME", "mediation-cms"),
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// Addr devuelve ":PORT" para http.Server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 30m): %w", key, err)
	}
	return d, nil
}
