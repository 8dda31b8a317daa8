package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	AuthToken      string
	AuthServiceURL string

	Provider    string // sample, http
	ProviderURL string

	StoreBackend    string // none, file, postgres, mongo, redis, firestore, amqp
	StoreCollection string
	StoreFile       string
	PostgresDSN     string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	FirebaseProject string
	FirebaseKeyPath string
	AMQPURL         string
	AMQPQueue       string

	PlaceholderMetrics string
	RefreshInterval    time.Duration
	CORSOrigins        []string
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the configuration once per process, after applying a .env file
// if one exists. An invalid configuration panics.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := FromEnv()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// FromEnv builds and validates a Config from the current environment.
func FromEnv() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	var refresh time.Duration
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		refresh, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
	}

	c := &Config{
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8088"),
		AuthToken:          getEnv("AUTH_TOKEN", "MOCK-TOKEN"),
		AuthServiceURL:     getEnv("AUTH_SERVICE_URL", ""),
		Provider:           getEnv("PROVIDER", "sample"),
		ProviderURL:        getEnv("PROVIDER_URL", ""),
		StoreBackend:       getEnv("STORE_BACKEND", "file"),
		StoreCollection:    getEnv("STORE_COLLECTION", "HealthData"),
		StoreFile:          getEnv("STORE_FILE", "data/health_data.json"),
		PostgresDSN:        getEnv("POSTGRES_DSN", ""),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DATABASE", "bloom"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            redisDB,
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseKeyPath:    getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPQueue:          getEnv("AMQP_QUEUE", "health_data"),
		PlaceholderMetrics: getEnv("PLACEHOLDER_METRICS", ""),
		RefreshInterval:    refresh,
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env == "development" && c.AuthToken == "" {
		return errors.New("AUTH_TOKEN is required in development")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}

	switch c.Provider {
	case "sample":
	case "http":
		if c.ProviderURL == "" {
			return errors.New("PROVIDER_URL is required when PROVIDER=http")
		}
	default:
		return errors.New("PROVIDER must be one of: sample, http")
	}

	switch c.StoreBackend {
	case "none":
	case "file":
		if c.StoreFile == "" {
			return errors.New("STORE_FILE is required when STORE_BACKEND=file")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_BACKEND=mongo")
		}
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	case "firestore":
		if c.FirebaseProject == "" && c.FirebaseKeyPath == "" {
			return errors.New("FIREBASE_PROJECT_ID or FIREBASE_SERVICE_ACCOUNT_PATH is required when STORE_BACKEND=firestore")
		}
	case "amqp":
		if c.AMQPURL == "" {
			return errors.New("AMQP_URL is required when STORE_BACKEND=amqp")
		}
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.StoreBackend)
	}

	if c.StoreCollection == "" {
		return errors.New("STORE_COLLECTION must not be empty")
	}
	if c.RefreshInterval < 0 {
		return errors.New("REFRESH_INTERVAL must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
