package config

import (
	"errors"
	"strconv"

	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Storefront StorefrontConfig
	Redis      RedisConfig
	Admin      AdminConfig
}

// AdminConfig seeds the bootstrap admin account at startup. Registration only
// ever produces practitioner accounts, so without this seed (or an account
// created directly in the database) nothing can approve new registrations.
type AdminConfig struct {
	Email    string
	Password string
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	// ShareCodeKey encrypts recommendation share codes. Must be 16, 24 or 32
	// bytes (AES key sizes).
	ShareCodeKey string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type StorefrontConfig struct {
	// APIBaseURL is the storefront product API consumed by the catalog search.
	APIBaseURL string
	// APIKey is optional; when set it is sent as a bearer token.
	APIKey string
	// StoreURL is the public store base used to build cart links.
	StoreURL string
	// WebhookVerificationToken guards the purchase webhook endpoint.
	WebhookVerificationToken string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// Enabled reports whether a Redis host was configured; the catalog cache is
// optional and skipped entirely when it is not.
func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid redis database")
		}
		redisDB = parsed
	}

	cfg := &Config{
		App: AppConfig{
			Name:         getEnv("APP_NAME", "Vitalink Practitioner Portal"),
			Version:      getEnv("APP_VERSION", "1.0.0"),
			Environment:  getEnv("APP_ENV", "development"),
			ShareCodeKey: getEnv("APP_SHARE_CODE_KEY", ""),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "vitalink"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Storefront: StorefrontConfig{
			APIBaseURL:               getEnv("STOREFRONT_API_URL", ""),
			APIKey:                   getEnv("STOREFRONT_API_KEY", ""),
			StoreURL:                 getEnv("STOREFRONT_STORE_URL", ""),
			WebhookVerificationToken: getEnv("STOREFRONT_WEBHOOK_VERIFICATION_TOKEN", ""),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Storefront.APIBaseURL == "" {
		return nil, errors.New("missing storefront api url")
	}

	if cfg.Storefront.StoreURL == "" {
		return nil, errors.New("missing storefront store url")
	}

	if (cfg.Admin.Email == "") != (cfg.Admin.Password == "") {
		return nil, errors.New("admin email and password must be set together")
	}

	switch len(cfg.App.ShareCodeKey) {
	case 16, 24, 32:
	default:
		return nil, errors.New("share code key must be 16, 24 or 32 bytes")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
