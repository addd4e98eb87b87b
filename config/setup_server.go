package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServerAddr     string         `yaml:"serverAddr"`
	DatabaseConfig DatabaseConfig `yaml:"databaseConfig"`
	RedisConfig    RedisConfig    `yaml:"redisConfig"`
	S3Config       S3Config       `yaml:"s3Config"`
	Storage        StorageConfig  `yaml:"storage"`
	JWT            JWTConfig      `yaml:"jwt"`
	Webhook        WebhookConfig  `yaml:"webhook"`
	Admin          AdminConfig    `yaml:"admin"`
	TTL            TTL            `yaml:"TTL"`
	Ledger         LedgerConfig   `yaml:"ledger"`
	Upload         UploadConfig   `yaml:"upload"`
	Logging        LoggingConfig  `yaml:"logging"`
}

// LoadConfig : читает yaml, подставляет значения по умолчанию и переменные окружения PAYDOCS_*
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(file)
}

func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Blobs == "" {
		c.Storage.Blobs = "datastore"
	}
	if c.JWT.AccessTokenTTL == "" {
		c.JWT.AccessTokenTTL = "15m"
	}
	if c.JWT.RefreshTokenTTL == "" {
		c.JWT.RefreshTokenTTL = "720h"
	}
	if c.TTL.DocumentCache == 0 {
		c.TTL.DocumentCache = 5 * time.Minute
	}
	if c.TTL.Capability == 0 {
		c.TTL.Capability = 15 * time.Minute
	}
	if c.TTL.PasskeyChallenge == 0 {
		c.TTL.PasskeyChallenge = time.Minute
	}
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = "memory"
	}
	if c.Ledger.RequestTimeout == 0 {
		c.Ledger.RequestTimeout = 5 * time.Second
	}
	if c.Ledger.SubmitTimeout == 0 {
		c.Ledger.SubmitTimeout = 30 * time.Second
	}
	if c.Ledger.RetryMin == 0 {
		c.Ledger.RetryMin = 200 * time.Millisecond
	}
	if c.Ledger.RetryMax == 0 {
		c.Ledger.RetryMax = 5 * time.Second
	}
	if c.Ledger.RetryFactor == 0 {
		c.Ledger.RetryFactor = 2
	}
	if c.Ledger.MaxAttempts == 0 {
		c.Ledger.MaxAttempts = 5
	}
	if c.Ledger.InitialBalance == "" {
		c.Ledger.InitialBalance = "100.00"
	}
	if c.Upload.MaxSizeMB == 0 {
		c.Upload.MaxSizeMB = 50
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// applyEnv : секреты и адреса можно переопределить через окружение (.env подхватывается godotenv)
func (c *AppConfig) applyEnv() error {
	overrides := map[string]*string{
		"PAYDOCS_SERVER_ADDR":     &c.ServerAddr,
		"PAYDOCS_DATABASE_DSN":    &c.DatabaseConfig.DSN,
		"PAYDOCS_REDIS_ADDR":      &c.RedisConfig.Addr,
		"PAYDOCS_REDIS_PASSWORD":  &c.RedisConfig.Password,
		"PAYDOCS_STORAGE_DRIVER":  &c.Storage.Driver,
		"PAYDOCS_STORAGE_PATH":    &c.Storage.Path,
		"PAYDOCS_JWT_SECRET":      &c.JWT.SecretKey,
		"PAYDOCS_ADMIN_TOKEN":     &c.Admin.AdminToken,
		"PAYDOCS_ADMIN_PASSWORD":  &c.Admin.Password,
		"PAYDOCS_LEDGER_ENDPOINT": &c.Ledger.Endpoint,
		"PAYDOCS_LEDGER_API_KEY":  &c.Ledger.APIKey,
		"PAYDOCS_WEBHOOK_URL":     &c.Webhook.URL,
	}
	for key, target := range overrides {
		if value, ok := os.LookupEnv(key); ok {
			*target = value
		}
	}

	if value, ok := os.LookupEnv("PAYDOCS_REDIS_ENABLED"); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("неверное значение PAYDOCS_REDIS_ENABLED: %w", err)
		}
		c.RedisConfig.Enabled = enabled
	}

	return nil
}

func (c *AppConfig) validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.DatabaseConfig.DSN == "" {
			return fmt.Errorf("для storage.driver=postgres требуется databaseConfig.dsn")
		}
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("для storage.driver=badger требуется storage.path")
		}
	case "memory":
	default:
		return fmt.Errorf("неизвестный storage.driver: %s", c.Storage.Driver)
	}

	switch c.Storage.Blobs {
	case "s3", "datastore":
	default:
		return fmt.Errorf("неизвестный storage.blobs: %s", c.Storage.Blobs)
	}

	switch c.Ledger.Driver {
	case "memory":
	case "http":
		if c.Ledger.Endpoint == "" {
			return fmt.Errorf("для ledger.driver=http требуется ledger.endpoint")
		}
	default:
		return fmt.Errorf("неизвестный ledger.driver: %s", c.Ledger.Driver)
	}

	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key не задан")
	}
	if _, err := time.ParseDuration(c.JWT.AccessTokenTTL); err != nil {
		return fmt.Errorf("неверный jwt.access_token_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshTokenTTL); err != nil {
		return fmt.Errorf("неверный jwt.refresh_token_ttl: %w", err)
	}

	return nil
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
