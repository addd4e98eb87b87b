package config

import "time"

type DatabaseConfig struct {
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

// StorageConfig : выбор хранилища записей и содержимого документов
//
//	driver: postgres | badger | memory
//	blobs:  s3 | datastore
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Blobs  string `yaml:"blobs"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// AdminConfig : статический токен администратора и учётная запись, создаваемая при старте
type AdminConfig struct {
	AdminToken string `yaml:"admin_token"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
}

type TTL struct {
	DocumentCache    time.Duration `yaml:"document_cache"`
	Capability       time.Duration `yaml:"capability"`
	PasskeyChallenge time.Duration `yaml:"passkey_challenge"`
}

// LedgerConfig : параметры шлюза реестра платежей
type LedgerConfig struct {
	Driver         string        `yaml:"driver"`
	Endpoint       string        `yaml:"endpoint"`
	APIKey         string        `yaml:"api_key"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SubmitTimeout  time.Duration `yaml:"submit_timeout"`
	RetryMin       time.Duration `yaml:"retry_min"`
	RetryMax       time.Duration `yaml:"retry_max"`
	RetryFactor    float64       `yaml:"retry_factor"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBalance string        `yaml:"initial_balance"`
}

type UploadConfig struct {
	MaxSizeMB int64 `yaml:"max_size_mb"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}
