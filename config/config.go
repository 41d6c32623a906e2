// Package config loads the application configuration once at startup.
//
// Values are layered, lowest priority first:
//
//	built-in defaults → config/app.json → .env → process environment
//
// The resulting *Config is immutable by convention: build it once with Load,
// then hand it (or one of its sections) to the constructors that need it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAppEnv        = "local"
	defaultAppPort       = "8080"
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "tradebridge"
	defaultJWTSecret     = "change-me-in-production"
	defaultRedisAddr     = "localhost:6379"
	defaultGatewayURL    = "https://api.razorpay.com"
)

// Config holds every setting the process needs.
type Config struct {
	App     AppConfig
	Log     LogConfig
	Mongo   MongoConfig
	JWT     JWTConfig
	Redis   RedisConfig
	Payment PaymentConfig
	Storage StorageConfig
	Seed    SeedConfig
}

// AppConfig holds HTTP-level settings.
type AppConfig struct {
	Env          string
	Port         string
	MaxBodyBytes int64
	CORSOrigins  []string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string // debug, info, warn, error
	Mongo bool   // also ship log records to the "logs" collection
}

// MongoConfig holds the document store connection.
type MongoConfig struct {
	URI      string
	Database string
}

// JWTConfig holds the process-wide token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// RedisConfig holds the listing cache connection. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// PaymentConfig holds the Razorpay credentials.
type PaymentConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
}

// StorageConfig selects and configures the image storage disk.
type StorageConfig struct {
	Disk       string // "local" or "s3"
	LocalRoot  string
	URL        string
	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

// SeedConfig holds the credentials of the admin account created by `seed`.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// IsProduction reports whether the app runs in a production environment.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.App.Env) {
	case "production", "prod":
		return true
	}
	return false
}

// Load reads config/app.json and .env from the working directory.
func Load() (*Config, error) {
	return LoadFrom("config/app.json", ".env")
}

// LoadFrom is Load with explicit file locations. Missing files are skipped.
func LoadFrom(jsonPath, envPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := mergeFile(v, jsonPath, "json"); err != nil {
		return nil, err
	}
	if err := mergeFile(v, envPath, "env"); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:          v.GetString("app_env"),
			Port:         v.GetString("app_port"),
			MaxBodyBytes: v.GetInt64("max_body_bytes"),
			CORSOrigins:  splitList(v.GetString("cors_origins")),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("log_level")),
			Mongo: v.GetBool("log_mongo"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo_uri"),
			Database: v.GetString("mongo_database"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt_secret"),
			TTL:    v.GetDuration("jwt_ttl"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			TTL:      v.GetDuration("cache_ttl"),
		},
		Payment: PaymentConfig{
			KeyID:     v.GetString("razorpay_key_id"),
			KeySecret: v.GetString("razorpay_key_secret"),
			BaseURL:   strings.TrimRight(v.GetString("razorpay_base_url"), "/"),
			Currency:  strings.ToUpper(v.GetString("payment_currency")),
		},
		Storage: StorageConfig{
			Disk:       strings.ToLower(v.GetString("storage_disk")),
			LocalRoot:  v.GetString("storage_local_root"),
			URL:        strings.TrimRight(v.GetString("storage_url"), "/"),
			S3Bucket:   v.GetString("s3_bucket"),
			S3Region:   v.GetString("s3_region"),
			S3Key:      v.GetString("s3_key"),
			S3Secret:   v.GetString("s3_secret"),
			S3Endpoint: v.GetString("s3_endpoint"),
			S3URL:      strings.TrimRight(v.GetString("s3_url"), "/"),
		},
		Seed: SeedConfig{
			AdminEmail:    v.GetString("seed_admin_email"),
			AdminPassword: v.GetString("seed_admin_password"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", defaultAppEnv)
	v.SetDefault("app_port", defaultAppPort)
	v.SetDefault("max_body_bytes", 4<<20)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("log_level", "debug")
	v.SetDefault("log_mongo", false)
	v.SetDefault("mongo_uri", defaultMongoURI)
	v.SetDefault("mongo_database", defaultMongoDatabase)
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_ttl", 24*time.Hour)
	v.SetDefault("redis_addr", defaultRedisAddr)
	v.SetDefault("redis_password", "")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("razorpay_key_id", "")
	v.SetDefault("razorpay_key_secret", "")
	v.SetDefault("razorpay_base_url", defaultGatewayURL)
	v.SetDefault("payment_currency", "INR")
	v.SetDefault("storage_disk", "local")
	v.SetDefault("storage_local_root", "storage")
	v.SetDefault("storage_url", "http://localhost:8080/storage")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_key", "")
	v.SetDefault("s3_secret", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_url", "")
	v.SetDefault("seed_admin_email", "admin@tradebridge.local")
	v.SetDefault("seed_admin_password", "")
}

func mergeFile(v *viper.Viper, path, kind string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType(kind)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return errors.New("config: MONGO_URI is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return errors.New("config: JWT_SECRET must be changed in production")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	switch c.Storage.Disk {
	case "local", "s3":
	default:
		return fmt.Errorf("config: unsupported STORAGE_DISK %q (supported: local, s3)", c.Storage.Disk)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
