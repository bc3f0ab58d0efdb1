package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

const (
	StorageDriverMinIO = "minio"
	StorageDriverS3    = "s3"

	VisionProviderMistral   = "mistral"
	VisionProviderAnthropic = "anthropic"

	GuardDriverMemory = "memory"
	GuardDriverRedis  = "redis"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port" validate:"required"`
	IngestTimeout  time.Duration `mapstructure:"ingest_timeout" validate:"gt=0"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
	ReceiptsFolder string        `mapstructure:"receipts_folder" validate:"required"`
}

// LogConfig controls the global zap logger.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format" validate:"oneof=json console"`
	Timezone string `mapstructure:"timezone"`
}

// Location resolves Timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               string `mapstructure:"port" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name" validate:"required"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	// StatementTimeout bounds every query server side. Zero leaves the
	// server default in place.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	ApplicationName  string        `mapstructure:"application_name"`
}

// StorageConfig selects and configures the receipt object store.
type StorageConfig struct {
	Driver        string `mapstructure:"driver" validate:"oneof=minio s3"`
	Endpoint      string `mapstructure:"endpoint" validate:"required_if=Driver minio"`
	Region        string `mapstructure:"region" validate:"required"`
	Bucket        string `mapstructure:"bucket" validate:"required"`
	AccessKey     string `mapstructure:"access_key" validate:"required"`
	SecretKey     string `mapstructure:"secret_key" validate:"required"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url" validate:"omitempty,url"`
}

// BrandConfig locates brand logo assets. Mappings adds or replaces brand
// keywords, keyed by brand.
type BrandConfig struct {
	LogosBucket string              `mapstructure:"logos_bucket" validate:"required"`
	Region      string              `mapstructure:"region" validate:"required"`
	Mappings    map[string][]string `mapstructure:"mappings"`
}

// VisionConfig configures the receipt extraction model.
type VisionConfig struct {
	Provider  string        `mapstructure:"provider" validate:"oneof=mistral anthropic"`
	BaseURL   string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey    string        `mapstructure:"api_key" validate:"required"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens" validate:"gt=0"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// RateLimit is the allowed model calls per second; 0 disables throttling.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"gte=0"`
}

func (c *VisionConfig) applyProviderDefaults() {
	switch c.Provider {
	case VisionProviderMistral:
		if c.BaseURL == "" {
			c.BaseURL = "https://api.mistral.ai/v1"
		}
		if c.Model == "" {
			c.Model = "pixtral-12b-2409"
		}
	case VisionProviderAnthropic:
		if c.Model == "" {
			c.Model = "claude-sonnet-4-5-20250929"
		}
	}
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

// GuardConfig configures the duplicate upload guard.
type GuardConfig struct {
	Driver     string        `mapstructure:"driver" validate:"oneof=memory redis"`
	Window     time.Duration `mapstructure:"window" validate:"gt=0"`
	MaxEntries int           `mapstructure:"max_entries" validate:"gt=0"`
}

// RedisConfig is only used when the guard driver is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Config is built once at startup and passed to constructors.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Brand    BrandConfig    `mapstructure:"brand"`
	Vision   VisionConfig   `mapstructure:"vision"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Guard    GuardConfig    `mapstructure:"guard"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// Load reads config.yaml (optional) and environment variables. Nested keys map
// to env names by replacing dots with underscores, e.g. STORAGE_BUCKET.
// A .env file is picked up by importing github.com/joho/godotenv/autoload.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Vision.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails when required settings, secrets in particular, are missing.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return eris.Wrap(err, "config: validate")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return eris.Errorf("config: invalid settings: %s", strings.Join(fields, ", "))
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.ingest_timeout", 45*time.Second)
	v.SetDefault("server.max_upload_bytes", 10*1024*1024)
	v.SetDefault("server.receipts_folder", "receipts")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.timezone", "UTC")

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("database.statement_timeout", 30*time.Second)
	v.SetDefault("database.application_name", "fuelapi")

	v.SetDefault("storage.driver", StorageDriverMinIO)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "ap-south-1")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.public_base_url", "")

	v.SetDefault("brand.logos_bucket", "fuel-company-logos")
	v.SetDefault("brand.region", "ap-south-1")

	v.SetDefault("vision.provider", VisionProviderMistral)
	v.SetDefault("vision.base_url", "")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "")
	v.SetDefault("vision.max_tokens", 300)
	v.SetDefault("vision.timeout", 30*time.Second)
	v.SetDefault("vision.rate_limit", 0)
	v.SetDefault("vision.rate_burst", 1)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "fuelapi")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("guard.driver", GuardDriverMemory)
	v.SetDefault("guard.window", 10*time.Second)
	v.SetDefault("guard.max_entries", 1000)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
