package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Site       SiteConfig       `mapstructure:"site"`
	Sanity     SanityConfig     `mapstructure:"sanity"`
	Firebase   FirebaseConfig   `mapstructure:"firebase"`
	DB         DBConfig         `mapstructure:"db"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Content    ContentConfig    `mapstructure:"content"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Session    SessionConfig    `mapstructure:"session"`
	OIDC       OIDCConfig       `mapstructure:"oidc"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port string    `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// SiteConfig holds site-wide settings used for SEO and links.
type SiteConfig struct {
	Name          string `mapstructure:"name"`
	URL           string `mapstructure:"url"`
	Description   string `mapstructure:"description"`
	DefaultImage  string `mapstructure:"default_image"`
	TwitterHandle string `mapstructure:"twitter_handle"`
	PageSize      int    `mapstructure:"page_size"`
}

// SanityConfig holds the headless CMS connection settings.
type SanityConfig struct {
	ProjectID  string        `mapstructure:"project_id"`
	Dataset    string        `mapstructure:"dataset"`
	APIVersion string        `mapstructure:"api_version"`
	Token      string        `mapstructure:"token"`
	UseCDN     bool          `mapstructure:"use_cdn"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	RateLimit  float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst  int           `mapstructure:"rate_burst"`
}

// FirebaseConfig holds Firebase/Firestore settings.
type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// DBConfig selects and configures the secondary database backend.
type DBConfig struct {
	Driver string `mapstructure:"driver"` // "firestore", "mysql" or "sqlite3"
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig selects the byte cache backing the CMS client and the fallback store.
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory", "sqlite" or "redis"
	FilePath string        `mapstructure:"file_path"`
	RedisURL string        `mapstructure:"redis_url"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ContentConfig configures the page content orchestrator.
type ContentConfig struct {
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// ResilienceConfig configures retry behavior.
type ResilienceConfig struct {
	FallbackTTL time.Duration `mapstructure:"fallback_ttl"`
	Disabled    bool          `mapstructure:"disabled"` // run operations once, no retries
}

// SessionConfig holds session settings.
type SessionConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Lifetime  int    `mapstructure:"lifetime"` // hours
}

// OIDCConfig holds OIDC client configuration for the admin area.
type OIDCConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	// AdminEmails are granted the admin role on login.
	AdminEmails []string `mapstructure:"admin_emails"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// LoadConfig reads configuration from .env, config file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env file is normal in production.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/mycogenesis/")
	v.AddConfigPath("$HOME/.mycogenesis")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	v.SetEnvPrefix("MYCO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key, since viper only unmarshals environment
// variables for keys it already knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("site.default_image", "")
	v.SetDefault("site.twitter_handle", "")
	v.SetDefault("sanity.project_id", "")
	v.SetDefault("sanity.token", "")
	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_file", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("resilience.disabled", false)
	v.SetDefault("session.secret_key", "")
	v.SetDefault("oidc.enabled", false)
	v.SetDefault("oidc.issuer_url", "")
	v.SetDefault("oidc.client_id", "")
	v.SetDefault("oidc.client_secret", "")
	v.SetDefault("oidc.redirect_url", "")
	v.SetDefault("oidc.admin_emails", []string{})

	v.SetDefault("site.name", "MYCOgenesis")
	v.SetDefault("site.url", "http://localhost:8080")
	v.SetDefault("site.description", "Functional mushrooms, grow guides and mycology know-how.")
	v.SetDefault("site.page_size", 12)

	v.SetDefault("sanity.dataset", "production")
	v.SetDefault("sanity.api_version", "2024-01-01")
	v.SetDefault("sanity.use_cdn", true)
	v.SetDefault("sanity.timeout", 10*time.Second)
	v.SetDefault("sanity.cache_ttl", 5*time.Minute)
	v.SetDefault("sanity.rate_limit", 20.0)
	v.SetDefault("sanity.rate_burst", 10)

	v.SetDefault("db.driver", "firestore")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.file_path", "cache.db")
	v.SetDefault("cache.prefix", "myco:")
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("content.cache_ttl", 5*time.Minute)
	v.SetDefault("content.operation_timeout", 8*time.Second)

	v.SetDefault("resilience.fallback_ttl", 24*time.Hour)

	v.SetDefault("session.lifetime", 24*30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
