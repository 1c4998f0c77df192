package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreAuto      = "auto"
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
)

// Config is the process configuration. Durations are configured in seconds.
type Config struct {
	Port      string `koanf:"port"`
	GinMode   string `koanf:"gin_mode"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	StoreDriver             string `koanf:"store_driver"`
	FirebaseCredentialsPath string `koanf:"firebase_credentials_path"`
	FirebaseProjectID       string `koanf:"firebase_project_id"`
	MongoURI                string `koanf:"mongo_uri"`
	DBName                  string `koanf:"db_name"`

	JWTSecretKey          string `koanf:"jwt_secret_key"`
	JWTAccessTokenExpires int    `koanf:"jwt_access_token_expires"`

	WeatherAPIKey         string `koanf:"weather_api_key"`
	WeatherAPIBaseURL     string `koanf:"weather_api_base_url"`
	GoogleMapsAPIKey      string `koanf:"google_maps_api_key"`
	DirectionsAPIBaseURL  string `koanf:"directions_api_base_url"`
	RedisURL              string `koanf:"redis_url"`
	CacheTTLSeconds       int    `koanf:"cache_ttl"`
	RouteCacheTTLSeconds  int    `koanf:"route_cache_ttl"`
	RequestTimeoutSeconds int    `koanf:"request_timeout"`

	CORSOrigins    []string `koanf:"cors_origins"`
	RateLimitRPS   float64  `koanf:"rate_limit_rps"`
	RateLimitBurst int      `koanf:"rate_limit_burst"`
	MaxRecent      int      `koanf:"max_recent"`

	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// honoured. Empty means the peer address is always the client IP.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

func defaultConfig() Config {
	return Config{
		Port:                  "5000",
		GinMode:               "release",
		LogLevel:              "info",
		LogFormat:             "json",
		StoreDriver:           StoreAuto,
		DBName:                "navigator",
		JWTSecretKey:          "jwt-secret-string",
		JWTAccessTokenExpires: 3600,
		WeatherAPIBaseURL:     "http://api.weatherapi.com/v1/",
		DirectionsAPIBaseURL:  "https://maps.googleapis.com/maps/api/directions/json",
		CacheTTLSeconds:       300,
		RouteCacheTTLSeconds:  600,
		RequestTimeoutSeconds: 10,
		CORSOrigins:           []string{"*"},
		RateLimitRPS:          20,
		RateLimitBurst:        40,
		MaxRecent:             10,
		TrustedProxies:        []string{},
	}
}

// Load reads .env, then layers defaults, an optional YAML file named by
// CONFIG_FILE and environment variables, in increasing priority.
func Load() (Config, error) {
	loadDotenv()

	k := koanf.New(".")
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	for _, path := range []string{"cors_origins", "trusted_proxies"} {
		if err := splitList(k, path); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreAuto, StoreMemory, StoreFirestore:
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver == StoreFirestore && c.FirebaseCredentialsPath == "" && c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_CREDENTIALS_PATH or FIREBASE_PROJECT_ID is required when STORE_DRIVER=firestore")
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return errors.New("JWT_SECRET_KEY must not be empty")
	}
	if c.JWTAccessTokenExpires <= 0 {
		return errors.New("JWT_ACCESS_TOKEN_EXPIRES must be positive")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxRecent <= 0 {
		return errors.New("MAX_RECENT must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy)
		}
	}
	return nil
}

// ResolvedStoreDriver picks firestore when credentials are configured and
// memory otherwise for STORE_DRIVER=auto.
func (c Config) ResolvedStoreDriver() string {
	if c.StoreDriver != StoreAuto {
		return c.StoreDriver
	}
	if c.FirebaseCredentialsPath != "" {
		return StoreFirestore
	}
	return StoreMemory
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTAccessTokenExpires) * time.Second
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) RouteCacheTTL() time.Duration {
	return time.Duration(c.RouteCacheTTLSeconds) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
