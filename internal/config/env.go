package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/v2"

	"navigator/internal/logging"
)

// envKeys maps the environment variables we read to koanf paths. Anything
// else in the environment is ignored.
var envKeys = map[string]string{
	"PORT":                      "port",
	"GIN_MODE":                  "gin_mode",
	"LOG_LEVEL":                 "log_level",
	"LOG_FORMAT":                "log_format",
	"STORE_DRIVER":              "store_driver",
	"FIREBASE_CREDENTIALS_PATH": "firebase_credentials_path",
	"FIREBASE_PROJECT_ID":       "firebase_project_id",
	"MONGO_URI":                 "mongo_uri",
	"DB_NAME":                   "db_name",
	"JWT_SECRET_KEY":            "jwt_secret_key",
	"JWT_ACCESS_TOKEN_EXPIRES":  "jwt_access_token_expires",
	"WEATHER_API_KEY":           "weather_api_key",
	"WEATHER_API_BASE_URL":      "weather_api_base_url",
	"GOOGLE_MAPS_API_KEY":       "google_maps_api_key",
	"DIRECTIONS_API_BASE_URL":   "directions_api_base_url",
	"REDIS_URL":                 "redis_url",
	"CACHE_TTL":                 "cache_ttl",
	"ROUTE_CACHE_TTL":           "route_cache_ttl",
	"REQUEST_TIMEOUT":           "request_timeout",
	"CORS_ORIGINS":              "cors_origins",
	"RATE_LIMIT_RPS":            "rate_limit_rps",
	"RATE_LIMIT_BURST":          "rate_limit_burst",
	"MAX_RECENT":                "max_recent",
	"TRUSTED_PROXIES":           "trusted_proxies",
}

func envKey(name string) string {
	return envKeys[strings.ToUpper(name)]
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Err(err).Msg("[CONFIG] .env not loaded")
	}
}

// splitList turns a comma-separated env value into a string slice.
func splitList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	parts := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if err := k.Set(path, parts); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}
