// AngelaMos | 2026
// load.go

package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads configuration from defaults, then configPath when set, then
// the mapped environment variables, and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", configPath, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return decode(k)
}

func decode(k *koanf.Koanf) (*Config, error) {
	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

var defaults = map[string]any{
	"app.name":        "Storefront",
	"app.version":     "1.0.0",
	"app.environment": "development",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "30s",
	"server.write_timeout":    "30s",
	"server.idle_timeout":     "120s",
	"server.shutdown_timeout": "15s",

	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "30m",

	"redis.pool_size":      10,
	"redis.min_idle_conns": 5,

	"jwt.access_token_expire":  "15m",
	"jwt.refresh_token_expire": "168h",
	"jwt.issuer":               "storefront",
	"jwt.audience":             "storefront-api",
	"jwt.private_key_path":     "keys/private.pem",
	"jwt.public_key_path":      "keys/public.pem",

	"rate_limit.requests": 100,
	"rate_limit.window":   "1m",
	"rate_limit.burst":    20,

	"cors.allowed_origins":   []string{"http://localhost:3000"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	"cors.allow_credentials": true,
	"cors.max_age":           300,

	"log.level":  "info",
	"log.format": "json",

	"otel.enabled":      false,
	"otel.insecure":     true,
	"otel.sample_rate":  0.1,
	"otel.service_name": "storefront",

	"orders.stock_policy":   StockPolicyClamp,
	"orders.place_requests": 10,
	"orders.place_burst":    5,

	"settings.cache_ttl": "10m",

	"admin.name": "Administrator",
}

func loadDefaults(k *koanf.Koanf) error {
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("default %s: %w", key, err)
		}
	}
	return nil
}

// envKeyMap lists the only environment variables read. Anything else in
// the environment is ignored.
var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"ORDERS_STOCK_POLICY":         "orders.stock_policy",
	"ORDERS_PLACE_REQUESTS":       "orders.place_requests",
	"ORDERS_PLACE_BURST":          "orders.place_burst",
	"SETTINGS_CACHE_TTL":          "settings.cache_ttl",
	"ADMIN_EMAIL":                 "admin.email",
	"ADMIN_PASSWORD":              "admin.password",
	"ADMIN_NAME":                  "admin.name",
}

func envKeyReplacer(s string) string {
	return envKeyMap[s]
}

// validate reports every problem at once rather than the first one.
func validate(c *Config) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Database.URL == "" {
		fail("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		fail("REDIS_URL is required")
	}
	if c.JWT.PrivateKeyPath == "" || c.JWT.PublicKeyPath == "" {
		fail("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are required")
	}
	if c.JWT.AccessTokenExpire <= 0 || c.JWT.RefreshTokenExpire <= c.JWT.AccessTokenExpire {
		fail("jwt.refresh_token_expire must exceed a positive jwt.access_token_expire")
	}

	if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*") {
		fail("CORS wildcard '*' cannot be used with allow_credentials")
	}
	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		fail("OTEL_INSECURE must be false in production")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		fail("server read and write timeouts must be positive")
	}

	if c.Orders.StockPolicy != StockPolicyClamp && c.Orders.StockPolicy != StockPolicyStrict {
		fail("orders.stock_policy must be %q or %q, got %q",
			StockPolicyClamp, StockPolicyStrict, c.Orders.StockPolicy)
	}
	if c.RateLimit.Requests <= 0 || c.Orders.PlaceRequests <= 0 {
		fail("rate limits must be positive")
	}
	if c.Settings.CacheTTL < 0 {
		fail("settings.cache_ttl must not be negative")
	}

	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		fail("ADMIN_PASSWORD must be at least 8 characters")
	}

	return errors.Join(errs...)
}
