package servicecache

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/xhit/go-str2duration/v2"

	"github.com/tidehook/servicecache/store"
)

const (
	// DefaultDuration is the retention applied when a call does not
	// specify one.
	DefaultDuration = 600 * time.Second

	// DefaultIdentifierAttribute names the caller attribute used for
	// user-scoped fingerprints when identities come from an attribute bag
	// (see requestctx.UserFromAttrs).
	DefaultIdentifierAttribute = "id"
)

// Config is the configuration surface for building a ready-to-use Cache.
type Config struct {
	// Driver selects the store backend: "memory" (default), "redis", or
	// "sqlite".
	Driver string

	// DefaultDuration is the retention applied when a call does not
	// specify one. Defaults to DefaultDuration.
	DefaultDuration time.Duration

	// IdentifierAttribute names the caller attribute holding the stable
	// identifier. Defaults to DefaultIdentifierAttribute.
	IdentifierAttribute string

	// Redis driver settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SQLite driver settings. Empty means in-memory.
	SQLitePath string
}

// DefaultConfig returns a Config with the memory driver and default
// retention.
func DefaultConfig() Config {
	return Config{
		Driver:              "memory",
		DefaultDuration:     DefaultDuration,
		IdentifierAttribute: DefaultIdentifierAttribute,
	}
}

// ConfigFromEnv builds a Config from SERVICE_CACHE_* environment variables,
// starting from DefaultConfig:
//
//	SERVICE_CACHE_DRIVER           memory | redis | sqlite
//	SERVICE_CACHE_DURATION         default retention, e.g. "10m" or "600s"
//	SERVICE_CACHE_IDENTIFIER_ATTR  caller identifier attribute name
//	SERVICE_CACHE_REDIS_ADDR       host:port
//	SERVICE_CACHE_REDIS_PASSWORD
//	SERVICE_CACHE_REDIS_DB         integer database index
//	SERVICE_CACHE_SQLITE_PATH      database file path, empty for in-memory
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("SERVICE_CACHE_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv("SERVICE_CACHE_DURATION"); v != "" {
		d, err := str2duration.ParseDuration(v)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid SERVICE_CACHE_DURATION %q", v)
		}
		cfg.DefaultDuration = d
	}
	if v := os.Getenv("SERVICE_CACHE_IDENTIFIER_ATTR"); v != "" {
		cfg.IdentifierAttribute = v
	}
	if v := os.Getenv("SERVICE_CACHE_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("SERVICE_CACHE_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SERVICE_CACHE_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid SERVICE_CACHE_REDIS_DB %q", v)
		}
		cfg.RedisDB = db
	}
	if v := os.Getenv("SERVICE_CACHE_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	return cfg, nil
}

// Open builds the configured store and returns a Cache on top of it. For
// the redis driver the connection is verified with a ping before returning.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Cache, error) {
	var s store.Store
	switch cfg.Driver {
	case "", "memory":
		s = store.NewMemory(ctx)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "failed to connect to redis")
		}
		s = store.NewRedis(client)
	case "sqlite":
		var err error
		s, err = store.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite store")
		}
	default:
		return nil, errors.Newf("unknown cache driver %q", cfg.Driver)
	}

	duration := cfg.DefaultDuration
	if duration == 0 {
		duration = DefaultDuration
	}
	combined := append([]Option{WithDefaultDuration(duration)}, opts...)
	return New(s, combined...), nil
}
