package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "CANDYSHOP"

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	LockerMutex = "mutex"
	LockerRedis = "redis"
)

type Config struct {
	App     AppConfig
	Store   StoreConfig
	Lock    LockConfig
	JWT     JWTConfig
	Metrics MetricsConfig
	Limits  LimitsConfig
}

type AppConfig struct {
	Port            string        `envconfig:"CANDYSHOP_PORT" default:"3000"`
	LogLevel        string        `envconfig:"CANDYSHOP_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"CANDYSHOP_SHUTDOWN_TIMEOUT" default:"10s"`
	SeedCatalog     bool          `envconfig:"CANDYSHOP_SEED_CATALOG" default:"true"`
}

type StoreConfig struct {
	Driver string `envconfig:"CANDYSHOP_STORE_DRIVER" default:"file"`
	// Path is the JSON document for the file driver and the database file
	// for the sqlite driver.
	Path string `envconfig:"CANDYSHOP_STORE_PATH" default:"db.json"`
	DSN  string `envconfig:"CANDYSHOP_STORE_DSN"`
}

type LockConfig struct {
	Driver    string        `envconfig:"CANDYSHOP_LOCK_DRIVER" default:"mutex"`
	RedisAddr string        `envconfig:"CANDYSHOP_REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int           `envconfig:"CANDYSHOP_REDIS_DB" default:"0"`
	Key       string        `envconfig:"CANDYSHOP_LOCK_KEY" default:"candyshop:document"`
	TTL       time.Duration `envconfig:"CANDYSHOP_LOCK_TTL" default:"10s"`
	Retry     time.Duration `envconfig:"CANDYSHOP_LOCK_RETRY" default:"25ms"`
}

type JWTConfig struct {
	Secret string        `envconfig:"CANDYSHOP_JWT_SECRET" default:"dev-secret"`
	TTL    time.Duration `envconfig:"CANDYSHOP_JWT_TTL" default:"15m"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"CANDYSHOP_METRICS_ENABLED" default:"true"`
	Token   string `envconfig:"CANDYSHOP_METRICS_TOKEN"`
}

type LimitsConfig struct {
	LoginPerWindow    int           `envconfig:"CANDYSHOP_LOGIN_LIMIT" default:"5"`
	RegisterPerWindow int           `envconfig:"CANDYSHOP_REGISTER_LIMIT" default:"3"`
	Window            time.Duration `envconfig:"CANDYSHOP_LIMIT_WINDOW" default:"1m"`
}

// Load reads an optional .env file and then the process environment.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(dotenvFiles...)

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Lock.Driver = strings.ToLower(strings.TrimSpace(c.Lock.Driver))

	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%s_STORE_PATH is required for the %s driver", EnvPrefix, c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%s_STORE_DSN is required for the postgres driver", EnvPrefix)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown %s_STORE_DRIVER %q", EnvPrefix, c.Store.Driver)
	}

	switch c.Lock.Driver {
	case LockerMutex:
	case LockerRedis:
		if c.Lock.RedisAddr == "" {
			return fmt.Errorf("%s_REDIS_ADDR is required for the redis locker", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown %s_LOCK_DRIVER %q", EnvPrefix, c.Lock.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("%s_JWT_SECRET must not be empty", EnvPrefix)
	}
	return nil
}
