package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Drivers de storage soportados. "none" arranca sin base (todas las
// operaciones responden ErrNoDatabase).
var Drivers = []string{"memory", "postgres", "mysql", "sqlite", "redis", "none"}

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"app_env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			DSN             string `yaml:"dsn"`
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		MySQL struct {
			DSN             string `yaml:"dsn"`
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"mysql"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"log"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Backend string `yaml:"backend"` // memory | redis
		Max     int    `yaml:"max"`
		Window  string `yaml:"window"`
		Redis   struct {
			// Addr vacío reutiliza storage.redis.addr.
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"rate"`

	Flags struct {
		// Migrate aplica las migraciones embebidas al arrancar serve.
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Default devuelve la configuración sin archivo: memory store en :8080.
func Default() *Config {
	var c Config
	c.setDefaults()
	return &c
}

// Load lee path, aplica defaults y overrides por env, y valida.
// Un path vacío equivale a Default() + env.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.setDefaults()
	c.applyEnvOverrides()

	// sqlite relativo al directorio del YAML
	if p := strings.TrimSpace(c.Storage.SQLite.Path); p != "" && path != "" && !filepath.IsAbs(p) && p != ":memory:" {
		c.Storage.SQLite.Path = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "hellouser"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "15s"
	}
	if c.Server.IdleTimeout == "" {
		c.Server.IdleTimeout = "60s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		if strings.EqualFold(c.App.Env, "prod") {
			c.Log.Format = "json"
		} else {
			c.Log.Format = "console"
		}
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Max == 0 {
		c.Rate.Max = 60
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.Redis.Prefix == "" {
		c.Rate.Redis.Prefix = "rl:"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVICE_VERSION"); ok {
		c.App.Version = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("POSTGRES_DSN"); ok {
		c.Storage.Postgres.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvStr("MYSQL_DSN"); ok {
		c.Storage.MySQL.DSN = v
	}
	if v, ok := getEnvStr("SQLITE_PATH"); ok {
		c.Storage.SQLite.Path = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Storage.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Storage.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Storage.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Storage.Redis.Prefix = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_FORMAT"); ok {
		c.Log.Format = strings.ToLower(v)
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvInt("RATE_MAX"); ok {
		c.Rate.Max = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvStr("RATE_REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}

	// METRICS / FLAGS
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}

// StorageDSN resuelve el DSN del driver activo: el bloque específico gana
// sobre storage.dsn.
func (c *Config) StorageDSN() string {
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.Postgres.DSN != "" {
			return c.Storage.Postgres.DSN
		}
	case "mysql":
		if c.Storage.MySQL.DSN != "" {
			return c.Storage.MySQL.DSN
		}
	case "sqlite":
		if c.Storage.SQLite.Path != "" {
			return c.Storage.SQLite.Path
		}
	case "redis":
		if c.Storage.Redis.Addr != "" {
			return c.Storage.Redis.Addr
		}
	}
	return c.Storage.DSN
}

// RateRedisAddr resuelve el redis del limiter.
func (c *Config) RateRedisAddr() string {
	if c.Rate.Redis.Addr != "" {
		return c.Rate.Redis.Addr
	}
	return c.Storage.Redis.Addr
}

// Duration parsea uno de los campos de duración ya validados.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Validate junta todos los problemas en un solo error.
func (c *Config) Validate() error {
	var errs []error

	known := false
	for _, d := range Drivers {
		if c.Storage.Driver == d {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (want one of %s)", c.Storage.Driver, strings.Join(Drivers, ", ")))
	}
	switch c.Storage.Driver {
	case "postgres", "mysql", "sqlite", "redis":
		if strings.TrimSpace(c.StorageDSN()) == "" {
			errs = append(errs, fmt.Errorf("storage.driver %s requires a dsn", c.Storage.Driver))
		}
	}

	for name, val := range map[string]string{
		"server.read_timeout":                strings.TrimSpace(c.Server.ReadTimeout),
		"server.write_timeout":               strings.TrimSpace(c.Server.WriteTimeout),
		"server.idle_timeout":                strings.TrimSpace(c.Server.IdleTimeout),
		"server.shutdown_timeout":            strings.TrimSpace(c.Server.ShutdownTimeout),
		"storage.postgres.conn_max_lifetime": strings.TrimSpace(c.Storage.Postgres.ConnMaxLifetime),
		"storage.mysql.conn_max_lifetime":    strings.TrimSpace(c.Storage.MySQL.ConnMaxLifetime),
		"rate.window":                        strings.TrimSpace(c.Rate.Window),
	} {
		if val == "" {
			continue
		}
		if _, err := time.ParseDuration(val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q not supported", c.Log.Format))
	}
	if c.Rate.Enabled {
		switch c.Rate.Backend {
		case "memory":
		case "redis":
			if strings.TrimSpace(c.RateRedisAddr()) == "" {
				errs = append(errs, errors.New("rate.backend redis requires rate.redis.addr or storage.redis.addr"))
			}
		default:
			errs = append(errs, fmt.Errorf("rate.backend %q not supported", c.Rate.Backend))
		}
		if c.Rate.Max <= 0 {
			errs = append(errs, errors.New("rate.max must be positive"))
		}
		if d, err := time.ParseDuration(c.Rate.Window); err == nil && d <= 0 {
			errs = append(errs, errors.New("rate.window must be positive"))
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, errors.New("metrics.path must start with /"))
	}
	return errors.Join(errs...)
}
