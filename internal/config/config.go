package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Auth      AuthConfig      `yaml:"auth"`
	Deck      DeckConfig      `yaml:"deck"`
	Workout   WorkoutConfig   `yaml:"workout"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	AssetsDir string `yaml:"assets_dir"`
}

type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AuthConfig covers the identity fallbacks used outside the tailnet.
type AuthConfig struct {
	// DevUser is the identity given to requests that carry none.
	// Empty means such requests are rejected.
	DevUser string `yaml:"dev_user"`
	// APIKey, when set, is required on the MCP endpoint.
	APIKey string `yaml:"api_key"`
}

type DeckConfig struct {
	// Path overrides the built-in deck definition.
	Path string `yaml:"path"`
}

type WorkoutConfig struct {
	DefaultCount    int `yaml:"default_count"`
	MaxCount        int `yaml:"max_count"`
	WaterBreakEvery int `yaml:"water_break_every"`
	MonthlyGoal     int `yaml:"monthly_goal"`
}

// Default returns the configuration used for any field the file leaves out.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "data/shukuma.db",
			Postgres: PostgresConfig{
				Host: "localhost",
				Port: 5432,
				Name: "shukuma",
			},
		},
		Tailscale: TailscaleConfig{Hostname: "shukuma", StateDir: "data/tsnet"},
		Auth:      AuthConfig{DevUser: "local"},
		Workout: WorkoutConfig{
			DefaultCount:    10,
			MaxCount:        30,
			WaterBreakEvery: 5,
			MonthlyGoal:     20,
		},
	}
}

// DSN returns a PostgreSQL connection string.
func (d PostgresConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// DSN returns what storage.Open expects for the configured driver.
func (s StorageConfig) DSN() string {
	if s.Driver == "postgres" {
		return s.Postgres.DSN()
	}
	return s.Path
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A .env file next to the config file is
// loaded first; variables already set in the environment win over it.
// Env vars use the prefix SHUKUMA_ and underscore-separated paths:
//
//	SHUKUMA_SERVER_HOST, SHUKUMA_SERVER_PORT, SHUKUMA_ASSETS_DIR,
//	SHUKUMA_STORAGE_DRIVER, SHUKUMA_STORAGE_PATH,
//	SHUKUMA_DB_HOST, SHUKUMA_DB_PORT, SHUKUMA_DB_NAME,
//	SHUKUMA_DB_USER, SHUKUMA_DB_PASSWORD, SHUKUMA_DB_SSLMODE,
//	SHUKUMA_TAILSCALE_ENABLED, SHUKUMA_TAILSCALE_HOSTNAME, SHUKUMA_TAILSCALE_STATE_DIR,
//	SHUKUMA_AUTH_DEV_USER, SHUKUMA_AUTH_API_KEY,
//	SHUKUMA_DECK_PATH, SHUKUMA_MONTHLY_GOAL
//
// An empty path skips the file and uses the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	envDir := "."
	if path != "" {
		envDir = filepath.Dir(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := loadDotEnv(filepath.Join(envDir, ".env")); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(&cfg.Server.Host, "SHUKUMA_SERVER_HOST")
	setInt(&cfg.Server.Port, "SHUKUMA_SERVER_PORT")
	setString(&cfg.Server.AssetsDir, "SHUKUMA_ASSETS_DIR")

	setString(&cfg.Storage.Driver, "SHUKUMA_STORAGE_DRIVER")
	setString(&cfg.Storage.Path, "SHUKUMA_STORAGE_PATH")
	setString(&cfg.Storage.Postgres.Host, "SHUKUMA_DB_HOST")
	setInt(&cfg.Storage.Postgres.Port, "SHUKUMA_DB_PORT")
	setString(&cfg.Storage.Postgres.Name, "SHUKUMA_DB_NAME")
	setString(&cfg.Storage.Postgres.User, "SHUKUMA_DB_USER")
	setString(&cfg.Storage.Postgres.Password, "SHUKUMA_DB_PASSWORD")
	setString(&cfg.Storage.Postgres.SSLMode, "SHUKUMA_DB_SSLMODE")

	if v := os.Getenv("SHUKUMA_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	setString(&cfg.Tailscale.Hostname, "SHUKUMA_TAILSCALE_HOSTNAME")
	setString(&cfg.Tailscale.StateDir, "SHUKUMA_TAILSCALE_STATE_DIR")

	setString(&cfg.Auth.DevUser, "SHUKUMA_AUTH_DEV_USER")
	setString(&cfg.Auth.APIKey, "SHUKUMA_AUTH_API_KEY")

	setString(&cfg.Deck.Path, "SHUKUMA_DECK_PATH")
	setInt(&cfg.Workout.MonthlyGoal, "SHUKUMA_MONTHLY_GOAL")
}

func (c *Config) validate() error {
	if !c.Tailscale.Enabled && c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	case "postgres":
		pg := c.Storage.Postgres
		if pg.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if pg.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if pg.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if pg.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver must be sqlite, postgres or memory, got %q", c.Storage.Driver)
	}

	w := c.Workout
	if w.MaxCount < 1 {
		return fmt.Errorf("workout.max_count must be at least 1")
	}
	if w.DefaultCount < 1 || w.DefaultCount > w.MaxCount {
		return fmt.Errorf("workout.default_count must be between 1 and %d", w.MaxCount)
	}
	if w.WaterBreakEvery < 0 {
		return fmt.Errorf("workout.water_break_every must not be negative")
	}
	if w.MonthlyGoal < 1 {
		return fmt.Errorf("workout.monthly_goal must be at least 1")
	}
	return nil
}
