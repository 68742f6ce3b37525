package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	GeneratorAuto   = "auto"
	GeneratorGemini = "gemini"
	GeneratorLocal  = "local"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	HTTP struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"http"`

	DataDir string `yaml:"data_dir"`

	History struct {
		Backend     string `yaml:"backend"`
		RedisURL    string `yaml:"redis_url"`
		PostgresDSN string `yaml:"postgres_dsn"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"history"`

	Generator struct {
		Kind       string  `yaml:"kind"`
		Model      string  `yaml:"model"`
		BaseURL    string  `yaml:"base_url"`
		RatePerSec float64 `yaml:"rate_per_sec"`
		Burst      int     `yaml:"burst"`
		Seed       uint64  `yaml:"seed"`
	} `yaml:"generator"`

	Worker struct {
		ShiftDuration  time.Duration `yaml:"shift_duration"`
		SearchTimeout  time.Duration `yaml:"search_timeout"`
		PersistTimeout time.Duration `yaml:"persist_timeout"`
	} `yaml:"worker"`

	Demand struct {
		Refresh string `yaml:"refresh"`
	} `yaml:"demand"`
}

func Default() Config {
	var c Config
	c.HTTP.Addr = ":8080"
	c.HTTP.ShutdownTimeout = 10 * time.Second
	c.DataDir = "data"
	c.History.Backend = BackendFile
	c.Generator.Kind = GeneratorAuto
	c.Generator.Model = "gemini-2.5-flash"
	c.Generator.BaseURL = "https://generativelanguage.googleapis.com"
	c.Generator.RatePerSec = 1
	c.Generator.Burst = 2
	c.Worker.ShiftDuration = 5 * time.Second
	c.Worker.SearchTimeout = 30 * time.Second
	c.Worker.PersistTimeout = 5 * time.Second
	c.Demand.Refresh = "@every 10m"
	return c
}

// Load reads defaults, then the YAML file at path (if any), then env overrides,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTP.Addr = envOr("GIGFINDER_ADDR", c.HTTP.Addr)
	c.DataDir = envOr("GIGFINDER_DATA_DIR", c.DataDir)
	c.History.Backend = envOr("HISTORY_BACKEND", c.History.Backend)
	c.History.RedisURL = envOr("REDIS_URL", c.History.RedisURL)
	c.History.PostgresDSN = envOr("POSTGRES_DSN", c.History.PostgresDSN)
	c.History.SQLitePath = envOr("SQLITE_PATH", c.History.SQLitePath)
	c.Generator.Kind = envOr("GENERATOR", c.Generator.Kind)
	c.Generator.Model = envOr("GEMINI_MODEL", c.Generator.Model)
	c.Generator.Burst = envIntOr("GEMINI_BURST", c.Generator.Burst)
	c.Worker.ShiftDuration = envDurationOr("WORK_DURATION", c.Worker.ShiftDuration)
	c.Worker.PersistTimeout = envDurationOr("PERSIST_TIMEOUT", c.Worker.PersistTimeout)
	c.Demand.Refresh = envOr("DEMAND_REFRESH", c.Demand.Refresh)
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		add("http.addr must be set")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		add("http.shutdown_timeout must be > 0")
	}

	switch c.History.Backend {
	case BackendFile:
		if strings.TrimSpace(c.DataDir) == "" {
			add("data_dir must be set for the file backend")
		}
	case BackendRedis:
		if c.History.RedisURL == "" {
			add("history.redis_url must be set for the redis backend")
		}
	case BackendPostgres:
		if c.History.PostgresDSN == "" {
			add("history.postgres_dsn must be set for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath() == "" {
			add("history.sqlite_path or data_dir must be set for the sqlite backend")
		}
	default:
		add("history.backend %q must be one of file, redis, postgres, sqlite", c.History.Backend)
	}

	switch c.Generator.Kind {
	case GeneratorAuto, GeneratorGemini, GeneratorLocal:
	default:
		add("generator.kind %q must be one of auto, gemini, local", c.Generator.Kind)
	}
	if c.Generator.Kind != GeneratorLocal && strings.TrimSpace(c.Generator.Model) == "" {
		add("generator.model must be set")
	}
	if c.Generator.RatePerSec < 0 {
		add("generator.rate_per_sec must be >= 0")
	}

	if c.Worker.ShiftDuration <= 0 {
		add("worker.shift_duration must be > 0")
	}
	if c.Worker.SearchTimeout <= 0 {
		add("worker.search_timeout must be > 0")
	}
	if c.Worker.PersistTimeout <= 0 {
		add("worker.persist_timeout must be > 0")
	}
	if strings.TrimSpace(c.Demand.Refresh) == "" {
		add("demand.refresh must be a cron spec")
	} else if _, err := cron.ParseStandard(c.Demand.Refresh); err != nil {
		add("demand.refresh %q: %v", c.Demand.Refresh, err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// HistoryFile is the file backend location.
func (c Config) HistoryFile() string {
	return filepath.Join(c.DataDir, "gigfinder-job-history.json")
}

func (c Config) SQLitePath() string {
	if c.History.SQLitePath != "" {
		return c.History.SQLitePath
	}
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "gigfinder.db")
}

var dsnPassword = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// RedactDSN masks the password in URL-style DSNs: user:pass@ -> user:****@.
func RedactDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, `://$1:****@`)
}

func envOr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
