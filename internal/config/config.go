package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jgivc/assignfetch/internal/entity"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	RedirectHeader = "X-Accel-Redirect"

	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"

	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"

	envPrefix = "ASSIGNFETCH_"
)

type StorageConfig struct {
	Backend    string `yaml:"backend"`
	RedisURL   string `yaml:"redis_url"`
	KeyPrefix  string `yaml:"key_prefix"`
	SQLitePath string `yaml:"sqlite_path"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	Secret     string        `yaml:"secret"`
	MaxAge     time.Duration `yaml:"max_age"`
}

type DumpConfig struct {
	FileName string `yaml:"file_name"`
	OnStop   bool   `yaml:"on_stop"`
}

type ProberConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

type HandlerConfig struct {
	URL              string        `yaml:"url"`
	RedirectHeader   string        `yaml:"header"`
	NoticeFileName   string        `yaml:"notice_file"`
	TemplateFileName string        `yaml:"template"`
	AdminRefresh     time.Duration `yaml:"admin_refresh"`
}

type Config struct {
	Listen        string           `yaml:"listen"`
	LogLevel      string           `yaml:"log_level"`
	LogFormat     string           `yaml:"log_format"`
	HandlerConfig HandlerConfig    `yaml:"handler"`
	Storage       StorageConfig    `yaml:"storage"`
	Session       SessionConfig    `yaml:"session"`
	Dump          DumpConfig       `yaml:"dump"`
	Prober        ProberConfig     `yaml:"prober"`
	Files         []entity.FileSet `yaml:"files"`
}

func (c *Config) SetDefaults() {
	c.Listen = ":8080"
	c.LogLevel = LogLevelInfo
	c.LogFormat = LogFormatText

	c.HandlerConfig = HandlerConfig{
		URL:          "http://localhost:8080",
		AdminRefresh: 30 * time.Second,
	}

	c.Storage = StorageConfig{
		Backend:    StorageMemory,
		RedisURL:   "redis://localhost:6379/0",
		KeyPrefix:  "assignfetch",
		SQLitePath: "ledger.db",
	}

	c.Session = SessionConfig{
		CookieName: "lockedRoll",
		MaxAge:     365 * 24 * time.Hour,
	}

	c.Dump = DumpConfig{
		FileName: "stats.yml",
	}

	c.Prober = ProberConfig{
		Workers: 3,
		Timeout: 5 * time.Second,
	}

	c.Files = []entity.FileSet{
		{ID: "A", Name: "Set A.pdf", URL: "https://www.dropbox.com/scl/fi/pl5wksbeyvyoyqodosxg2/CS_Assignment_SetA.pdf?rlkey=jnz2nu84jhz8xk3s891rom0dj&st=bvw5o3iv&dl=1"},
		{ID: "B", Name: "Set B.pdf", URL: "https://www.dropbox.com/scl/fi/m0f0l0ptfg8rodj3eyqgu/CS_Assignment_SetB.pdf?rlkey=8ylw47hruore6faer9rfe3xhi&st=a2x2xnm6&dl=1"},
		{ID: "C", Name: "Set C.pdf", URL: "https://www.dropbox.com/scl/fi/x8j8jsghuebdkov5fowmq/CS_Assignment_SetC.pdf?rlkey=nyxnmqsfjx5ksxptl6r3g341t&st=dfhytda0&dl=1"},
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatPretty:
	default:
		return fmt.Errorf("unknown log format: %q", c.LogFormat)
	}

	switch c.Storage.Backend {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is empty")
	}

	if c.Prober.Workers < 1 {
		return fmt.Errorf("prober needs at least one worker")
	}

	return nil
}

// Load reads path from fs over the defaults, then applies .env and ASSIGNFETCH_* variables.
// A missing file is not an error.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(afero.NewOsFs(), path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) applyEnv() {
	for name, dst := range map[string]*string{
		"LISTEN":         &c.Listen,
		"URL":            &c.HandlerConfig.URL,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
		"STORAGE":        &c.Storage.Backend,
		"REDIS_URL":      &c.Storage.RedisURL,
		"SQLITE_PATH":    &c.Storage.SQLitePath,
		"SESSION_SECRET": &c.Session.Secret,
	} {
		if val, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = val
		}
	}
}
