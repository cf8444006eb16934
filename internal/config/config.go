package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environments
const (
	EnvLocal = "local"
	EnvDebug = "debug"
	EnvProd  = "prod"
)

// AppDirName is the per-user directory holding config, queue and history
const AppDirName = "yt-queue"

// ConfigPathEnv overrides the config file location
const ConfigPathEnv = "YTQ_CONFIG"

// Config is the runtime configuration read from an optional YAML file and
// the environment.
type Config struct {
	Env       string    `yaml:"env" env:"YTQ_ENV" env-default:"local"`
	Store     Store     `yaml:"store"`
	History   History   `yaml:"history"`
	Worker    Worker    `yaml:"worker"`
	Engine    Engine    `yaml:"engine"`
	Transcode Transcode `yaml:"transcode"`
}

type Store struct {
	Backend  string `yaml:"backend" env:"YTQ_STORE_BACKEND" env-default:"file"`
	Path     string `yaml:"path" env:"YTQ_STORE_PATH"`
	RedisURL string `yaml:"redis_url" env:"YTQ_REDIS_URL" env-default:"redis://localhost:6379/0"`
	RedisKey string `yaml:"redis_key" env:"YTQ_REDIS_KEY" env-default:"ytqueue:tasks"`
}

// History is on unless disabled; env-default cannot express a false override
type History struct {
	Disabled bool   `yaml:"disabled" env:"YTQ_HISTORY_DISABLED"`
	Path     string `yaml:"path" env:"YTQ_HISTORY_PATH"`
}

type Worker struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"YTQ_POLL_INTERVAL" env-default:"250ms"`
}

type Engine struct {
	Retries             int           `yaml:"retries" env:"YTQ_RETRIES" env-default:"10"`
	FragmentRetries     int           `yaml:"fragment_retries" env:"YTQ_FRAGMENT_RETRIES" env-default:"10"`
	ConcurrentFragments int           `yaml:"concurrent_fragments" env:"YTQ_CONCURRENT_FRAGMENTS" env-default:"8"`
	ProgressInterval    time.Duration `yaml:"progress_interval" env:"YTQ_PROGRESS_INTERVAL" env-default:"500ms"`
	HTTPChunkSize       string        `yaml:"http_chunk_size" env:"YTQ_HTTP_CHUNK_SIZE" env-default:"1M"`
	ExtractorArgs       string        `yaml:"extractor_args" env:"YTQ_EXTRACTOR_ARGS" env-default:"youtube:player_client=android;player_skip=js"`
	AutoUpdate          bool          `yaml:"auto_update" env:"YTQ_AUTO_UPDATE"`
	UpdateTimeout       time.Duration `yaml:"update_timeout" env:"YTQ_UPDATE_TIMEOUT" env-default:"2m"`
}

type Transcode struct {
	FFmpegPath  string `yaml:"ffmpeg_path" env:"YTQ_FFMPEG" env-default:"ffmpeg"`
	FFprobePath string `yaml:"ffprobe_path" env:"YTQ_FFPROBE" env-default:"ffprobe"`
}

// DefaultDir returns <user config dir>/yt-queue
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, AppDirName)
}

// DefaultPath returns the config file location, honoring YTQ_CONFIG
func DefaultPath() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads path when it exists and applies the environment on top.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("cannot access config file %s: %w", path, err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	return &cfg, nil
}

// MustLoad is Load for main: it exits on error
func MustLoad() *Config {
	cfg, err := Load(DefaultPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// applyDefaults fills paths that depend on the config location
func (c *Config) applyDefaults(dir string) {
	if c.Store.Path == "" {
		name := "queue.json"
		if c.Store.Backend == "bolt" {
			name = "queue.db"
		}
		c.Store.Path = filepath.Join(dir, name)
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(dir, "history.db")
	}
}
