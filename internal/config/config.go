package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "~/.config/clipkeep/config.yaml"
	DefaultDataPath   = "~/.local/share/clipkeep"
)

// Environment overrides
const (
	EnvConfig = "CLIPKEEP_CONFIG"
	EnvHome   = "CLIPKEEP_HOME"
)

// Config is the full clipkeep configuration
type Config struct {
	Storage    StorageConfig   `yaml:"storage"`
	History    HistoryConfig   `yaml:"history"`
	Monitor    MonitorConfig   `yaml:"monitor"`
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`
	Janitor    JanitorConfig   `yaml:"janitor"`
	Index      IndexConfig     `yaml:"index"`
	Log        LogConfig       `yaml:"log"`
}

type StorageConfig struct {
	Path      string `yaml:"path"`
	ChunkSize int    `yaml:"chunkSize"`
}

type HistoryConfig struct {
	// MaxHistoryToSave caps retained items, 0 means unlimited
	MaxHistoryToSave int `yaml:"maxHistoryToSave"`
	// MaxFileSizeToSave is a hard byte limit for file and image items, 0 means unlimited
	MaxFileSizeToSave int64 `yaml:"maxFileSizeToSave"`
	// LargeFileAlertThreshold asks for confirmation above this many bytes, 0 disables
	LargeFileAlertThreshold int64  `yaml:"largeFileAlertThreshold"`
	DuplicateDetection      string `yaml:"duplicateDetection"`
	LegacyFile              string `yaml:"legacyFile"`
	// ConfirmPolicy answers large-content prompts: defer, accept, reject or ask
	ConfirmPolicy string `yaml:"confirmPolicy"`
}

type MonitorConfig struct {
	Interval        time.Duration `yaml:"interval"`
	ReadAttempts    int           `yaml:"readAttempts"`
	RetryDelay      time.Duration `yaml:"retryDelay"`
	StartMonitoring *bool         `yaml:"startMonitoring"`
	ExcludedApps    []string      `yaml:"excludedApps"`
}

type ThumbnailConfig struct {
	Size      int `yaml:"size"`
	CacheSize int `yaml:"cacheSize"`
	Workers   int `yaml:"workers"`
}

type JanitorConfig struct {
	Schedule     string        `yaml:"schedule"`
	PendingTTL   time.Duration `yaml:"pendingTTL"`
	CompactDelay time.Duration `yaml:"compactDelay"`
}

type IndexConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	Path   string `yaml:"path"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:      DefaultDataPath,
			ChunkSize: 100,
		},
		History: HistoryConfig{
			MaxHistoryToSave:   1000,
			DuplicateDetection: "size",
			ConfirmPolicy:      "defer",
		},
		Monitor: MonitorConfig{
			Interval:        500 * time.Millisecond,
			ReadAttempts:    3,
			RetryDelay:      100 * time.Millisecond,
			StartMonitoring: boolPtr(true),
		},
		Thumbnails: ThumbnailConfig{
			Size:      128,
			CacheSize: 256,
			Workers:   4,
		},
		Janitor: JanitorConfig{
			Schedule:     "@every 15m",
			PendingTTL:   30 * time.Minute,
			CompactDelay: 2 * time.Second,
		},
		Index: IndexConfig{
			Enabled: boolPtr(true),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Path returns the config file path from CLIPKEEP_CONFIG,
// falling back to DefaultConfigPath.
func Path() string {
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults. CLIPKEEP_HOME overrides the storage path.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if env := os.Getenv(EnvHome); env != "" {
		cfg.Storage.Path = env
	}

	cfg.validate()
	return cfg, nil
}

// SetHome points storage at dir and re-derives the paths that default under it
func (c *Config) SetHome(dir string) {
	c.Storage.Path = ExpandHome(dir)
	c.History.LegacyFile = filepath.Join(c.Storage.Path, "history.json")
	c.Index.Path = filepath.Join(c.Storage.Path, "index.db")
}

// HistoryDir is where history chunks live
func (c *Config) HistoryDir() string {
	return filepath.Join(c.Storage.Path, "history")
}

// FilesDir is the private file store directory
func (c *Config) FilesDir() string {
	return filepath.Join(c.Storage.Path, "files")
}

// StartMonitoring reports whether capture starts enabled
func (c *Config) StartMonitoring() bool {
	return c.Monitor.StartMonitoring == nil || *c.Monitor.StartMonitoring
}

// IndexEnabled reports whether the SQLite query index is used
func (c *Config) IndexEnabled() bool {
	return c.Index.Enabled == nil || *c.Index.Enabled
}

// validate clamps out-of-range values back to their defaults
func (c *Config) validate() {
	def := Default()

	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	c.Storage.Path = ExpandHome(c.Storage.Path)
	if c.Storage.ChunkSize <= 0 {
		c.Storage.ChunkSize = def.Storage.ChunkSize
	}

	if c.History.MaxHistoryToSave < 0 {
		c.History.MaxHistoryToSave = def.History.MaxHistoryToSave
	}
	if c.History.MaxFileSizeToSave < 0 {
		c.History.MaxFileSizeToSave = 0
	}
	if c.History.LargeFileAlertThreshold < 0 {
		c.History.LargeFileAlertThreshold = 0
	}
	switch strings.ToLower(c.History.DuplicateDetection) {
	case "size", "hash":
		c.History.DuplicateDetection = strings.ToLower(c.History.DuplicateDetection)
	default:
		c.History.DuplicateDetection = def.History.DuplicateDetection
	}
	switch strings.ToLower(c.History.ConfirmPolicy) {
	case "defer", "accept", "reject", "ask":
		c.History.ConfirmPolicy = strings.ToLower(c.History.ConfirmPolicy)
	default:
		c.History.ConfirmPolicy = def.History.ConfirmPolicy
	}
	if c.History.LegacyFile == "" {
		c.History.LegacyFile = filepath.Join(c.Storage.Path, "history.json")
	}
	c.History.LegacyFile = ExpandHome(c.History.LegacyFile)

	if c.Monitor.Interval <= 0 {
		c.Monitor.Interval = def.Monitor.Interval
	}
	if c.Monitor.ReadAttempts <= 0 {
		c.Monitor.ReadAttempts = def.Monitor.ReadAttempts
	}
	if c.Monitor.RetryDelay < 0 {
		c.Monitor.RetryDelay = def.Monitor.RetryDelay
	}

	if c.Thumbnails.Size <= 0 {
		c.Thumbnails.Size = def.Thumbnails.Size
	}
	if c.Thumbnails.CacheSize <= 0 {
		c.Thumbnails.CacheSize = def.Thumbnails.CacheSize
	}
	if c.Thumbnails.Workers <= 0 {
		c.Thumbnails.Workers = def.Thumbnails.Workers
	}

	if _, err := cron.ParseStandard(c.Janitor.Schedule); err != nil {
		c.Janitor.Schedule = def.Janitor.Schedule
	}
	if c.Janitor.PendingTTL <= 0 {
		c.Janitor.PendingTTL = def.Janitor.PendingTTL
	}
	if c.Janitor.CompactDelay <= 0 {
		c.Janitor.CompactDelay = def.Janitor.CompactDelay
	}

	if c.Index.Path == "" {
		c.Index.Path = filepath.Join(c.Storage.Path, "index.db")
	}
	c.Index.Path = ExpandHome(c.Index.Path)

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		c.Log.Level = strings.ToLower(c.Log.Level)
	default:
		c.Log.Level = def.Log.Level
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		c.Log.Format = def.Log.Format
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.Path == "" {
			c.Log.Path = filepath.Join(c.Storage.Path, "logs")
		}
		c.Log.Path = ExpandHome(c.Log.Path)
	default:
		c.Log.Output = def.Log.Output
	}
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

func boolPtr(b bool) *bool {
	return &b
}
