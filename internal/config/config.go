// Package config builds the effective settings from three layers:
// defaults, then an optional .codetran.yaml found by walking up from the
// target path, then explicitly set command-line flags. Later layers win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigName is the config file base name searched for in the target
// directory and its ancestors.
const ConfigName = ".codetran.yaml"

const DefaultMaxFileSize = 1 << 20 // files over 1 MiB are skipped

// Config is the effective settings consumed by the pipeline.
type Config struct {
	Backend    string `mapstructure:"backend"`
	Model      string `mapstructure:"model"`
	SourceLang string `mapstructure:"source_lang"`
	TargetLang string `mapstructure:"target_lang"`

	TranslateAll bool `mapstructure:"translate_all"`
	AllText      bool `mapstructure:"all_text"`
	DryRun       bool `mapstructure:"dry_run"`
	Recursive    bool `mapstructure:"recursive"`

	Workers      int   `mapstructure:"workers"`
	MaxChunkSize int   `mapstructure:"max_chunk_size"`
	MaxFileSize  int64 `mapstructure:"max_file_size"`

	SkipDirs       []string `mapstructure:"skip_dirs"`
	SkipExtensions []string `mapstructure:"skip_extensions"`

	OllamaURL   string        `mapstructure:"ollama_url"`
	Credentials string        `mapstructure:"credentials"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`

	CacheDB string `mapstructure:"cache_db"`
	NoCache bool   `mapstructure:"no_cache"`
}

// DefaultSkipDirs mirrors the usual VCS and build directories nobody
// wants touched.
var DefaultSkipDirs = []string{
	".git", ".svn", ".hg", "__pycache__", "node_modules",
	"venv", ".venv", "dist", "build", "target",
}

// DefaultSkipExtensions are binary and media files excluded from
// discovery before the profile lookup even runs.
var DefaultSkipExtensions = []string{
	".pyc", ".pyo", ".so", ".dll", ".exe", ".bin", ".obj",
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".ico", ".svg",
	".mp3", ".mp4", ".avi", ".mov", ".wav",
	".zip", ".tar", ".gz", ".rar", ".7z",
	".pdf", ".doc", ".docx",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "ollama")
	v.SetDefault("model", "qwen2.5:1.5b")
	v.SetDefault("source_lang", "zh")
	v.SetDefault("target_lang", "en")
	v.SetDefault("translate_all", false)
	v.SetDefault("all_text", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("recursive", true)
	v.SetDefault("workers", 4)
	v.SetDefault("max_chunk_size", 5000)
	v.SetDefault("max_file_size", DefaultMaxFileSize)
	v.SetDefault("skip_dirs", DefaultSkipDirs)
	v.SetDefault("skip_extensions", DefaultSkipExtensions)
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("credentials", "")
	v.SetDefault("timeout", 120*time.Second)
	v.SetDefault("max_retries", 3)
	v.SetDefault("cache_db", DefaultCacheDB())
	v.SetDefault("no_cache", false)
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"backend":        "backend",
	"model":          "model",
	"source_lang":    "source-lang",
	"target_lang":    "target-lang",
	"translate_all":  "translate-all",
	"all_text":       "all-text",
	"dry_run":        "dry-run",
	"recursive":      "recursive",
	"workers":        "workers",
	"max_chunk_size": "max-chunk-size",
	"ollama_url":     "ollama-url",
	"credentials":    "credentials",
	"timeout":        "timeout",
	"max_retries":    "max-retries",
	"cache_db":       "cache-db",
	"no_cache":       "no-cache",
}

// Load merges defaults, the nearest config file above startDir (or
// configFile when given explicitly) and any changed flags. flags may be
// nil.
func Load(startDir, configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile == "" {
		configFile = findConfigFile(startDir)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case "ollama", "google", "echo":
	default:
		return fmt.Errorf("unknown backend %q (want ollama, google or echo)", c.Backend)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.TargetLang == "" {
		return fmt.Errorf("target language must not be empty")
	}
	return nil
}

// findConfigFile walks from startDir to the filesystem root looking for
// the nearest config file, matching how the tool is usually run from a
// subdirectory of the tree that holds the config.
func findConfigFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigName)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DefaultCacheDB returns the per-user translation memory location.
func DefaultCacheDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codetran.db"
	}
	return filepath.Join(home, ".codetran", "memory.db")
}
