package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "TWIG"

	ModeLibraries = "libraries"
	ModeDir       = "dir"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir       string        `mapstructure:"data_dir"`
	Mode          string        `mapstructure:"mode"`
	DirLibrary    string        `mapstructure:"dir_library"`
	Transport     string        `mapstructure:"transport"`
	HTTPAddr      string        `mapstructure:"http_addr"`
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	LogLevel      string        `mapstructure:"log_level"`
}

// New returns a viper instance with defaults and TWIG_* environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "")
	v.SetDefault("mode", ModeLibraries)
	v.SetDefault("dir_library", "local")
	v.SetDefault("transport", TransportStdio)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("watch", false)
	v.SetDefault("watch_debounce", 250*time.Millisecond)
	v.SetDefault("log_level", "info")
	return v
}

// ReadFile loads path, or .twig.yaml from the working directory when path is
// empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		v.AddConfigPath(cwd)
		v.SetConfigType("yaml")
		v.SetConfigName(".twig")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment. Variables that are
// already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load decodes v into a Config, fills the data directory default and
// validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLibraries, ModeDir:
	default:
		return fmt.Errorf("invalid mode: %s (must be %s or %s)", c.Mode, ModeLibraries, ModeDir)
	}

	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid transport: %s (must be %s or %s)", c.Transport, TransportStdio, TransportHTTP)
	}

	if c.Mode == ModeDir && c.DirLibrary == "" {
		return fmt.Errorf("dir_library is required in %s mode", ModeDir)
	}
	if c.Transport == TransportHTTP && c.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required for the %s transport", TransportHTTP)
	}
	if c.Watch && c.WatchDebounce <= 0 {
		return fmt.Errorf("watch_debounce must be positive, got %s", c.WatchDebounce)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured level, info when unset.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level: %s", s)
	}
	return lvl, nil
}

// DefaultDataDir is <platform data dir>/twig/prompts.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	base, err := platformDataDir(runtime.GOOS, os.Getenv, home)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "twig", "prompts"), nil
}

func platformDataDir(goos string, getenv func(string) string, home string) (string, error) {
	switch goos {
	case "windows":
		if d := getenv("APPDATA"); d != "" {
			return d, nil
		}
		if home != "" {
			return filepath.Join(home, "AppData", "Roaming"), nil
		}
	case "darwin", "ios":
		if home != "" {
			return filepath.Join(home, "Library", "Application Support"), nil
		}
	default:
		if d := getenv("XDG_DATA_HOME"); d != "" && filepath.IsAbs(d) {
			return d, nil
		}
		if home != "" {
			return filepath.Join(home, ".local", "share"), nil
		}
	}
	return "", fmt.Errorf("cannot determine data directory; set %s_DATA_DIR", EnvPrefix)
}
