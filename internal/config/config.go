// Package config resolves kb settings from the config file, KB_* environment variables and
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDir = "KB_CONFIG_DIR"
	envPrefix    = "KB"
)

// Keys.
const (
	KeyDir            = "dir"
	KeyFormat         = "format"
	KeyPretty         = "pretty"
	KeyHistoryMaxSize = "history.max_size"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyPreviewStyle   = "preview.style"
	KeyPreviewWidth   = "preview.width"
)

type Config struct {
	Dir     string        `yaml:"dir" json:"dir"`
	Format  string        `yaml:"format" json:"format"`
	Pretty  bool          `yaml:"pretty" json:"pretty"`
	History HistoryConfig `yaml:"history" json:"history"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Preview PreviewConfig `yaml:"preview" json:"preview"`

	// File is the config file that was read, if any.
	File string `yaml:"-" json:"file,omitempty"`
}

type HistoryConfig struct {
	MaxSize int `yaml:"max_size" json:"maxSize"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	// File receives log lines while the tree view owns the terminal. Empty drops them.
	File string `yaml:"file" json:"file,omitempty"`
}

type PreviewConfig struct {
	Style string `yaml:"style" json:"style"`
	Width int    `yaml:"width" json:"width"`
}

// Dir returns the directory holding config.yaml.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(envConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kb"), nil
}

// DefaultPath is config.yaml inside Dir.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".kb")
	}
	return filepath.Join(home, ".local", "share", "kb")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDir, defaultDataDir())
	v.SetDefault(KeyFormat, "json")
	v.SetDefault(KeyPretty, isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
	v.SetDefault(KeyHistoryMaxSize, 100)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyPreviewStyle, "dark")
	v.SetDefault(KeyPreviewWidth, 80)
}

// Load reads cfgFile (or the default config path when empty). A missing default file is not an
// error; a missing explicit file is.
func Load(cfgFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Dir:     v.GetString(KeyDir),
		Format:  strings.ToLower(strings.TrimSpace(v.GetString(KeyFormat))),
		Pretty:  v.GetBool(KeyPretty),
		History: HistoryConfig{MaxSize: v.GetInt(KeyHistoryMaxSize)},
		Log:     LogConfig{Level: v.GetString(KeyLogLevel), File: v.GetString(KeyLogFile)},
		Preview: PreviewConfig{Style: v.GetString(KeyPreviewStyle), Width: v.GetInt(KeyPreviewWidth)},
		File:    v.ConfigFileUsed(),
	}
}

func (c *Config) Validate() error {
	switch c.Format {
	case "json", "edn", "yaml":
	default:
		return fmt.Errorf("invalid %s: %q (expected json|edn|yaml)", KeyFormat, c.Format)
	}
	if c.History.MaxSize <= 0 {
		return fmt.Errorf("invalid %s: %d (must be > 0)", KeyHistoryMaxSize, c.History.MaxSize)
	}
	if c.Preview.Width <= 0 {
		return fmt.Errorf("invalid %s: %d (must be > 0)", KeyPreviewWidth, c.Preview.Width)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// WriteDefault writes a config file with the built-in defaults, unless one already exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
