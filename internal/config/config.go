// Package config loads CLI configuration from flags, a .env file, FEISHU_*
// environment variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FEISHU_APP_ID.
const EnvPrefix = "FEISHU"

// Config holds all CLI configuration.
type Config struct {
	// Credentials
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`

	// Remote
	BaseURL       string        `mapstructure:"base_url"`
	Domain        string        `mapstructure:"domain"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`

	// Navigation
	FolderToken string `mapstructure:"folder_token"`
	RootName    string `mapstructure:"root_name"`
	DefaultMode string `mapstructure:"default_mode"`

	// Local files
	Bookmarks   string `mapstructure:"bookmarks"`
	HistoryFile string `mapstructure:"history_file"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Metrics endpoint; empty disables it.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Options control where configuration is read from.
type Options struct {
	ConfigFile string         // explicit config file; empty searches the user config dir
	EnvFile    string         // .env file; empty means ".env" in the working directory
	Flags      *pflag.FlagSet // flags named after keys with '-' for '_'
}

// Load reads configuration with defaults.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	changed := make(map[string]bool)
	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isKey(key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
			changed[key] = f.Changed
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	if err := applyEnvFile(v, opts.EnvFile, changed); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Bookmarks = expandHome(cfg.Bookmarks)
	cfg.HistoryFile = expandHome(cfg.HistoryFile)
	return &cfg, nil
}

var keys = []string{
	"app_id", "app_secret", "base_url", "domain", "timeout", "retry_attempts",
	"folder_token", "root_name", "default_mode", "bookmarks", "history_file",
	"log_level", "log_format", "metrics_addr",
}

func isKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	dir := Dir()
	v.SetDefault("app_id", "")
	v.SetDefault("app_secret", "")
	v.SetDefault("base_url", "https://open.feishu.cn/open-apis")
	v.SetDefault("domain", "")
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("folder_token", "")
	v.SetDefault("root_name", "")
	v.SetDefault("default_mode", "auto")
	v.SetDefault("bookmarks", filepath.Join(dir, "bookmarks.json"))
	v.SetDefault("history_file", filepath.Join(dir, "history"))
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_addr", "")
}

// Dir returns the per-user directory for config, bookmarks and history.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "feishukit")
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(Dir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// applyEnvFile loads FEISHU_* entries from a .env file. They override the
// process environment but not flags given on the command line.
func applyEnvFile(v *viper.Viper, path string, flagChanged map[string]bool) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	prefix := strings.ToLower(EnvPrefix) + "_"
	for _, raw := range ev.AllKeys() {
		key := strings.TrimPrefix(raw, prefix)
		if key == raw || !isKey(key) || flagChanged[key] {
			continue
		}
		v.Set(key, ev.Get(raw))
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// Validate checks the settings needed to talk to the API.
func (c *Config) Validate() error {
	if c.AppID == "" {
		return &ConfigError{Field: "app_id", Message: "required (set FEISHU_APP_ID)"}
	}
	if c.AppSecret == "" {
		return &ConfigError{Field: "app_secret", Message: "required (set FEISHU_APP_SECRET)"}
	}
	return c.ValidateLocal()
}

// ValidateLocal checks settings that do not involve credentials.
func (c *Config) ValidateLocal() error {
	switch c.DefaultMode {
	case "auto", "drive", "wiki":
	default:
		return &ConfigError{Field: "default_mode", Message: fmt.Sprintf("%q is not one of auto, drive, wiki", c.DefaultMode)}
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return &ConfigError{Field: "log_format", Message: fmt.Sprintf("%q is not one of console, json", c.LogFormat)}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Message: "must be positive"}
	}
	if c.RetryAttempts < 1 {
		return &ConfigError{Field: "retry_attempts", Message: "must be at least 1"}
	}
	return nil
}
