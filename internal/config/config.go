// Package config loads mentor settings from a config file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MENTOR_DB.
const EnvPrefix = "MENTOR"

// DirName is the per-project settings directory searched for config.yaml.
const DirName = ".mentor"

// Options controls where Load looks. Zero values use the process state.
type Options struct {
	// ConfigFile is an explicit config path (--config). It must exist.
	ConfigFile string
	// WorkDir is where the walk for .mentor/config.yaml and the .env file
	// start. Defaults to the current directory.
	WorkDir string
	// HomeDir overrides os.UserHomeDir.
	HomeDir string
	// UserConfigDir overrides $XDG_CONFIG_HOME and os.UserConfigDir.
	UserConfigDir string
	// SkipDotEnv disables .env loading.
	SkipDotEnv bool
	// Logger receives debug output about which files were used.
	Logger *slog.Logger
}

// Config is a loaded configuration. It is safe to share once loaded; Set is
// meant for applying flags before any reader starts.
type Config struct {
	v       *viper.Viper
	file    string
	dotenv  string
	flagged map[string]bool
}

// Load builds a Config.
//
// Precedence, highest first: flags applied with Set, MENTOR_* environment
// variables (including ones from .env), the config file, defaults.
// Config file lookup: opts.ConfigFile; .mentor/config.yaml in the work
// directory or any parent; $XDG_CONFIG_HOME/mentor/config.yaml (or the
// platform user config dir); ~/.mentor/config.yaml.
func Load(opts Options) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	c := &Config{v: viper.New(), flagged: make(map[string]bool)}

	if !opts.SkipDotEnv {
		envFile := filepath.Join(workDir, ".env")
		// godotenv.Load never overrides variables already in the environment.
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		} else {
			c.dotenv = envFile
			logger.Debug("loaded environment file", "path", envFile)
		}
	}

	c.v.SetConfigType("yaml")
	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()
	setDefaults(c.v)

	file, err := locateConfigFile(opts, workDir)
	if err != nil {
		return nil, err
	}
	if file != "" {
		c.v.SetConfigFile(file)
		if err := c.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
		c.file = file
		logger.Debug("loaded config", "path", file)
	} else {
		logger.Debug("no config.yaml found; using defaults and environment variables")
	}

	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "mentor.db")
	v.SetDefault("json", false)
	v.SetDefault("parse.currency", []string{"تومان", "Toman"})
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max-size-mb", 10)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("log.max-age-days", 28)
	v.SetDefault("watch.debounce", "500ms")
	v.SetDefault("hooks.dir", ".mentor/hooks")
	v.SetDefault("hooks.timeout", "10s")
	v.SetDefault("legacy.timezone", "Local")
}

func locateConfigFile(opts Options, workDir string) (string, error) {
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return "", fmt.Errorf("config file %s: %w", opts.ConfigFile, err)
		}
		return opts.ConfigFile, nil
	}

	// Walk up so commands work from subdirectories of a project.
	for dir := workDir; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, DirName, "config.yaml")
		if fileExists(candidate) {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	configDir := opts.UserConfigDir
	if configDir == "" {
		configDir = userConfigDir()
	}
	if configDir != "" {
		candidate := filepath.Join(configDir, "mentor", "config.yaml")
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	home := opts.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home != "" {
		candidate := filepath.Join(home, DirName, "config.yaml")
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// File is the config file that was read, or "".
func (c *Config) File() string { return c.file }

// DotEnvFile is the .env file that was loaded, or "".
func (c *Config) DotEnvFile() string { return c.dotenv }

// Set overrides key with a value that came from a command-line flag.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
	c.flagged[key] = true
}

func (c *Config) GetString(key string) string { return c.v.GetString(key) }

func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }

// DBPath is the database file to open.
func (c *Config) DBPath() string { return c.v.GetString("db") }

// JSON reports whether commands should print JSON.
func (c *Config) JSON() bool { return c.v.GetBool("json") }

// Currencies returns the accepted currency words. An environment value may
// list several separated by commas.
func (c *Config) Currencies() []string {
	var out []string
	for _, raw := range c.v.GetStringSlice("parse.currency") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// WatchDebounce is how long `parse --watch` waits for writes to settle.
func (c *Config) WatchDebounce() time.Duration {
	d := c.v.GetDuration("watch.debounce")
	if d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// HooksDir is the directory holding on_import, on_seed and on_delete.
// Relative paths are resolved by the caller.
func (c *Config) HooksDir() string { return c.v.GetString("hooks.dir") }

// HooksTimeout bounds a single hook run.
func (c *Config) HooksTimeout() time.Duration {
	d := c.v.GetDuration("hooks.timeout")
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// LegacyLocation is the zone timestamps of a database written by the
// original tool were recorded in.
func (c *Config) LegacyLocation() (*time.Location, error) {
	name := c.v.GetString("legacy.timezone")
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid legacy.timezone %q: %w", name, err)
	}
	return loc, nil
}

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault    Source = "default"
	SourceConfigFile Source = "config_file"
	SourceEnvVar     Source = "env_var"
	SourceFlag       Source = "flag"
)

// EnvVar is the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Source reports where the effective value of key came from.
func (c *Config) Source(key string) Source {
	if c.flagged[key] {
		return SourceFlag
	}
	if _, ok := os.LookupEnv(EnvVar(key)); ok {
		return SourceEnvVar
	}
	if c.v.InConfig(key) {
		return SourceConfigFile
	}
	return SourceDefault
}

// Setting is one effective key for display.
type Setting struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Source Source `json:"source"`
}

// Settings lists every known key in sorted order.
func (c *Config) Settings() []Setting {
	keys := c.v.AllKeys()
	sort.Strings(keys)
	out := make([]Setting, 0, len(keys))
	for _, k := range keys {
		out = append(out, Setting{Key: k, Value: c.v.Get(k), Source: c.Source(k)})
	}
	return out
}
