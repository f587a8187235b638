// Package config loads inventory settings. Values are layered, lowest
// precedence first: built-in defaults, inventory.yaml, INVENTORY_*
// environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DatabaseName is the fixed logical name of the item store.
const DatabaseName = "item_database"

// Config is the complete application configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Server   Server   `mapstructure:"server"`
	Auth     Auth     `mapstructure:"auth"`
	Log      Log      `mapstructure:"log"`
}

// Database configures the SQLite store.
type Database struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Auth configures bearer-token access to write endpoints. Auth is off when
// PasswordHash is empty.
type Auth struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	PasswordHash string        `mapstructure:"password_hash"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
}

// Enabled reports whether write endpoints require a token.
func (a Auth) Enabled() bool {
	return a.PasswordHash != ""
}

// Log configures the default slog logger.
type Log struct {
	Level string `mapstructure:"level"`
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Dir returns the per-user directory holding the config file and, by
// default, the database.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "inventory"), nil
}

// DefaultPath returns the default location of inventory.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "inventory.yaml"), nil
}

// Defaults returns the built-in value of every key.
func Defaults() map[string]any {
	dbPath := DatabaseName + ".db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, DatabaseName+".db")
	}
	return map[string]any{
		"database.path":         dbPath,
		"database.busy_timeout": 5 * time.Second,
		"server.addr":           ":8080",
		"auth.jwt_secret":       "",
		"auth.password_hash":    "",
		"auth.token_ttl":        24 * time.Hour,
		"auth.bcrypt_cost":      12,
		"log.level":             "info",
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":        "database.path",
	"addr":      "server.addr",
	"log-level": "log.level",
}

// Load reads the configuration. An explicit file must exist; otherwise
// inventory.yaml is looked up in the user config directory and the working
// directory and skipped if absent. flags may be nil.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("inventory")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("inventory")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks values that would otherwise fail later and obscurely.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Database.BusyTimeout < 0 {
		return errors.New("database.busy_timeout must not be negative")
	}
	if c.Auth.Enabled() {
		if len(c.Auth.JWTSecret) < 32 {
			return errors.New("auth.jwt_secret must be at least 32 characters when auth is enabled")
		}
		if c.Auth.TokenTTL <= 0 {
			return errors.New("auth.token_ttl must be positive")
		}
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 14, got %d", c.Auth.BcryptCost)
	}
	return nil
}

// Write stores c as YAML at path, creating the directory if needed. The
// file may hold secrets, so it is written with 0600.
func Write(path string, c Config) error {
	doc := map[string]any{
		"database": map[string]any{
			"path":         c.Database.Path,
			"busy_timeout": c.Database.BusyTimeout.String(),
		},
		"server": map[string]any{
			"addr": c.Server.Addr,
		},
		"auth": map[string]any{
			"jwt_secret":    c.Auth.JWTSecret,
			"password_hash": c.Auth.PasswordHash,
			"token_ttl":     c.Auth.TokenTTL.String(),
			"bcrypt_cost":   c.Auth.BcryptCost,
		},
		"log": map[string]any{
			"level": c.Log.Level,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o600)
}
