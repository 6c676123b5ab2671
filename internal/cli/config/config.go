package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/logging"
)

// DefaultManifest is the manifest path used when none is configured
const DefaultManifest = "harmony.types.yml"

// Config represents the harmony tool configuration
type Config struct {
	Logging      LoggingConfig      `mapstructure:"logging"`
	Manifest     ManifestConfig     `mapstructure:"manifest"`
	Registration RegistrationConfig `mapstructure:"registration"`
}

// LoggingConfig configures the logger behind the log capability
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ManifestConfig locates the type manifest
type ManifestConfig struct {
	Path string `mapstructure:"path"`
}

// RegistrationConfig holds defaults for generated registrations
type RegistrationConfig struct {
	DefaultModule string `mapstructure:"default_module"`
}

// Load loads the configuration from harmony.yml or harmony.yaml in the
// working directory. HARMONY_* environment variables override both.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration from dir
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", condition.LevelInfo.String())
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.name", "harmony")
	v.SetDefault("logging.environment", "")
	v.SetDefault("manifest.path", DefaultManifest)
	v.SetDefault("registration.default_module", "app")

	v.SetConfigName("harmony")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("HARMONY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Logger builds the condition logger described by the logging section
func (c *Config) Logger(version string) (*logging.ZapLogger, error) {
	return logging.New(logging.Config{
		Name:        c.Logging.Name,
		Environment: c.Logging.Environment,
		Version:     version,
		Level:       c.Logging.Level,
		Development: c.Logging.Development,
	})
}

// ManifestPath resolves the manifest path against dir
func (c *Config) ManifestPath(dir string) string {
	if filepath.IsAbs(c.Manifest.Path) {
		return c.Manifest.Path
	}
	return filepath.Join(dir, c.Manifest.Path)
}

// FindRoot walks up from the working directory looking for harmony.yml
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range []string{"harmony.yml", "harmony.yaml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no harmony.yml found")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if _, err := condition.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Manifest.Path == "" {
		return fmt.Errorf("manifest.path must not be empty")
	}
	return nil
}
