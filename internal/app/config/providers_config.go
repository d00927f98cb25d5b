package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	envconfig "whisper-transcribe/internal/config"
	apperrors "whisper-transcribe/internal/app/errors"
)

// ConfigPathEnv overrides the default providers file location.
const ConfigPathEnv = "TRANSCRIBE_PROVIDERS_CONFIG"

// KnownProviderTypes are the backend types this binary can build.
var KnownProviderTypes = []string{"gemini", "openai", "whisper_cpp", "whisper_server"}

// ProvidersConfig represents the overall configuration for all providers
type ProvidersConfig struct {
	DefaultProvider string                    `yaml:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents configuration for a single provider
type ProviderConfig struct {
	Type        string                 `yaml:"type"`
	Enabled     bool                   `yaml:"enabled"`
	Settings    map[string]interface{} `yaml:"settings,omitempty"`
	Performance PerformanceConfig      `yaml:"performance,omitempty"`
}

// PerformanceConfig represents performance settings for a provider
type PerformanceConfig struct {
	TimeoutSec int `yaml:"timeout_sec,omitempty"`
}

// LoadProvidersConfig loads provider configuration from a YAML file
func LoadProvidersConfig(configPath string) (*ProvidersConfig, error) {
	configPath = os.ExpandEnv(configPath)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, apperrors.WithDetail(apperrors.ErrMissingConfig, configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseProvidersConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return config, nil
}

// ParseProvidersConfig parses, expands, defaults and validates YAML content.
func ParseProvidersConfig(data []byte) (*ProvidersConfig, error) {
	var config ProvidersConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.finalize()
	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	return &config, nil
}

// SaveProvidersConfig saves provider configuration to a YAML file
func SaveProvidersConfig(config *ProvidersConfig, configPath string) error {
	configPath = os.ExpandEnv(configPath)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *ProvidersConfig) finalize() {
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	c.expandEnvironmentVariables()
	c.setDefaults()
}

// expandEnvironmentVariables replaces ${VAR} references in settings values
func (c *ProvidersConfig) expandEnvironmentVariables() {
	for _, provider := range c.Providers {
		for key, value := range provider.Settings {
			provider.Settings[key] = expandValue(value)
		}
	}
}

func expandValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if strings.Contains(v, "${") {
			return os.Expand(v, os.Getenv)
		}
		return v
	case map[string]interface{}:
		for key, nested := range v {
			v[key] = expandValue(nested)
		}
		return v
	default:
		return v
	}
}

// setDefaults sets default values for the configuration
func (c *ProvidersConfig) setDefaults() {
	if c.DefaultProvider == "" {
		if p, ok := c.Providers[envconfig.DefaultProvider]; ok && p.Enabled {
			c.DefaultProvider = envconfig.DefaultProvider
		} else if enabled := c.EnabledProviders(); len(enabled) > 0 {
			c.DefaultProvider = enabled[0]
		}
	}

	for name, provider := range c.Providers {
		if provider.Type == "" {
			provider.Type = name
		}
		if provider.Performance.TimeoutSec == 0 {
			provider.Performance.TimeoutSec = int(envconfig.GetProviderDefaults(provider.Type).Timeout.Seconds())
		}
		if provider.Settings == nil {
			provider.Settings = map[string]interface{}{}
		}
		c.Providers[name] = provider
	}
}

// Validate validates the configuration
func (c *ProvidersConfig) Validate() error {
	if len(c.EnabledProviders()) == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}

	if c.DefaultProvider != "" {
		provider, exists := c.Providers[c.DefaultProvider]
		if !exists {
			return fmt.Errorf("default provider '%s' does not exist", c.DefaultProvider)
		}
		if !provider.Enabled {
			return fmt.Errorf("default provider '%s' is not enabled", c.DefaultProvider)
		}
	}

	for _, name := range c.Names() {
		provider := c.Providers[name]
		if !lo.Contains(KnownProviderTypes, provider.Type) {
			return fmt.Errorf("invalid provider type '%s' for provider '%s'", provider.Type, name)
		}
		if provider.Performance.TimeoutSec < 0 {
			return fmt.Errorf("provider '%s': timeout_sec cannot be negative", name)
		}
	}

	return nil
}

// Names returns all provider names, sorted
func (c *ProvidersConfig) Names() []string {
	names := lo.Keys(c.Providers)
	sort.Strings(names)
	return names
}

// EnabledProviders returns the enabled provider names, sorted
func (c *ProvidersConfig) EnabledProviders() []string {
	return lo.Filter(c.Names(), func(name string, _ int) bool {
		return c.Providers[name].Enabled
	})
}

// ProviderSettings returns the settings handed to the provider creator. The
// performance timeout is merged in unless the settings carry their own.
func (c *ProvidersConfig) ProviderSettings(name string) map[string]interface{} {
	p := c.Providers[name]
	settings := make(map[string]interface{}, len(p.Settings)+1)
	for k, v := range p.Settings {
		settings[k] = v
	}
	if _, ok := settings["timeout_sec"]; !ok && p.Performance.TimeoutSec > 0 {
		settings["timeout_sec"] = p.Performance.TimeoutSec
	}
	return settings
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "providers.yaml"
	}
	return filepath.Join(home, ".whisper-transcribe", "providers.yaml")
}

// Load resolves the providers config. An explicit path must exist. Without
// one, the env/home location is tried and, failing that, the config is
// derived from environment variables. The returned string names the source.
func Load(explicitPath string) (*ProvidersConfig, string, error) {
	if explicitPath != "" {
		config, err := LoadProvidersConfig(explicitPath)
		return config, explicitPath, err
	}

	path := GetDefaultConfigPath()
	if _, err := os.Stat(os.ExpandEnv(path)); err == nil {
		config, err := LoadProvidersConfig(path)
		return config, path, err
	}

	config, err := FromEnvironment()
	return config, "environment", err
}

// FromEnvironment builds a config from the well known variables. whisper_cpp
// is always present so the default backend has somewhere to fail loudly.
func FromEnvironment() (*ProvidersConfig, error) {
	config := &ProvidersConfig{Providers: map[string]ProviderConfig{}}

	binary := os.Getenv("WHISPER_CPP_BINARY")
	if binary == "" {
		binary = "whisper-cli"
	}
	modelsDir := os.Getenv("WHISPER_CPP_MODELS_DIR")
	if modelsDir == "" {
		modelsDir = "models"
	}
	config.Providers["whisper_cpp"] = ProviderConfig{
		Type:    "whisper_cpp",
		Enabled: true,
		Settings: map[string]interface{}{
			"binary_path": binary,
			"models_dir":  modelsDir,
		},
	}

	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		config.Providers["openai"] = ProviderConfig{
			Type:     "openai",
			Enabled:  true,
			Settings: map[string]interface{}{"api_key": key},
		}
	}
	if url := strings.TrimSpace(os.Getenv("WHISPER_SERVER_URL")); url != "" {
		if err := envconfig.ValidateURL(url, "WHISPER_SERVER_URL"); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
		}
		config.Providers["whisper_server"] = ProviderConfig{
			Type:     "whisper_server",
			Enabled:  true,
			Settings: map[string]interface{}{"base_url": url},
		}
	}
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		config.Providers["gemini"] = ProviderConfig{
			Type:     "gemini",
			Enabled:  true,
			Settings: map[string]interface{}{"api_key": key},
		}
	}

	config.finalize()
	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	return config, nil
}

// CreateDefaultConfig creates a starter configuration
func CreateDefaultConfig() *ProvidersConfig {
	return &ProvidersConfig{
		DefaultProvider: "whisper_cpp",
		Providers: map[string]ProviderConfig{
			"whisper_cpp": {
				Type:    "whisper_cpp",
				Enabled: true,
				Settings: map[string]interface{}{
					"binary_path": "/usr/local/bin/whisper-cli",
					"models_dir":  "${HOME}/.whisper-transcribe/models",
					"language":    "auto",
				},
				Performance: PerformanceConfig{TimeoutSec: 300},
			},
			"openai": {
				Type:    "openai",
				Enabled: false,
				Settings: map[string]interface{}{
					"api_key": "${OPENAI_API_KEY}",
				},
				Performance: PerformanceConfig{TimeoutSec: 60},
			},
			"whisper_server": {
				Type:    "whisper_server",
				Enabled: false,
				Settings: map[string]interface{}{
					"base_url": "http://localhost:8080",
				},
				Performance: PerformanceConfig{TimeoutSec: 120},
			},
			"gemini": {
				Type:    "gemini",
				Enabled: false,
				Settings: map[string]interface{}{
					"api_key": "${GEMINI_API_KEY}",
					"model":   "gemini-2.5-flash",
				},
				Performance: PerformanceConfig{TimeoutSec: 120},
			},
		},
	}
}
