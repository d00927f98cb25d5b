package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings are the run options of one process. Defaults come from
// DefaultSettings, environment variables override them and command line
// flags override the environment.
type Settings struct {
	Provider string        `validate:"required"`
	Model    string        `validate:"required"`
	Language string        `validate:"omitempty,max=16"`
	Format   string        `validate:"oneof=json text verbose"`
	Timeout  time.Duration `validate:"min=1s,max=2h"`

	ServerHost     string `validate:"required"`
	ServerPort     int    `validate:"min=1,max=65535"`
	UploadDir      string `validate:"required"`
	MaxUploadBytes int64  `validate:"min=1"`
}

// DefaultSettings returns settings before env and flags are applied. The
// provider stays empty until the providers config picks its default.
func DefaultSettings() Settings {
	return Settings{
		Model:          DefaultModel,
		Format:         DefaultFormat,
		Timeout:        DefaultCLITimeout,
		ServerHost:     DefaultHTTPHost,
		ServerPort:     DefaultHTTPPort,
		UploadDir:      DefaultUploadDir,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

// SettingsFromEnv applies TRANSCRIBE_* variables on top of the defaults.
func SettingsFromEnv() Settings {
	s := DefaultSettings()

	s.Provider = getEnvOrDefault("TRANSCRIBE_PROVIDER", s.Provider)
	s.Model = getEnvOrDefault("TRANSCRIBE_MODEL", s.Model)
	s.Language = getEnvOrDefault("TRANSCRIBE_LANGUAGE", s.Language)
	s.ServerHost = getEnvOrDefault("TRANSCRIBE_HOST", s.ServerHost)
	s.UploadDir = getEnvOrDefault("TRANSCRIBE_UPLOAD_DIR", s.UploadDir)

	if port, err := strconv.Atoi(getEnvOrDefault("HTTP_PORT", "")); err == nil {
		s.ServerPort = port
	}
	if mb, err := strconv.ParseInt(getEnvOrDefault("TRANSCRIBE_MAX_UPLOAD_MB", ""), 10, 64); err == nil {
		s.MaxUploadBytes = mb << 20
	}
	if timeout, err := time.ParseDuration(getEnvOrDefault("TRANSCRIBE_TIMEOUT", "")); err == nil {
		s.Timeout = timeout
	}

	return s
}

// Validate checks the settings against their tags.
func (s Settings) Validate() error {
	return ValidateStruct(s)
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
