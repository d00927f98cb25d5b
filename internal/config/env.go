package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// envPaths are tried in order; the first one that exists is loaded.
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
}

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI string
	Gemini string
}

// LoadEnv loads environment variables from the first .env file found.
// A missing file is fine since the variables might be set system-wide.
// Variables already in the environment are never overridden.
func LoadEnv(logger *zap.Logger) (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		logger.Debug("loaded environment variables", zap.String("path", envPath))
		return envPath, nil
	}
	return "", nil
}

// GetAPIKeys retrieves and validates API keys from environment variables.
// Empty keys are allowed; a malformed key is an error.
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OPENAI_API_KEY"); err != nil {
			return nil, err
		}
	}
	if apiKeys.Gemini != "" {
		if err := ValidateAPIKey(apiKeys.Gemini, "GEMINI_API_KEY"); err != nil {
			return nil, err
		}
	}

	return apiKeys, nil
}

// Available names the backends that have a key configured.
func (k *APIKeys) Available() []string {
	var available []string
	if k.OpenAI != "" {
		available = append(available, "openai")
	}
	if k.Gemini != "" {
		available = append(available, "gemini")
	}
	return available
}

// InitializeConfig loads the environment and validates API keys.
func InitializeConfig(logger *zap.Logger) (*APIKeys, error) {
	if _, err := LoadEnv(logger); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	logger.Debug("api keys", zap.Strings("available", apiKeys.Available()))
	return apiKeys, nil
}
