package openai

import (
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// APIKeyFromEnv returns OPENAI_API_KEY, or an empty string.
func APIKeyFromEnv() string {
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

// NewClient builds an OpenAI client. An empty baseURL keeps the public
// endpoint; a non-empty one points at any OpenAI-compatible server.
func NewClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(config)
}
