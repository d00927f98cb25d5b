package whisper

import (
	"fmt"
	"time"

	"whisper-transcribe/internal/app/api/openai"
	"whisper-transcribe/internal/app/api/provider"
)

func init() {
	provider.RegisterProviderType(providerName, createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI provider from its settings block
func createOpenAIProvider(settings map[string]interface{}) (provider.TranscriptionProvider, error) {
	apiKey := provider.StringSetting(settings, "api_key")
	if apiKey == "" {
		apiKey = openai.APIKeyFromEnv()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider requires 'api_key' setting or OPENAI_API_KEY")
	}

	config := OpenAIProviderConfig{
		APIKey:   apiKey,
		BaseURL:  provider.StringSetting(settings, "base_url"),
		Language: provider.StringSetting(settings, "language"),
		Prompt:   provider.StringSetting(settings, "prompt"),
	}
	if temperature, ok := provider.FloatSetting(settings, "temperature"); ok {
		config.Temperature = float32(temperature)
	}
	if timeout, ok := provider.FloatSetting(settings, "timeout_sec"); ok {
		config.Timeout = time.Duration(timeout * float64(time.Second))
	}

	return NewRemoteTranscriber(openai.NewClient(config.APIKey, config.BaseURL), config), nil
}
