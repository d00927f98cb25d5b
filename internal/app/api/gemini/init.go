package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"whisper-transcribe/internal/app/api/provider"
)

func init() {
	provider.RegisterProviderType(providerName, createGeminiProvider)
}

func createGeminiProvider(settings map[string]interface{}) (provider.TranscriptionProvider, error) {
	apiKey := provider.StringSetting(settings, "api_key")
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires 'api_key' setting or GEMINI_API_KEY")
	}

	config := GeminiProviderConfig{
		APIKey:       apiKey,
		BaseURL:      provider.StringSetting(settings, "base_url"),
		DefaultModel: provider.StringSetting(settings, "model"),
		Language:     provider.StringSetting(settings, "language"),
	}
	if temperature, ok := provider.FloatSetting(settings, "temperature"); ok {
		config.Temperature = float32(temperature)
	}
	if timeout, ok := provider.FloatSetting(settings, "timeout_sec"); ok {
		config.Timeout = time.Duration(timeout * float64(time.Second))
	}

	gt, err := NewGeminiTranscriber(context.Background(), config)
	if err != nil {
		return nil, err
	}
	return gt, nil
}
