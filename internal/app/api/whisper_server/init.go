package whisper_server

import (
	"fmt"
	"os"
	"time"

	"whisper-transcribe/internal/app/api/provider"
)

func init() {
	provider.RegisterProviderType(providerName, createWhisperServerProvider)
}

func createWhisperServerProvider(settings map[string]interface{}) (provider.TranscriptionProvider, error) {
	baseURL := provider.StringSetting(settings, "base_url")
	if baseURL == "" {
		baseURL = os.Getenv("WHISPER_SERVER_URL")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("whisper_server provider requires 'base_url' setting")
	}

	config := WhisperServerConfig{
		BaseURL:        baseURL,
		InferencePath:  provider.StringSetting(settings, "inference_path"),
		LoadPath:       provider.StringSetting(settings, "load_path"),
		ModelsDir:      provider.StringSetting(settings, "models_dir"),
		ModelPath:      provider.StringSetting(settings, "model_path"),
		Language:       provider.StringSetting(settings, "language"),
		ResponseFormat: provider.StringSetting(settings, "response_format"),
		Translate:      provider.BoolSetting(settings, "translate"),
		NoTimestamps:   provider.BoolSetting(settings, "no_timestamps"),
	}
	if temperature, ok := provider.FloatSetting(settings, "temperature"); ok {
		config.Temperature = temperature
	}
	if timeout, ok := provider.FloatSetting(settings, "timeout_sec"); ok {
		config.Timeout = time.Duration(timeout * float64(time.Second))
	}
	if headers, ok := settings["custom_headers"].(map[string]interface{}); ok {
		config.CustomHeaders = make(map[string]string, len(headers))
		for k, v := range headers {
			if str, ok := v.(string); ok {
				config.CustomHeaders[k] = str
			}
		}
	}

	return NewWhisperServerProvider(config), nil
}
