package whisper_cpp

import (
	"fmt"
	"time"

	"whisper-transcribe/internal/app/api/provider"
)

func init() {
	provider.RegisterProviderType(providerName, createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp provider from its settings block
func createWhisperCppProvider(settings map[string]interface{}) (provider.TranscriptionProvider, error) {
	binaryPath := provider.StringSetting(settings, "binary_path")
	if binaryPath == "" {
		return nil, fmt.Errorf("whisper_cpp provider requires 'binary_path' setting")
	}

	config := LocalProviderConfig{
		BinaryPath: binaryPath,
		ModelsDir:  provider.StringSetting(settings, "models_dir"),
		ModelPath:  provider.StringSetting(settings, "model_path"),
		Language:   provider.StringSetting(settings, "language"),
		Prompt:     provider.StringSetting(settings, "prompt"),
		TempDir:    provider.StringSetting(settings, "temp_dir"),
	}
	if config.ModelsDir == "" && config.ModelPath == "" {
		return nil, fmt.Errorf("whisper_cpp provider requires 'models_dir' or 'model_path' setting")
	}
	if threads, ok := provider.IntSetting(settings, "threads"); ok {
		config.Threads = threads
	}
	if timeout, ok := provider.FloatSetting(settings, "timeout_sec"); ok {
		config.Timeout = time.Duration(timeout * float64(time.Second))
	}

	return NewLocalTranscriber(config), nil
}
