package config

import "time"

// Provider default configuration constants
const (
	DefaultWhisperCppTimeout    = 300 * time.Second
	DefaultOpenAITimeout        = 60 * time.Second
	DefaultWhisperServerTimeout = 120 * time.Second
	DefaultGeminiTimeout        = 120 * time.Second

	// CLI defaults
	DefaultProvider     = "whisper_cpp"
	DefaultModel        = "base"
	DefaultFormat       = "json"
	DefaultCLITimeout   = 10 * time.Minute
	DefaultWhisperModel = "ggml-base.bin"

	// Server defaults
	DefaultHTTPHost       = "0.0.0.0"
	DefaultHTTPPort       = 8080
	DefaultUploadDir      = "uploads"
	DefaultMaxUploadBytes = 10 << 20
)

// ProviderDefaults holds the default configuration for a provider type
type ProviderDefaults struct {
	Timeout time.Duration
}

// GetProviderDefaults returns default configuration for a given provider type
func GetProviderDefaults(providerType string) ProviderDefaults {
	switch providerType {
	case "whisper_cpp":
		return ProviderDefaults{Timeout: DefaultWhisperCppTimeout}
	case "openai":
		return ProviderDefaults{Timeout: DefaultOpenAITimeout}
	case "whisper_server":
		return ProviderDefaults{Timeout: DefaultWhisperServerTimeout}
	case "gemini":
		return ProviderDefaults{Timeout: DefaultGeminiTimeout}
	default:
		return ProviderDefaults{Timeout: 60 * time.Second}
	}
}
