package provider

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AudioFormat defines supported audio formats
type AudioFormat string

const (
	FormatWAV  AudioFormat = "wav"
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
	FormatOGG  AudioFormat = "ogg"
	FormatWEBM AudioFormat = "webm"
)

// ProviderType defines the type of transcription provider
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// DefaultModelName is the model loaded when none is requested.
const DefaultModelName = "base"

// ModelFileServes reports whether a single configured model file can stand
// in for the named model. Only the default name and a name matching the
// file's ggml-<name>.bin base qualify.
func ModelFileServes(modelPath, name string) bool {
	if name == "" || name == DefaultModelName {
		return true
	}
	return filepath.Base(modelPath) == "ggml-"+name+".bin"
}

// TranscriptionRequest represents a transcription request
type TranscriptionRequest struct {
	InputFilePath string `json:"input_file_path"`

	Language    string  `json:"language,omitempty"` // "" means auto-detect
	Prompt      string  `json:"prompt,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`

	// Provider-specific options
	ProviderOptions map[string]interface{} `json:"provider_options,omitempty"`
}

// TranscriptionResponse represents the response from a transcription provider
type TranscriptionResponse struct {
	Text string `json:"text"`

	Language   string        `json:"language,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Confidence *float64      `json:"confidence,omitempty"`

	Segments []TranscriptionSegment `json:"segments,omitempty"`

	Provider       string        `json:"provider,omitempty"`
	ModelUsed      string        `json:"model_used,omitempty"`
	ProcessingTime time.Duration `json:"processing_time,omitempty"`
}

// TranscriptionSegment represents a time-segmented piece of transcription
type TranscriptionSegment struct {
	ID           int     `json:"id"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"` // seconds
	End          float64 `json:"end"`   // seconds
	AvgLogprob   float64 `json:"avg_logprob,omitempty"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// ProviderInfo contains metadata about a transcription provider
type ProviderInfo struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        ProviderType `json:"type"`

	SupportedFormats []AudioFormat `json:"supported_formats"`
	MaxFileSizeMB    int           `json:"max_file_size_mb,omitempty"` // 0 means no limit

	RequiresInternet bool `json:"requires_internet"`
	RequiresAPIKey   bool `json:"requires_api_key"`
	RequiresBinary   bool `json:"requires_binary"`

	DefaultModel    string   `json:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty"`
}

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Provider  string `json:"provider"`
	Retryable bool   `json:"retryable"`
	Cause     error  `json:"-"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// NewError builds a TranscriptionError.
func NewError(providerName, code, message string, retryable bool, cause error) *TranscriptionError {
	return &TranscriptionError{
		Code:      code,
		Message:   message,
		Provider:  providerName,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ErrorCode classifies err for metrics.
func ErrorCode(err error) string {
	var te *TranscriptionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &te):
		return te.Code
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}

// GetAudioFormatFromFilename extracts audio format from filename
func GetAudioFormatFromFilename(filename string) AudioFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch AudioFormat(ext) {
	case FormatWAV, FormatMP3, FormatM4A, FormatFLAC, FormatOGG, FormatWEBM:
		return AudioFormat(ext)
	default:
		return ""
	}
}

// ModelSlot tracks the loaded model of a provider. The zero value is empty.
type ModelSlot struct {
	mu   sync.RWMutex
	name string
}

// Get returns the loaded model or "".
func (s *ModelSlot) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Set records name as loaded.
func (s *ModelSlot) Set(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}
