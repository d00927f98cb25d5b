package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/audio"
	apperrors "whisper-transcribe/internal/app/errors"
)

const (
	providerName = "gemini"

	DefaultModel = "gemini-2.5-flash"

	// inline request payloads are capped at 20 MB
	maxInlineBytes = 20 << 20

	transcribeInstruction = "Generate a verbatim transcript of the speech in this audio. " +
		"Return only the transcript text with no commentary, labels or timestamps. " +
		"If there is no speech, return an empty response."
)

// mimeTypes lists the containers Gemini accepts inline. Anything else is
// converted to 16 kHz WAV first.
var mimeTypes = map[provider.AudioFormat]string{
	provider.FormatWAV:  "audio/wav",
	provider.FormatMP3:  "audio/mp3",
	provider.FormatFLAC: "audio/flac",
	provider.FormatOGG:  "audio/ogg",
}

// GeminiProviderConfig represents configuration for the Gemini API provider
type GeminiProviderConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	DefaultModel string        `yaml:"model"`
	Language     string        `yaml:"language"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
}

type prepareFunc func(ctx context.Context, inputFilePath, outputDir string) (string, bool, error)

// GeminiTranscriber transcribes audio by prompting a Gemini model with the
// audio bytes inline.
type GeminiTranscriber struct {
	client  *genai.Client
	config  GeminiProviderConfig
	model   provider.ModelSlot
	prepare prepareFunc
	logger  *zap.Logger
}

// NewGeminiTranscriber creates the provider and its API client. No request
// is made until LoadModel or a transcription.
func NewGeminiTranscriber(ctx context.Context, config GeminiProviderConfig) (*GeminiTranscriber, error) {
	if config.DefaultModel == "" {
		config.DefaultModel = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiTranscriber{
		client:  client,
		config:  config,
		prepare: audio.EnsureWav16k,
		logger:  zap.L().Named(providerName),
	}, nil
}

// ModelFor maps whisper model sizes to the configured Gemini model.
func (gt *GeminiTranscriber) ModelFor(name string) string {
	switch strings.ToLower(name) {
	case "", "tiny", "tiny.en", "base", "base.en", "small", "small.en",
		"medium", "medium.en", "large", "large-v1", "large-v2", "large-v3", "turbo":
		return gt.config.DefaultModel
	default:
		return name
	}
}

// LoadModel selects the Gemini model to prompt.
func (gt *GeminiTranscriber) LoadModel(ctx context.Context, name string) error {
	if gt.config.APIKey == "" {
		return apperrors.Wrap(apperrors.ErrInvalidAPIKey, "gemini provider requires an API key")
	}
	model := gt.ModelFor(name)
	gt.model.Set(model)
	gt.logger.Debug("model selected", zap.String("requested", name), zap.String("model", model))
	return nil
}

func (gt *GeminiTranscriber) LoadedModel() string {
	return gt.model.Get()
}

// Transcript implements the basic transcription interface
func (gt *GeminiTranscriber) Transcript(inputFilePath string) (string, error) {
	resp, err := gt.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: inputFilePath})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// TranscriptWithOptions sends one audio file with a transcription instruction.
func (gt *GeminiTranscriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	model := gt.model.Get()
	if model == "" {
		return nil, apperrors.Wrap(apperrors.ErrModelNotLoaded, providerName)
	}
	if err := audio.ValidateInput(request.InputFilePath); err != nil {
		return nil, provider.NewError(providerName, "file_not_found", err.Error(), false, err)
	}

	if gt.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gt.config.Timeout)
		defer cancel()
	}

	path := request.InputFilePath
	mimeType, ok := mimeTypes[provider.GetAudioFormatFromFilename(path)]
	if !ok {
		wavPath, converted, err := gt.prepare(ctx, path, os.TempDir())
		if err != nil {
			return nil, provider.NewError(providerName, "audio_conversion_error",
				fmt.Sprintf("error converting input file: %v", err), false, err)
		}
		if converted {
			defer os.Remove(wavPath)
		}
		path, mimeType = wavPath, "audio/wav"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, provider.NewError(providerName, "file_read_failed", err.Error(), false, err)
	}
	if len(data) > maxInlineBytes {
		return nil, provider.NewError(providerName, "file_too_large",
			fmt.Sprintf("audio is %d bytes, inline limit is %d", len(data), maxInlineBytes), false, nil)
	}

	instruction := transcribeInstruction
	language := gt.config.Language
	if request.Language != "" && request.Language != "auto" {
		language = request.Language
	}
	if language != "" {
		instruction += " The spoken language is " + language + "."
	}
	if request.Prompt != "" {
		instruction += " Context: " + request.Prompt
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	temperature := gt.config.Temperature
	if request.Temperature > 0 {
		temperature = request.Temperature
	}

	resp, err := gt.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, provider.NewError(providerName, "timeout",
				fmt.Sprintf("transcription aborted: %v", ctxErr), true, ctxErr)
		}
		return nil, provider.NewError(providerName, "api_error",
			fmt.Sprintf("generateContent failed: %v", err), true, err)
	}

	return &provider.TranscriptionResponse{
		Text:           strings.TrimSpace(resp.Text()),
		Language:       language,
		Provider:       providerName,
		ModelUsed:      model,
		ProcessingTime: time.Since(startTime),
	}, nil
}

// GetProviderInfo returns metadata about the Gemini provider
func (gt *GeminiTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Google Gemini",
		Type:        provider.ProviderTypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatM4A,
			provider.FormatWEBM,
		},
		MaxFileSizeMB:    20,
		RequiresInternet: true,
		RequiresAPIKey:   true,
		DefaultModel:     gt.config.DefaultModel,
		AvailableModels:  []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"},
	}
}

// ValidateConfiguration validates the provider configuration
func (gt *GeminiTranscriber) ValidateConfiguration() error {
	if gt.config.APIKey == "" {
		return fmt.Errorf("gemini provider requires 'api_key' setting or GEMINI_API_KEY")
	}
	if gt.config.Temperature < 0 || gt.config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", gt.config.Temperature)
	}
	return nil
}

// HealthCheck fetches the model metadata to confirm the key works
func (gt *GeminiTranscriber) HealthCheck(ctx context.Context) error {
	if err := gt.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := gt.client.Models.Get(ctx, gt.config.DefaultModel, nil); err != nil {
		return fmt.Errorf("gemini API not reachable: %w", err)
	}
	return nil
}
