package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/audio"
	apperrors "whisper-transcribe/internal/app/errors"
)

const providerName = "openai"

// whisperSizes are the open model names the hosted API serves as whisper-1.
var whisperSizes = map[string]bool{
	"tiny": true, "tiny.en": true,
	"base": true, "base.en": true,
	"small": true, "small.en": true,
	"medium": true, "medium.en": true,
	"large": true, "large-v1": true, "large-v2": true, "large-v3": true,
	"turbo": true, "large-v3-turbo": true,
}

// OpenAIProviderConfig represents configuration for the OpenAI transcription API
type OpenAIProviderConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Language    string        `yaml:"language"`
	Prompt      string        `yaml:"prompt"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	config OpenAIProviderConfig
	model  provider.ModelSlot
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, config OpenAIProviderConfig) *RemoteTranscriber {
	return &RemoteTranscriber{
		client: client,
		config: config,
		logger: zap.L().Named(providerName),
	}
}

// APIModelFor maps a whisper model size to the hosted model id. Any other
// name is sent as-is so newer API models can be selected directly.
func APIModelFor(name string) string {
	if name == "" || whisperSizes[strings.ToLower(name)] {
		return openai.Whisper1
	}
	return name
}

// LoadModel selects the hosted model. The weights live server side, so this
// only records which model id requests will use.
func (rt *RemoteTranscriber) LoadModel(ctx context.Context, name string) error {
	if rt.config.APIKey == "" {
		return apperrors.Wrap(apperrors.ErrInvalidAPIKey, "openai provider requires an API key")
	}
	model := APIModelFor(name)
	rt.model.Set(model)
	rt.logger.Debug("model selected", zap.String("requested", name), zap.String("model", model))
	return nil
}

func (rt *RemoteTranscriber) LoadedModel() string {
	return rt.model.Get()
}

// Transcript uses the OpenAI API for remote transcription.
func (rt *RemoteTranscriber) Transcript(inputFilePath string) (string, error) {
	resp, err := rt.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: inputFilePath})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// TranscriptWithOptions uploads one file and asks for verbose_json so the
// detected language, duration and segments come back with the text.
func (rt *RemoteTranscriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	model := rt.model.Get()
	if model == "" {
		return nil, apperrors.Wrap(apperrors.ErrModelNotLoaded, providerName)
	}
	if err := audio.ValidateInput(request.InputFilePath); err != nil {
		return nil, provider.NewError(providerName, "file_not_found", err.Error(), false, err)
	}

	if rt.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.config.Timeout)
		defer cancel()
	}

	req := openai.AudioRequest{
		Model:       model,
		FilePath:    request.InputFilePath,
		Prompt:      rt.config.Prompt,
		Temperature: rt.config.Temperature,
		Language:    rt.config.Language,
		Format:      openai.AudioResponseFormatVerboseJSON,
	}
	if request.Language != "" && request.Language != "auto" {
		req.Language = request.Language
	}
	if request.Prompt != "" {
		req.Prompt = request.Prompt
	}
	if request.Temperature > 0 {
		req.Temperature = request.Temperature
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, rt.classify(ctx, err)
	}

	response := &provider.TranscriptionResponse{
		Text:           strings.TrimSpace(resp.Text),
		Language:       resp.Language,
		Duration:       time.Duration(resp.Duration * float64(time.Second)),
		Provider:       providerName,
		ModelUsed:      model,
		ProcessingTime: time.Since(startTime),
	}
	for _, seg := range resp.Segments {
		response.Segments = append(response.Segments, provider.TranscriptionSegment{
			ID:           seg.ID,
			Text:         seg.Text,
			Start:        seg.Start,
			End:          seg.End,
			AvgLogprob:   seg.AvgLogprob,
			NoSpeechProb: seg.NoSpeechProb,
		})
	}

	return response, nil
}

func (rt *RemoteTranscriber) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return provider.NewError(providerName, "timeout", fmt.Sprintf("transcription aborted: %v", ctxErr), true, ctxErr)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := "api_error"
		retryable := apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			code = "auth_error"
		case 429:
			code = "rate_limited"
		}
		return provider.NewError(providerName, code,
			fmt.Sprintf("createTranscription failed (%d): %s", apiErr.HTTPStatusCode, apiErr.Message), retryable, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return provider.NewError(providerName, "api_error",
			fmt.Sprintf("createTranscription failed (%d): %v", reqErr.HTTPStatusCode, reqErr.Err), reqErr.HTTPStatusCode >= 500, err)
	}

	return provider.NewError(providerName, "request_failed", fmt.Sprintf("createTranscription failed: %s", err), true, err)
}

// GetProviderInfo returns metadata about the OpenAI provider
func (rt *RemoteTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "OpenAI Whisper API",
		Type:        provider.ProviderTypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatWAV,
			provider.FormatWEBM,
			provider.FormatFLAC,
			provider.FormatOGG,
		},
		MaxFileSizeMB:    25,
		RequiresInternet: true,
		RequiresAPIKey:   true,
		DefaultModel:     openai.Whisper1,
		AvailableModels:  []string{openai.Whisper1, "gpt-4o-transcribe", "gpt-4o-mini-transcribe"},
	}
}

// ValidateConfiguration validates the provider configuration
func (rt *RemoteTranscriber) ValidateConfiguration() error {
	if rt.config.APIKey == "" {
		return fmt.Errorf("openai provider requires 'api_key' setting or OPENAI_API_KEY")
	}
	if rt.config.Temperature < 0 || rt.config.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %v", rt.config.Temperature)
	}
	return nil
}

// HealthCheck lists models to confirm the key and endpoint work
func (rt *RemoteTranscriber) HealthCheck(ctx context.Context) error {
	if err := rt.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := rt.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai API not reachable: %w", err)
	}
	return nil
}
