package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/audio"
	apperrors "whisper-transcribe/internal/app/errors"
)

const providerName = "whisper_server"

// WhisperServerProvider implements transcription via HTTP to a whisper-server instance
type WhisperServerProvider struct {
	config WhisperServerConfig
	client *http.Client
	model  provider.ModelSlot
	logger *zap.Logger
}

// WhisperServerConfig represents configuration for whisper-server HTTP API
type WhisperServerConfig struct {
	BaseURL        string            `yaml:"base_url"`        // e.g. "http://192.168.1.100:8080"
	InferencePath  string            `yaml:"inference_path"`  // default "/inference"
	LoadPath       string            `yaml:"load_path"`       // default "/load"
	ModelsDir      string            `yaml:"models_dir"`      // directory on the server host
	ModelPath      string            `yaml:"model_path"`      // explicit model file on the server host
	Timeout        time.Duration     `yaml:"timeout"`
	Language       string            `yaml:"language"`
	ResponseFormat string            `yaml:"response_format"` // json, verbose_json, text, srt, vtt
	Temperature    float64           `yaml:"temperature"`
	Translate      bool              `yaml:"translate"`
	NoTimestamps   bool              `yaml:"no_timestamps"`
	CustomHeaders  map[string]string `yaml:"custom_headers"`
}

// WhisperServerResponse represents the response from whisper-server
type WhisperServerResponse struct {
	Text                        string                 `json:"text,omitempty"`
	Task                        string                 `json:"task,omitempty"`
	Language                    string                 `json:"language,omitempty"`
	Duration                    float64                `json:"duration,omitempty"`
	Segments                    []WhisperServerSegment `json:"segments,omitempty"`
	DetectedLanguage            string                 `json:"detected_language,omitempty"`
	DetectedLanguageProbability float64                `json:"detected_language_probability,omitempty"`
}

// WhisperServerSegment represents a segment in verbose response
type WhisperServerSegment struct {
	ID           int     `json:"id"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	AvgLogprob   float64 `json:"avg_logprob,omitempty"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(config WhisperServerConfig) *WhisperServerProvider {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.LoadPath == "" {
		config.LoadPath = "/load"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.ResponseFormat == "" {
		config.ResponseFormat = "json"
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}

	return &WhisperServerProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: zap.L().Named(providerName),
	}
}

// LoadModel asks the server to switch to a model. When no model location is
// configured the server keeps whatever it started with.
func (wsp *WhisperServerProvider) LoadModel(ctx context.Context, name string) error {
	if name == "" {
		name = provider.DefaultModelName
	}
	target, err := wsp.resolveModelPath(name)
	if err != nil {
		return err
	}
	if target == "" {
		wsp.model.Set(name)
		wsp.logger.Debug("using model already loaded on server", zap.String("model", name))
		return nil
	}
	if target == wsp.model.Get() {
		return nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("model", target); err != nil {
		return fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.LoadPath, body)
	if err != nil {
		return fmt.Errorf("failed to create load model request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	wsp.setHeaders(req)

	resp, err := wsp.client.Do(req)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrRequestFailed, "load model request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return apperrors.WithDetail(apperrors.ErrModelNotFound,
			fmt.Sprintf("server rejected %s (status %d): %s", target, resp.StatusCode, strings.TrimSpace(string(data))))
	}

	wsp.model.Set(target)
	wsp.logger.Debug("model loaded on server", zap.String("model", target))
	return nil
}

// resolveModelPath returns the server-side path to load, or "" when no
// model location is configured.
func (wsp *WhisperServerProvider) resolveModelPath(name string) (string, error) {
	switch {
	case strings.Contains(name, "/") || strings.HasSuffix(name, ".bin"):
		if wsp.config.ModelsDir != "" && !strings.Contains(name, "/") {
			return wsp.config.ModelsDir + "/" + name, nil
		}
		return name, nil
	case wsp.config.ModelsDir != "":
		return strings.TrimRight(wsp.config.ModelsDir, "/") + "/ggml-" + name + ".bin", nil
	case wsp.config.ModelPath != "" && !provider.ModelFileServes(wsp.config.ModelPath, name):
		return "", apperrors.WithDetail(apperrors.ErrModelNotFound,
			fmt.Sprintf("%s (only %s is configured; set models_dir to switch models)", name, wsp.config.ModelPath))
	default:
		return wsp.config.ModelPath, nil
	}
}

func (wsp *WhisperServerProvider) LoadedModel() string {
	return wsp.model.Get()
}

// Transcript implements the basic transcription interface
func (wsp *WhisperServerProvider) Transcript(inputFilePath string) (string, error) {
	response, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: inputFilePath})
	if err != nil {
		return "", err
	}
	return response.Text, nil
}

// TranscriptWithOptions posts the file to the inference endpoint
func (wsp *WhisperServerProvider) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	model := wsp.model.Get()
	if model == "" {
		return nil, apperrors.Wrap(apperrors.ErrModelNotLoaded, providerName)
	}
	if err := audio.ValidateInput(request.InputFilePath); err != nil {
		return nil, provider.NewError(providerName, "file_not_found", err.Error(), false, err)
	}

	body, contentType, err := wsp.createMultipartForm(request)
	if err != nil {
		return nil, provider.NewError(providerName, "form_creation_failed",
			fmt.Sprintf("failed to create multipart form: %v", err), false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.InferencePath, body)
	if err != nil {
		return nil, provider.NewError(providerName, "request_creation_failed",
			fmt.Sprintf("failed to create HTTP request: %v", err), false, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	wsp.setHeaders(httpReq)

	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, provider.NewError(providerName, "timeout",
				fmt.Sprintf("transcription aborted: %v", ctxErr), true, ctxErr)
		}
		return nil, provider.NewError(providerName, "request_failed",
			fmt.Sprintf("HTTP request failed: %v", err), true, err)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(providerName, "response_read_failed",
			fmt.Sprintf("failed to read response: %v", err), true, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewError(providerName, "api_error",
			fmt.Sprintf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData))),
			resp.StatusCode >= 500, nil)
	}

	parsed, err := wsp.parseResponse(responseData, wsp.config.ResponseFormat)
	if err != nil {
		return nil, provider.NewError(providerName, "response_parse_failed",
			fmt.Sprintf("failed to parse response: %v", err), false, err)
	}

	response := &provider.TranscriptionResponse{
		Text:           strings.TrimSpace(parsed.Text),
		Language:       wsp.getLanguage(request, parsed),
		Duration:       time.Duration(parsed.Duration * float64(time.Second)),
		Provider:       providerName,
		ModelUsed:      filepath.Base(model),
		ProcessingTime: time.Since(startTime),
	}
	if parsed.DetectedLanguageProbability > 0 {
		confidence := parsed.DetectedLanguageProbability
		response.Confidence = &confidence
	}
	for _, seg := range parsed.Segments {
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

func (wsp *WhisperServerProvider) setHeaders(req *http.Request) {
	for key, value := range wsp.config.CustomHeaders {
		req.Header.Set(key, value)
	}
}

// createMultipartForm creates the multipart form for the API request
func (wsp *WhisperServerProvider) createMultipartForm(request *provider.TranscriptionRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(request.InputFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(request.InputFilePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %w", err)
	}

	temperature := wsp.config.Temperature
	if request.Temperature > 0 {
		temperature = float64(request.Temperature)
	}

	fields := [][2]string{
		{"response_format", wsp.config.ResponseFormat},
		{"temperature", fmt.Sprintf("%.2f", temperature)},
	}
	if language := wsp.getLanguage(request, nil); language != "" {
		fields = append(fields, [2]string{"language", language})
	}
	if request.Prompt != "" {
		fields = append(fields, [2]string{"prompt", request.Prompt})
	}
	if wsp.config.Translate {
		fields = append(fields, [2]string{"translate", "true"})
	}
	if wsp.config.NoTimestamps {
		fields = append(fields, [2]string{"no_timestamps", "true"})
	}

	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", field[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// parseResponse parses the response based on the response format
func (wsp *WhisperServerProvider) parseResponse(data []byte, format string) (*WhisperServerResponse, error) {
	switch format {
	case "json", "verbose_json":
		var resp WhisperServerResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return &resp, nil
	case "srt", "vtt":
		return &WhisperServerResponse{Text: extractTextFromSubtitles(strings.TrimSpace(string(data)), format)}, nil
	default:
		return &WhisperServerResponse{Text: strings.TrimSpace(string(data))}, nil
	}
}

// extractTextFromSubtitles drops cue numbers, timestamps and headers
func extractTextFromSubtitles(content, format string) string {
	var textLines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "-->") {
			continue
		}
		if format == "srt" && isNumeric(line) {
			continue
		}
		if format == "vtt" && line == "WEBVTT" {
			continue
		}
		textLines = append(textLines, line)
	}
	return strings.Join(textLines, " ")
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func (wsp *WhisperServerProvider) getLanguage(request *provider.TranscriptionRequest, parsed *WhisperServerResponse) string {
	if request != nil && request.Language != "" {
		return request.Language
	}
	if parsed != nil {
		if parsed.Language != "" {
			return parsed.Language
		}
		if parsed.DetectedLanguage != "" {
			return parsed.DetectedLanguage
		}
	}
	return wsp.config.Language
}

// GetProviderInfo returns metadata about the whisper-server provider
func (wsp *WhisperServerProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Whisper Server (HTTP API)",
		Type:        provider.ProviderTypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatWEBM,
		},
		MaxFileSizeMB:    100,
		RequiresInternet: true,
		DefaultModel:     provider.DefaultModelName,
	}
}

// ValidateConfiguration validates the provider configuration
func (wsp *WhisperServerProvider) ValidateConfiguration() error {
	if wsp.config.BaseURL == "" {
		return fmt.Errorf("whisper_server provider requires 'base_url' setting")
	}
	if !strings.HasPrefix(wsp.config.BaseURL, "http://") && !strings.HasPrefix(wsp.config.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://")
	}
	if wsp.config.Temperature < 0.0 || wsp.config.Temperature > 1.0 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0")
	}
	switch wsp.config.ResponseFormat {
	case "json", "verbose_json", "text", "srt", "vtt":
	default:
		return fmt.Errorf("response_format must be one of: json, verbose_json, text, srt, vtt")
	}
	return nil
}

// HealthCheck performs a health check on the provider
func (wsp *WhisperServerProvider) HealthCheck(ctx context.Context) error {
	if err := wsp.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsp.config.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	wsp.setHeaders(req)

	resp, err := wsp.client.Do(req)
	if err != nil {
		return fmt.Errorf("server connectivity test failed: %w", err)
	}
	defer resp.Body.Close()

	// 503 shows up behind proxies while the server itself is fine
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("server returned error status: %d", resp.StatusCode)
	}
	return nil
}
