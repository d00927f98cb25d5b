package whisper_cpp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/audio"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/util/files"
)

const providerName = "whisper_cpp"

// LocalProviderConfig represents configuration specific to local whisper.cpp provider
type LocalProviderConfig struct {
	BinaryPath string        `yaml:"binary_path"`
	ModelsDir  string        `yaml:"models_dir"` // holds ggml-<name>.bin files
	ModelPath  string        `yaml:"model_path"` // used when no models_dir is set
	Language   string        `yaml:"language"`   // "auto" when empty
	Prompt     string        `yaml:"prompt"`
	Threads    int           `yaml:"threads"`
	TempDir    string        `yaml:"temp_dir"`
	Timeout    time.Duration `yaml:"timeout"`
}

// prepareFunc turns an arbitrary input into something whisper.cpp can read,
// writing any converted copy into outputDir. It reports whether it created a
// file the caller must remove.
type prepareFunc func(ctx context.Context, inputFilePath, outputDir string) (string, bool, error)

// LocalTranscriber implements local transcription, using the whisper.cpp CLI.
type LocalTranscriber struct {
	config  LocalProviderConfig
	model   provider.ModelSlot
	prepare prepareFunc
	logger  *zap.Logger
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(config LocalProviderConfig) *LocalTranscriber {
	if config.Language == "" {
		config.Language = "auto"
	}
	if config.TempDir == "" {
		config.TempDir = filepath.Join(os.TempDir(), "whisper_cpp")
	}

	return &LocalTranscriber{
		config:  config,
		prepare: audio.EnsureWav16k,
		logger:  zap.L().Named(providerName),
	}
}

// ResolveModelPath maps a model name such as "base" to a ggml file.
// Names that already look like paths are returned unchanged.
func (lt *LocalTranscriber) ResolveModelPath(name string) (string, error) {
	if name == "" {
		name = provider.DefaultModelName
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasSuffix(name, ".bin") {
		if lt.config.ModelsDir != "" && !filepath.IsAbs(name) && !strings.ContainsRune(name, os.PathSeparator) {
			return filepath.Join(lt.config.ModelsDir, name), nil
		}
		return name, nil
	}
	if lt.config.ModelsDir != "" {
		return filepath.Join(lt.config.ModelsDir, "ggml-"+name+".bin"), nil
	}
	if lt.config.ModelPath != "" {
		if !provider.ModelFileServes(lt.config.ModelPath, name) {
			return "", apperrors.WithDetail(apperrors.ErrModelNotFound,
				fmt.Sprintf("%s (only %s is configured; set models_dir to switch models)", name, lt.config.ModelPath))
		}
		return lt.config.ModelPath, nil
	}
	return "", apperrors.Wrap(apperrors.ErrInvalidConfig, "whisper_cpp needs 'models_dir' or 'model_path' to load a model")
}

// LoadModel resolves and checks the ggml model file. whisper.cpp reads the
// weights on every invocation, so loading means the file is ready to be used.
func (lt *LocalTranscriber) LoadModel(ctx context.Context, name string) error {
	path, err := lt.ResolveModelPath(name)
	if err != nil {
		return err
	}
	if path == lt.model.Get() {
		return nil
	}

	stat, err := os.Stat(path)
	if err != nil {
		return apperrors.WithDetail(apperrors.ErrModelNotFound, path)
	}
	if stat.IsDir() || stat.Size() == 0 {
		return apperrors.WithDetail(apperrors.ErrModelNotFound, path+" is not a model file")
	}

	lt.model.Set(path)
	lt.logger.Debug("model loaded", zap.String("model", name), zap.String("path", path))
	return nil
}

func (lt *LocalTranscriber) LoadedModel() string {
	return lt.model.Get()
}

// Transcript takes an audio file path and returns the transcribed text.
func (lt *LocalTranscriber) Transcript(inputFilePath string) (string, error) {
	resp, err := lt.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: inputFilePath})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// TranscriptWithOptions runs the whisper.cpp binary on one file.
func (lt *LocalTranscriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	modelPath := lt.model.Get()
	if modelPath == "" {
		return nil, apperrors.Wrap(apperrors.ErrModelNotLoaded, providerName)
	}
	if request.InputFilePath == "" {
		return nil, provider.NewError(providerName, "invalid_input", "input file path is required", false, nil)
	}
	if err := audio.ValidateInput(request.InputFilePath); err != nil {
		return nil, provider.NewError(providerName, "file_not_found", err.Error(), false, err)
	}

	if lt.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lt.config.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(lt.config.TempDir, 0755); err != nil {
		return nil, provider.NewError(providerName, "temp_dir_error",
			fmt.Sprintf("failed to create temp directory: %v", err), true, err)
	}

	wavPath, converted, err := lt.prepare(ctx, request.InputFilePath, lt.config.TempDir)
	if err != nil {
		return nil, provider.NewError(providerName, "audio_conversion_error",
			fmt.Sprintf("error converting input file: %v", err), false, err)
	}
	if converted {
		defer os.Remove(wavPath)
	}

	language := lt.config.Language
	if request.Language != "" {
		language = request.Language
	}
	prompt := lt.config.Prompt
	if request.Prompt != "" {
		prompt = request.Prompt
	}

	outputBase := filepath.Join(lt.config.TempDir, "transcription_"+uuid.NewString())
	defer os.Remove(outputBase + ".txt")

	args := lt.buildArgs(modelPath, wavPath, outputBase, language, prompt)

	command := exec.CommandContext(ctx, lt.config.BinaryPath, args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	command.WaitDelay = 2 * time.Second

	lt.logger.Debug("running whisper.cpp",
		zap.String("binary", lt.config.BinaryPath),
		zap.Strings("args", args),
	)

	if err := command.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, provider.NewError(providerName, "timeout",
				fmt.Sprintf("transcription aborted: %v", ctxErr), true, ctxErr)
		}
		return nil, provider.NewError(providerName, "transcription_failed",
			fmt.Sprintf("command execution error: %v, stderr: %s", err, strings.TrimSpace(stderr.String())), true, err)
	}

	output, err := files.ReadOutputFile(outputBase + ".txt")
	if err != nil {
		return nil, provider.NewError(providerName, "output_missing",
			fmt.Sprintf("failed to read output file: %v", err), false, err)
	}

	response := &provider.TranscriptionResponse{
		Text:           JoinSegments(output),
		Provider:       providerName,
		ModelUsed:      filepath.Base(modelPath),
		ProcessingTime: time.Since(startTime),
	}
	if language != "auto" {
		response.Language = language
	}

	return response, nil
}

func (lt *LocalTranscriber) buildArgs(modelPath, wavPath, outputBase, language, prompt string) []string {
	args := []string{
		"-m", modelPath,
		"-l", language,
		"-otxt",
		"-np",
		"-f", wavPath,
		"-of", outputBase,
	}
	if prompt != "" {
		args = append(args, "--prompt", prompt)
	}
	if lt.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(lt.config.Threads))
	}
	return args
}

// JoinSegments flattens whisper.cpp's one-segment-per-line text output.
func JoinSegments(output string) string {
	lines := strings.Split(output, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// GetProviderInfo returns metadata about the whisper.cpp provider
func (lt *LocalTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Whisper.cpp (Local)",
		Type:        provider.ProviderTypeLocal,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatWEBM,
		},
		RequiresBinary: true,
		DefaultModel:   provider.DefaultModelName,
		AvailableModels: []string{
			"tiny", "tiny.en", "base", "base.en", "small", "small.en",
			"medium", "medium.en", "large-v1", "large-v2", "large-v3",
		},
	}
}

// ValidateConfiguration validates the provider configuration
func (lt *LocalTranscriber) ValidateConfiguration() error {
	if lt.config.BinaryPath == "" {
		return fmt.Errorf("whisper_cpp provider requires 'binary_path' setting")
	}
	if lt.config.ModelsDir == "" && lt.config.ModelPath == "" {
		return fmt.Errorf("whisper_cpp provider requires 'models_dir' or 'model_path' setting")
	}
	return nil
}

// HealthCheck checks that the binary is present and executable
func (lt *LocalTranscriber) HealthCheck(ctx context.Context) error {
	if err := lt.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := exec.LookPath(lt.config.BinaryPath); err != nil {
		return fmt.Errorf("whisper.cpp binary not usable at %s: %w", lt.config.BinaryPath, err)
	}
	if lt.config.ModelsDir != "" {
		if stat, err := os.Stat(lt.config.ModelsDir); err != nil || !stat.IsDir() {
			return fmt.Errorf("models directory not found at %s", lt.config.ModelsDir)
		}
	}
	return nil
}
