package transcriber

import (
	"context"
	"time"

	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/audio"
	apperrors "whisper-transcribe/internal/app/errors"
)

// Backend is the provider a Service drives, with the name it is known by.
type Backend struct {
	Name     string
	Provider provider.TranscriptionProvider
}

// Options are per-call overrides.
type Options struct {
	Language    string
	Prompt      string
	Temperature float32
}

// Service ties model loading and transcription to one backend.
type Service struct {
	backend Backend
	metrics provider.ProviderMetrics
	logger  *zap.Logger
}

func NewService(backend Backend, metrics provider.ProviderMetrics, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		metrics: metrics,
		logger:  logger.With(zap.String("provider", backend.Name)),
	}
}

// ProviderName returns the name of the backend in use.
func (s *Service) ProviderName() string {
	return s.backend.Name
}

// Provider returns the backend in use.
func (s *Service) Provider() provider.TranscriptionProvider {
	return s.backend.Provider
}

// LoadedModel is empty until Load succeeds.
func (s *Service) LoadedModel() string {
	return s.backend.Provider.LoadedModel()
}

// Load performs the one-time model load.
func (s *Service) Load(ctx context.Context, model string) error {
	if model == "" {
		model = provider.DefaultModelName
	}

	start := time.Now()
	err := s.backend.Provider.LoadModel(ctx, model)
	s.metrics.RecordModelLoad(s.backend.Name, err)
	if err != nil {
		s.logger.Debug("model load failed", zap.String("model", model), zap.Error(err))
		return err
	}

	s.logger.Debug("model ready",
		zap.String("model", model),
		zap.String("loaded", s.backend.Provider.LoadedModel()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Transcribe runs inference on one file. The model must be loaded.
func (s *Service) Transcribe(ctx context.Context, path string, opts Options) (*provider.TranscriptionResponse, error) {
	if s.backend.Provider.LoadedModel() == "" {
		return nil, apperrors.Wrap(apperrors.ErrModelNotLoaded, s.backend.Name)
	}
	if err := audio.ValidateInput(path); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.backend.Provider.TranscriptWithOptions(ctx, &provider.TranscriptionRequest{
		InputFilePath: path,
		Language:      opts.Language,
		Prompt:        opts.Prompt,
		Temperature:   opts.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.RecordFailure(s.backend.Name, provider.ErrorCode(err), elapsed.Seconds())
		s.logger.Debug("transcription failed", zap.String("file", path), zap.Error(err))
		return nil, err
	}

	if resp.Provider == "" {
		resp.Provider = s.backend.Name
	}
	if resp.ProcessingTime == 0 {
		resp.ProcessingTime = elapsed
	}

	s.metrics.RecordSuccess(s.backend.Name, elapsed.Seconds(), resp.Duration.Seconds())
	s.logger.Debug("transcription done",
		zap.String("file", path),
		zap.Int("chars", len(resp.Text)),
		zap.Duration("took", elapsed),
	)
	return resp, nil
}
