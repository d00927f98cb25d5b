package provider

import (
	"context"
)

// TranscriptionProvider wraps one speech-to-text backend.
//
// A provider is unusable until LoadModel has succeeded once; after that the
// model stays resident and any number of transcriptions may run against it.
type TranscriptionProvider interface {
	// LoadModel performs the one-time model initialisation. Loading the model
	// that is already loaded is a no-op.
	LoadModel(ctx context.Context, name string) error

	// LoadedModel returns the resolved identifier of the loaded model, or ""
	// before LoadModel.
	LoadedModel() string

	// Transcript is the plain-text convenience form of TranscriptWithOptions.
	Transcript(inputFilePath string) (string, error)

	// TranscriptWithOptions runs inference on a single audio file.
	TranscriptWithOptions(ctx context.Context, request *TranscriptionRequest) (*TranscriptionResponse, error)

	// Provider metadata and capabilities
	GetProviderInfo() ProviderInfo

	// ValidateConfiguration checks static configuration without touching the network.
	ValidateConfiguration() error

	// HealthCheck verifies the backend is reachable and usable.
	HealthCheck(ctx context.Context) error
}

// ProviderRegistry manages named transcription providers
type ProviderRegistry interface {
	RegisterProvider(name string, provider TranscriptionProvider) error
	GetProvider(name string) (TranscriptionProvider, error)
	ListProviders() []string
	GetDefaultProvider() (TranscriptionProvider, error)
	DefaultProviderName() string
	SetDefaultProvider(name string) error
	HealthCheckAll(ctx context.Context) map[string]error
}

// ProviderMetrics records transcription and model-load outcomes.
type ProviderMetrics interface {
	RecordSuccess(provider string, latencySec float64, audioLengthSec float64)
	RecordFailure(provider string, errorType string, latencySec float64)
	RecordModelLoad(provider string, err error)
}
