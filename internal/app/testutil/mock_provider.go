package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"whisper-transcribe/internal/app/api/provider"
)

// MockProvider is a testify mock of provider.TranscriptionProvider.
// LoadedModel is tracked for real so the load-before-transcribe rule holds
// without an expectation for every call.
type MockProvider struct {
	mock.Mock
	model provider.ModelSlot
	Info  provider.ProviderInfo
}

// NewMockProvider returns a mock whose info reports name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{Info: provider.ProviderInfo{
		Name:             name,
		DisplayName:      "Mock " + name,
		Type:             provider.ProviderTypeLocal,
		SupportedFormats: []provider.AudioFormat{provider.FormatWAV},
		DefaultModel:     provider.DefaultModelName,
	}}
}

func (m *MockProvider) LoadModel(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	if err := args.Error(0); err != nil {
		return err
	}
	m.model.Set(name)
	return nil
}

func (m *MockProvider) LoadedModel() string {
	return m.model.Get()
}

func (m *MockProvider) Transcript(inputFilePath string) (string, error) {
	resp, err := m.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: inputFilePath})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (m *MockProvider) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*provider.TranscriptionResponse)
	return resp, args.Error(1)
}

func (m *MockProvider) GetProviderInfo() provider.ProviderInfo {
	return m.Info
}

func (m *MockProvider) ValidateConfiguration() error {
	return nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ExpectLoad sets up a successful LoadModel for model.
func (m *MockProvider) ExpectLoad(model string) *mock.Call {
	return m.On("LoadModel", mock.Anything, model).Return(nil)
}

// ExpectTranscript makes TranscriptWithOptions for path return text.
func (m *MockProvider) ExpectTranscript(path, text string) *mock.Call {
	return m.On("TranscriptWithOptions", mock.Anything, mock.MatchedBy(func(r *provider.TranscriptionRequest) bool {
		return r.InputFilePath == path
	})).Return(&provider.TranscriptionResponse{Text: text, ModelUsed: provider.DefaultModelName}, nil)
}

// MockMetrics records calls to provider.ProviderMetrics.
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordSuccess(providerName string, latencySec float64, audioLengthSec float64) {
	m.Called(providerName, latencySec, audioLengthSec)
}

func (m *MockMetrics) RecordFailure(providerName string, errorType string, latencySec float64) {
	m.Called(providerName, errorType, latencySec)
}

func (m *MockMetrics) RecordModelLoad(providerName string, err error) {
	m.Called(providerName, err)
}

// AllowAll accepts any metrics call.
func (m *MockMetrics) AllowAll() *MockMetrics {
	m.On("RecordSuccess", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("RecordFailure", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("RecordModelLoad", mock.Anything, mock.Anything).Maybe()
	return m
}
