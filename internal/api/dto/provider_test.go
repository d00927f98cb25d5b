package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"whisper-transcribe/internal/app/api/provider"
	appconfig "whisper-transcribe/internal/app/config"
)

func TestToProviderResponse(t *testing.T) {
	info := &provider.ProviderInfo{
		Name:             "whisper_cpp",
		DisplayName:      "Whisper.cpp",
		Type:             provider.ProviderTypeLocal,
		SupportedFormats: []provider.AudioFormat{provider.FormatWAV, provider.FormatMP3},
		DefaultModel:     "base",
	}

	tests := []struct {
		name   string
		status appconfig.ProviderStatus
		health string
		label  string
	}{
		{
			name:   "healthy",
			status: appconfig.ProviderStatus{Name: "local", Type: "whisper_cpp", Enabled: true, Default: true, Info: info, Healthy: true},
			health: "healthy",
			label:  "Whisper.cpp",
		},
		{
			name:   "failed health check",
			status: appconfig.ProviderStatus{Name: "local", Type: "whisper_cpp", Enabled: true, Info: info, Error: "binary missing"},
			health: "unhealthy",
			label:  "Whisper.cpp",
		},
		{
			name:   "not built",
			status: appconfig.ProviderStatus{Name: "cloud", Type: "openai", Enabled: true, Error: "no key"},
			health: "unavailable",
			label:  "cloud",
		},
		{
			name:   "disabled",
			status: appconfig.ProviderStatus{Name: "srv", Type: "whisper_server", Error: "provider is disabled: srv"},
			health: "disabled",
			label:  "srv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ToProviderResponse(tt.status, "")
			assert.Equal(t, tt.health, resp.HealthStatus)
			assert.Equal(t, tt.label, resp.Name)
			assert.Equal(t, tt.status.Name, resp.ID)
			assert.Equal(t, tt.status.Healthy, resp.Available)
		})
	}

	resp := ToProviderResponse(tests[0].status, "base")
	assert.Equal(t, []string{"wav", "mp3"}, resp.SupportedFormats)
	assert.Equal(t, "local", resp.Type)
	assert.Equal(t, "whisper_cpp", resp.Backend)
	assert.Equal(t, "base", resp.LoadedModel)
	assert.True(t, resp.IsDefault)
}
