package dto

import (
	"whisper-transcribe/internal/app/api/provider"
	appconfig "whisper-transcribe/internal/app/config"
)

// ProviderResponse represents a provider in API responses
type ProviderResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Backend          string   `json:"backend"`
	Enabled          bool     `json:"enabled"`
	Available        bool     `json:"available"`
	HealthStatus     string   `json:"health_status"`
	ErrorMessage     string   `json:"error_message,omitempty"`
	IsDefault        bool     `json:"is_default"`
	SupportedFormats []string `json:"supported_formats,omitempty"`
	RequiresAPIKey   bool     `json:"requires_api_key"`
	DefaultModel     string   `json:"default_model,omitempty"`
	LoadedModel      string   `json:"loaded_model,omitempty"`
	MaxFileSizeMB    int      `json:"max_file_size_mb,omitempty"`
}

// ProvidersResponse is the body of GET /api/providers.
type ProvidersResponse struct {
	Providers []ProviderResponse `json:"providers"`
	Default   string             `json:"default"`
}

// ToProviderResponse converts a provider status to its response DTO.
// loadedModel is the model held by the serving provider, if this is it.
func ToProviderResponse(st appconfig.ProviderStatus, loadedModel string) ProviderResponse {
	resp := ProviderResponse{
		ID:           st.Name,
		Name:         st.Name,
		Backend:      st.Type,
		Enabled:      st.Enabled,
		Available:    st.Healthy,
		HealthStatus: healthStatus(st),
		ErrorMessage: st.Error,
		IsDefault:    st.Default,
		LoadedModel:  loadedModel,
	}

	if st.Info != nil {
		resp.Name = st.Info.DisplayName
		resp.Type = string(st.Info.Type)
		resp.RequiresAPIKey = st.Info.RequiresAPIKey
		resp.DefaultModel = st.Info.DefaultModel
		resp.MaxFileSizeMB = st.Info.MaxFileSizeMB
		resp.SupportedFormats = formatNames(st.Info.SupportedFormats)
	}
	return resp
}

func healthStatus(st appconfig.ProviderStatus) string {
	switch {
	case !st.Enabled:
		return "disabled"
	case st.Healthy:
		return "healthy"
	case st.Info == nil:
		return "unavailable"
	default:
		return "unhealthy"
	}
}

func formatNames(formats []provider.AudioFormat) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}
