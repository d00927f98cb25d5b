package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"whisper-transcribe/internal/api/dto"
	appconfig "whisper-transcribe/internal/app/config"
)

// ProviderSource reports configured providers.
type ProviderSource interface {
	Status(ctx context.Context) []appconfig.ProviderStatus
	DefaultName() string
}

// ProviderHandler handles provider-related API endpoints
type ProviderHandler struct {
	source  ProviderSource
	serving string
	loaded  func() string
	timeout time.Duration
}

// NewProviderHandler lists providers from source. serving names the
// provider behind the upload route and loaded reports its model.
func NewProviderHandler(source ProviderSource, serving string, loaded func() string) *ProviderHandler {
	return &ProviderHandler{
		source:  source,
		serving: serving,
		loaded:  loaded,
		timeout: 10 * time.Second,
	}
}

// List handles GET /api/providers
func (h *ProviderHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	statuses := h.source.Status(ctx)
	providers := make([]dto.ProviderResponse, 0, len(statuses))
	for _, st := range statuses {
		loaded := ""
		if st.Name == h.serving && h.loaded != nil {
			loaded = h.loaded()
		}
		providers = append(providers, dto.ToProviderResponse(st, loaded))
	}

	c.JSON(http.StatusOK, dto.ProvidersResponse{
		Providers: providers,
		Default:   h.source.DefaultName(),
	})
}
