package routes

import (
	"github.com/gin-gonic/gin"

	"whisper-transcribe/internal/api/handlers"
)

// Handlers holds the handlers mounted under /api.
type Handlers struct {
	Transcribe *handlers.TranscribeHandler
	Providers  *handlers.ProviderHandler
}

// RegisterRoutes registers all /api routes
func RegisterRoutes(router *gin.RouterGroup, h Handlers) {
	chat := router.Group("/chat")
	{
		chat.POST("/transcribe", h.Transcribe.Transcribe)
	}

	if h.Providers != nil {
		router.GET("/providers", h.Providers.List)
	}
}
