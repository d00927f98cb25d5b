//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"whisper-transcribe/internal/api/handlers"
	"whisper-transcribe/internal/api/server"
	"whisper-transcribe/internal/app/api/provider"
	appconfig "whisper-transcribe/internal/app/config"
	"whisper-transcribe/internal/app/transcriber"
)

var providerSet = wire.NewSet(
	provideLogger,
	provideProvidersConfig,
	provideProviders,
)

var serviceSet = wire.NewSet(
	providerSet,
	provideRegistry,
	provideProviderMetrics,
	wire.Bind(new(provider.ProviderMetrics), new(*provider.PrometheusMetrics)),
	provideBackend,
	transcriber.NewService,
)

// InitializeProviders builds every enabled provider from the config.
func InitializeProviders(opts Options) (*appconfig.Providers, error) {
	wire.Build(providerSet)
	return &appconfig.Providers{}, nil
}

// InitializeService builds the transcription service for the selected provider.
func InitializeService(opts Options) (*transcriber.Service, error) {
	wire.Build(serviceSet)
	return &transcriber.Service{}, nil
}

// InitializeServer builds the HTTP upload server and its service.
func InitializeServer(opts Options) (*ServerApp, error) {
	wire.Build(
		serviceSet,
		provideServerConfig,
		wire.Bind(new(handlers.ProviderSource), new(*appconfig.Providers)),
		server.NewServer,
		wire.Struct(new(ServerApp), "*"),
	)
	return &ServerApp{}, nil
}
