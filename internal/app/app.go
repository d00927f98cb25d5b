package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"whisper-transcribe/internal/api/server"
	"whisper-transcribe/internal/app/api/provider"
	appconfig "whisper-transcribe/internal/app/config"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/transcriber"
	"whisper-transcribe/internal/config"
)

// Options are the inputs every injector needs.
type Options struct {
	// ConfigPath is the --config flag; empty means the default lookup.
	ConfigPath string
	Settings   config.Settings
	Logger     *zap.Logger
	// Registry collects metrics. Nil means a fresh registry.
	Registry *prometheus.Registry
}

// ServerApp is the HTTP server with the service behind it. The service
// still needs its model loaded before the server starts.
type ServerApp struct {
	Server  *server.Server
	Service *transcriber.Service
}

func provideLogger(opts Options) *zap.Logger {
	if opts.Logger == nil {
		return zap.NewNop()
	}
	return opts.Logger
}

func provideProvidersConfig(opts Options, logger *zap.Logger) (*appconfig.ProvidersConfig, error) {
	cfg, source, err := appconfig.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("providers config loaded",
		zap.String("source", source),
		zap.Strings("enabled", cfg.EnabledProviders()),
		zap.String("default", cfg.DefaultProvider),
	)
	return cfg, nil
}

func provideProviders(cfg *appconfig.ProvidersConfig, logger *zap.Logger) *appconfig.Providers {
	return appconfig.BuildProviders(cfg, logger)
}

func provideProviderMetrics(reg *prometheus.Registry) *provider.PrometheusMetrics {
	return provider.NewProviderMetrics(reg)
}

// provideBackend picks the provider named in settings, or the configured
// default when settings leave it empty.
func provideBackend(opts Options, providers *appconfig.Providers) (transcriber.Backend, error) {
	name := opts.Settings.Provider
	if name == "" {
		name = providers.DefaultName()
	}
	if name == "" {
		return transcriber.Backend{}, apperrors.WithDetail(apperrors.ErrProviderNotFound, "no provider selected")
	}

	tp, err := providers.Get(name)
	if err != nil {
		return transcriber.Backend{}, err
	}
	return transcriber.Backend{Name: name, Provider: tp}, nil
}

func provideRegistry(opts Options) *prometheus.Registry {
	if opts.Registry == nil {
		return prometheus.NewRegistry()
	}
	return opts.Registry
}

func provideServerConfig(opts Options) server.Config {
	c := server.DefaultConfig()
	c.Host = opts.Settings.ServerHost
	c.Port = opts.Settings.ServerPort
	c.UploadDir = opts.Settings.UploadDir
	c.MaxUploadBytes = opts.Settings.MaxUploadBytes
	if opts.Settings.Timeout > 0 {
		c.WriteTimeout = opts.Settings.Timeout
	}
	return c
}
