package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api/provider"
	apperrors "whisper-transcribe/internal/app/errors"
)

// Providers is the outcome of building every enabled provider. A provider
// that fails to build does not stop the others; its error is kept so that
// selecting it later reports why.
type Providers struct {
	Registry *provider.DefaultProviderRegistry
	Failed   map[string]error
	config   *ProvidersConfig
}

// BuildProviders creates and registers each enabled provider.
func BuildProviders(cfg *ProvidersConfig, logger *zap.Logger) *Providers {
	p := &Providers{
		Registry: provider.NewProviderRegistry(),
		Failed:   map[string]error{},
		config:   cfg,
	}

	for _, name := range cfg.EnabledProviders() {
		pc := cfg.Providers[name]
		tp, err := provider.CreateProvider(pc.Type, cfg.ProviderSettings(name))
		if err == nil {
			err = p.Registry.RegisterProvider(name, tp)
		}
		if err != nil {
			logger.Debug("provider unavailable", zap.String("provider", name), zap.Error(err))
			p.Failed[name] = err
			continue
		}
		logger.Debug("provider registered", zap.String("provider", name), zap.String("type", pc.Type))
	}

	if cfg.DefaultProvider != "" {
		if err := p.Registry.SetDefaultProvider(cfg.DefaultProvider); err != nil {
			logger.Debug("default provider not registered", zap.String("provider", cfg.DefaultProvider))
		}
	}
	return p
}

// Get returns the named provider, or the reason it cannot be used.
func (p *Providers) Get(name string) (provider.TranscriptionProvider, error) {
	if tp, err := p.Registry.GetProvider(name); err == nil {
		return tp, nil
	}
	if err, ok := p.Failed[name]; ok {
		return nil, fmt.Errorf("provider %s is not usable: %w", name, err)
	}
	if pc, ok := p.config.Providers[name]; ok && !pc.Enabled {
		return nil, apperrors.WithDetail(apperrors.ErrProviderDisabled, name)
	}
	return nil, apperrors.WithDetail(apperrors.ErrProviderNotFound, name)
}

// DefaultName is the configured default provider.
func (p *Providers) DefaultName() string {
	return p.config.DefaultProvider
}

// ProviderStatus describes one configured provider for listings.
type ProviderStatus struct {
	Name    string
	Type    string
	Enabled bool
	Default bool
	Info    *provider.ProviderInfo
	// Error is why the provider cannot be used, or its failed health check.
	Error   string
	Healthy bool
}

// Status reports every configured provider. Registered providers are
// health-checked concurrently; the others carry the reason they are unusable.
func (p *Providers) Status(ctx context.Context) []ProviderStatus {
	health := p.Registry.HealthCheckAll(ctx)

	names := p.config.Names()
	statuses := make([]ProviderStatus, 0, len(names))
	for _, name := range names {
		pc := p.config.Providers[name]
		st := ProviderStatus{
			Name:    name,
			Type:    pc.Type,
			Enabled: pc.Enabled,
			Default: name == p.config.DefaultProvider,
		}

		switch tp, err := p.Get(name); {
		case err != nil:
			st.Error = err.Error()
		default:
			info := tp.GetProviderInfo()
			st.Info = &info
			if herr := health[name]; herr != nil {
				st.Error = herr.Error()
			} else {
				st.Healthy = true
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}
