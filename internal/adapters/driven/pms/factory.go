package pms

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ProviderFactory = (*Factory)(nil)

// BuildFunc constructs one provider adapter from a connection config.
type BuildFunc func(config domain.ProviderConfig, logger *slog.Logger) driven.PmsProvider

// Factory creates provider adapters from connection configs.
// It maintains a registry of BuildFuncs, one per provider name, and is the
// single validation chokepoint for those names.
type Factory struct {
	mu     sync.RWMutex
	builds map[domain.ProviderName]BuildFunc
	logger *slog.Logger
}

// NewFactory creates an empty provider factory. The cmd wiring registers all
// five providers; tests register only what they exercise.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		builds: make(map[domain.ProviderName]BuildFunc),
		logger: logger,
	}
}

// Register installs the constructor for one provider name.
func (f *Factory) Register(name domain.ProviderName, fn BuildFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds[name] = fn
}

// Create builds the adapter for the config's provider.
func (f *Factory) Create(config domain.ProviderConfig) (driven.PmsProvider, error) {
	if !domain.IsSupportedProvider(config.Provider) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, config.Provider)
	}

	f.mu.RLock()
	fn, ok := f.builds[config.Provider]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", domain.ErrUnknownProvider, config.Provider)
	}

	return fn(config, f.logger), nil
}

// RegisteredProviders returns the provider names with an installed constructor.
func (f *Factory) RegisteredProviders() []domain.ProviderName {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]domain.ProviderName, 0, len(f.builds))
	for name := range f.builds {
		names = append(names, name)
	}
	return names
}
