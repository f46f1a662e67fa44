package pms

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven/mocks"
)

func TestFactory_Create(t *testing.T) {
	factory := NewFactory(nil)
	factory.Register(domain.ProviderSmoobu, func(config domain.ProviderConfig, logger *slog.Logger) driven.PmsProvider {
		return mocks.NewMockProvider(domain.ProviderSmoobu)
	})

	provider, err := factory.Create(domain.ProviderConfig{
		Provider: domain.ProviderSmoobu,
		APIKey:   "key",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if provider.Name() != domain.ProviderSmoobu {
		t.Errorf("expected smoobu, got %s", provider.Name())
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	factory := NewFactory(nil)

	_, err := factory.Create(domain.ProviderConfig{Provider: "expedia"})
	if !errors.Is(err, domain.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestFactory_SupportedButUnregistered(t *testing.T) {
	factory := NewFactory(nil)

	_, err := factory.Create(domain.ProviderConfig{Provider: domain.ProviderGuesty})
	if !errors.Is(err, domain.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider for unregistered provider, got %v", err)
	}
}

func TestFactory_RegisteredProviders(t *testing.T) {
	factory := NewFactory(nil)
	build := func(config domain.ProviderConfig, logger *slog.Logger) driven.PmsProvider {
		return mocks.NewMockProvider(config.Provider)
	}

	for _, name := range domain.SupportedProviders() {
		factory.Register(name, build)
	}

	if got := len(factory.RegisteredProviders()); got != 5 {
		t.Errorf("expected 5 registered providers, got %d", got)
	}
}
