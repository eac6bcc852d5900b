package marketplace

import (
	"net/http"

	"github.com/haythemsaa/boxibox-backend/pkg/config"
)

// Selector resolves the Lister for a tenant's preferred platform. Platform
// choice is plain configuration data, resolved once per operation and passed
// down; nothing here keys off the tenant itself.
type Selector struct {
	listers map[string]Lister
}

// NewSelector builds a selector from the marketplace configuration. Platforms
// without an API key are left unregistered and resolve to the no-op lister.
func NewSelector(cfg config.MarketplaceConfig) (*Selector, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	listers := make(map[string]Lister)

	if cfg.StorageTreasuresAPIKey != "" {
		client, err := NewStorageTreasuresClient(
			cfg.StorageTreasuresAPIKey,
			WithBaseURL(cfg.StorageTreasuresBaseURL),
			WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		listers[PlatformStorageTreasures] = client
	}

	if cfg.LockerFoxAPIKey != "" {
		client, err := NewLockerFoxClient(
			cfg.LockerFoxAPIKey,
			WithBaseURL(cfg.LockerFoxBaseURL),
			WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		listers[PlatformLockerFox] = client
	}

	return &Selector{listers: listers}, nil
}

// For returns the lister registered for the platform, or a no-op lister when
// the platform is unknown or not configured.
func (s *Selector) For(platform *string) Lister {
	if s == nil || platform == nil {
		return NopLister{}
	}
	if lister, ok := s.listers[*platform]; ok {
		return lister
	}
	return NopLister{}
}
