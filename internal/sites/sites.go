// Package sites declares the built-in agents. Everything site-specific lives
// here as data: fragment selectors, field rules, scroll policies and the
// post-processing hooks. The pipeline itself never branches on a site name.
package sites

import (
	"fmt"

	"github.com/histia/harvest/internal/agent"
)

// All returns the built-in agent specs in registration order.
func All() []*agent.Spec {
	return []*agent.Spec{
		ProductHunt(),
		BetaList(),
		AppSumoHot(),
		AppSumoNew(),
		FutureTools(),
		StationF(),
		ZoneSecure(),
		Deeptech(),
		Universal(),
	}
}

// RegisterAll populates a registry with the built-in agents.
func RegisterAll(registry *agent.Registry) error {
	for _, spec := range All() {
		if err := registry.Register(spec); err != nil {
			return fmt.Errorf("register %q: %w", spec.Name, err)
		}
	}
	return nil
}

// consentOverlaySelectors match the cookie banners and consent modals seen
// across the listing sites. Dismissal is best effort after every navigation.
var consentOverlaySelectors = []string{
	`[class*="cookie"]`,
	`[id*="cookie"]`,
	`[class*="consent"]`,
	`[id*="consent"]`,
	`[class*="banner"]`,
}
