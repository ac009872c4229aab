package sites

import (
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
)

// AppSumoHot extracts the "what's hot" deal collection.
func AppSumoHot() *agent.Spec {
	spec := appSumoSpec()
	spec.Name = "appsumo_hot"
	spec.Description = "AppSumo what's-hot deal collection"
	spec.DefaultURL = "https://appsumo.com/collections/whats-hot/"
	return spec
}

// AppSumoNew extracts the new-arrivals deal collection. Same card markup as
// the hot collection, only the listing URL differs.
func AppSumoNew() *agent.Spec {
	spec := appSumoSpec()
	spec.Name = "appsumo_new"
	spec.Description = "AppSumo new-arrivals deal collection"
	spec.DefaultURL = "https://appsumo.com/collections/new-arrivals/"
	return spec
}

func appSumoSpec() *agent.Spec {
	return &agent.Spec{
		RecordsField: "products",
		DefaultCap:   50,
		Scroll: agent.ScrollPolicy{
			MaxRounds: 20,
			Patience:  3,
			Interval:  1500 * time.Millisecond,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Goal: "Extract every deal card from this AppSumo collection: " +
			"product name, deal URL, description, price, original price, " +
			"review count and star rating.",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{`div.relative.h-full:has(a[href^="/products/"])`},
			DedupeByURL:       true,
			Fields: []extract.FieldRule{
				{Field: "name", Selectors: []string{
					`span.sr-only`,
					`span.font-bold`,
					`a[aria-label]`,
				}},
				{Field: "url", Selectors: []string{`a[href^="/products/"]`}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{`div[class*="line-clamp"]`}},
				{Field: "price", Selectors: []string{`#deal-price`}},
				{Field: "original_price", Selectors: []string{`#deal-price-original`}},
				{Field: "reviews", Selectors: []string{
					`a[href*="#reviews"] span`,
					`a[href*="#reviews"]`,
				}, Kind: extract.Integer},
				{Field: "rating", Selectors: []string{
					`img[alt*="star"]`,
					`img[alt*="Star"]`,
				}, Attr: "alt", Kind: extract.Decimal},
				{Field: "logo_url", Selectors: []string{`img[alt][src^="http"]`}, Attr: "src", Kind: extract.Link},
				{Field: "badges", Selectors: []string{`[class*="badge"]`}, Kind: extract.TextList, Dedupe: true},
			},
		},
	}
}
