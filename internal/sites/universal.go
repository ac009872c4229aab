package sites

import (
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
)

// Universal is the catch-all agent for listing pages no dedicated table
// covers. It has no default URL; the caller must name the page. Selectors are
// generic card heuristics, so the model fallback carries more weight here than
// for the dedicated agents.
func Universal() *agent.Spec {
	return &agent.Spec{
		Name:         "universal",
		Description:  "Generic startup listing extractor for arbitrary pages",
		RecordsField: "startups",
		DefaultCap:   100,
		Scroll: agent.ScrollPolicy{
			MaxRounds: 20,
			Patience:  3,
			Interval:  1500 * time.Millisecond,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Goal: "Extract every company or startup listed on this page: " +
			"name, listing URL, description, website and tags.",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{
				`div.table-list-item`,
				`article`,
				`div[class*="startup"]`,
				`div[class*="company"]`,
				`li[class*="item"]`,
				`div[class*="card"]`,
			},
			DedupeByURL: true,
			Fields: []extract.FieldRule{
				{Field: "name", Selectors: []string{
					`h1`, `h2`, `h3`, `h4`, `h5`,
					`[class*="name"]`,
					`[class*="title"]`,
					`a[href]`,
				}},
				{Field: "url", Selectors: []string{
					`a[href*="startup"]`,
					`a[href*="company"]`,
					`a[href]`,
				}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{
					`[class*="description"]`,
					`[class*="tagline"]`,
					`[class*="summary"]`,
					`p`,
				}},
				{Field: "website", Selectors: []string{`a[href^="http"]`}, Attr: "href", Kind: extract.Link},
				{Field: "tags", Selectors: []string{`a[class*="tag"]`, `a[href*="tag"]`}, Kind: extract.TextList, Dedupe: true},
				{Field: "logo_url", Selectors: []string{`img`}, Attr: "src|data-src", Kind: extract.Link},
			},
		},
	}
}
