package sites

import (
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
)

// FutureTools extracts the AI-tool directory. The grid is server-rendered by
// Webflow, so the static path usually succeeds without a browser.
func FutureTools() *agent.Spec {
	return &agent.Spec{
		Name:         "futuretools",
		Description:  "FutureTools AI tool directory",
		DefaultURL:   "https://www.futuretools.io/",
		RecordsField: "tools",
		DefaultCap:   50,
		StaticFirst:  true,
		Scroll: agent.ScrollPolicy{
			MaxRounds: 15,
			Patience:  2,
			Interval:  1200 * time.Millisecond,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Goal: "Extract every tool from this FutureTools directory page: " +
			"name, tool URL, description and tags.",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{
				`li:has(a[href*="/tools/"])`,
				`div[role="listitem"]:has(a[href*="/tools/"])`,
			},
			Fields: []extract.FieldRule{
				{Field: "name", Selectors: []string{`a[href*="/tools/"]`}},
				{Field: "url", Selectors: []string{`a[href*="/tools/"]`}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{`div[class*="description"]`, `p`}},
				{Field: "tags", Selectors: []string{`a[href*="tags"]`, `a[href*="/tags/"]`}, Kind: extract.TextList, Dedupe: true},
				{Field: "logo_url", Selectors: []string{`img`}, Attr: "src|data-src", Kind: extract.Link},
			},
		},
	}
}
