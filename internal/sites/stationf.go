package sites

import (
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/browser"
	"github.com/histia/harvest/internal/extract"
)

// StationF extracts the resident-company directory. The listing sits behind a
// login, so the runner authenticates before navigating; credentials come from
// the run input or the keyring store.
func StationF() *agent.Spec {
	return &agent.Spec{
		Name:         "stationf",
		Description:  "Station F resident company directory (login required)",
		DefaultURL:   "https://hal2.stationf.co/companies",
		RecordsField: "companies",
		DefaultCap:   100,
		NeedsLogin:   true,
		LoginForm: browser.LoginForm{
			URL:              "https://hal2.stationf.co/",
			EmailSelector:    `input[type="email"]`,
			PasswordSelector: `input[type="password"]`,
			SubmitSelector:   `button[type="submit"]`,
		},
		Scroll: agent.ScrollPolicy{
			MaxRounds: 25,
			Patience:  3,
			Interval:  1500 * time.Millisecond,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Goal: "Extract every company from the Station F directory: " +
			"name, Station F profile URL, description and website.",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{
				`[data-slot="drawer-trigger"]`,
				`article`,
				`a[href*="/companies/"]`,
			},
			Fields: []extract.FieldRule{
				{Field: "name", Selectors: []string{
					`[data-slot="item-title"] h5`,
					`[data-slot="item-title"]`,
					`h1`, `h2`, `h3`, `h4`, `h5`,
					`a[href*="/companies/"]`,
				}},
				{Field: "url", Selectors: []string{`a[href*="/companies/"]`}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{
					`[data-slot="item-description"]`,
					`[class*="description"]`,
					`[class*="tagline"]`,
					`p`,
				}},
				{Field: "website", Selectors: []string{
					`a[href^="http"]:not([href*="stationf.co"])`,
				}, Attr: "href", Kind: extract.Link},
				{Field: "logo_url", Selectors: []string{`img`}, Attr: "src|data-src", Kind: extract.Link},
			},
		},
	}
}
