package sites

import (
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
)

// Deeptech extracts the Observatoire Deeptech company directory. The table
// is client-rendered behind very deep lazy loading, so the scroll budget is
// much larger than for the leaderboard sites. Directory views are filtered
// per query, so there is no default URL; the caller names the page. The page
// is French and falls back to the French placeholder.
func Deeptech() *agent.Spec {
	return &agent.Spec{
		Name:         "deeptech",
		Description:  "Observatoire Deeptech company directory",
		RecordsField: "companies",
		DefaultCap:   1000,
		French:       true,
		Scroll: agent.ScrollPolicy{
			MaxRounds: 60,
			Patience:  5,
			Interval:  1200 * time.Millisecond,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Goal: "Extract every company row from the directory table: name, " +
			"company page URL, description, ranking, market, industries, " +
			"employees, launch year, headquarters location and growth stage.",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{
				`div.table-list-item`,
				`[class*="table-list-item"]`,
				`div[class*="list-item"]`,
				`[data-testid*="company"]`,
			},
			Fields: []extract.FieldRule{
				// Market links also carry data-testid="internal" but point at
				// filter queries, not /companies/ pages.
				{Field: "name", Selectors: []string{
					`a[data-testid="internal"][href^="/companies/"]`,
					`a[href^="/companies/"]`,
				}},
				{Field: "url", Selectors: []string{
					`a[data-testid="internal"][href^="/companies/"]`,
					`a[href^="/companies/"]`,
				}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{
					`p.tw\:text-neutral-400`,
					`p.text-neutral-400`,
				}},
				{Field: "logo_url", Selectors: []string{
					`img.responsive-img`,
					`img[itemprop="image"]`,
				}, Attr: "src", Kind: extract.Link},
				{Field: "rank", Selectors: []string{
					`p.tw\:text-sm`,
					`p.text-sm`,
				}, Kind: extract.Integer},
				{Field: "sector", Selectors: []string{
					`div.companyMarket ul.item-list-column--horizontal a[data-testid="internal"]`,
				}},
				{Field: "tags", Selectors: []string{
					`div.companyMarket ul.item-list-column:not(.item-list-column--horizontal) a[data-testid="internal"]`,
					`div.companyMarket a[data-testid="internal"]`,
				}, Kind: extract.TextList, Dedupe: true},
				{Field: "badges", Selectors: []string{
					`div.business-type-column a[data-testid="internal"]`,
				}, Kind: extract.TextList, Dedupe: true},
				{Field: "employees", Selectors: []string{
					`div.companyEmployees .growth-line-chart__hover-content .growth-line-chart__value`,
					`div.companyEmployees .growth-line-chart__value`,
				}},
				{Field: "founded_year", Selectors: []string{
					`div.launchDate`,
				}, Kind: extract.Integer},
				{Field: "founded_year", Selectors: []string{
					`div.launchDate time[datetime]`,
				}, Attr: "datetime", Kind: extract.Integer},
				{Field: "location", Selectors: []string{`div.hqLocations`}},
				{Field: "stage", Selectors: []string{`div.growthStage span`}},
			},
		},
	}
}
