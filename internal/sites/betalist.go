package sites

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/pkg/models"
)

// BetaList extracts recently launched startups. The listing is server-rendered,
// so a plain HTTP fetch is tried before a browser context is spent.
func BetaList() *agent.Spec {
	return &agent.Spec{
		Name:         "betalist",
		Description:  "BetaList recently launched startups",
		DefaultURL:   "https://betalist.com/",
		RecordsField: "startups",
		DefaultCap:   200,
		StaticFirst:  true,
		Scroll: agent.ScrollPolicy{
			MaxRounds: 20,
			Patience:  3,
			Interval:  1500 * time.Millisecond,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Filter:           recencyFilter,
		Goal: "Extract every startup listed on this BetaList page: " +
			"name, tagline, BetaList URL, website and topics.",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{`div[id^="startup-"]`},
			Fields: []extract.FieldRule{
				{Field: "name", Selectors: []string{
					`a.block.font-medium`,
					`a.font-medium`,
					`a[href^="/startups/"]`,
				}},
				{Field: "url", Selectors: []string{`a[href^="/startups/"]`}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{
					`a.block.text-gray-500`,
					`a.text-gray-500`,
					`p`,
				}},
				{Field: "website", Selectors: []string{`a.cta`}, Attr: "href", Kind: extract.Link},
				{Field: "tags", Selectors: []string{`a.pill`}, Kind: extract.TextList, Dedupe: true},
				{Field: "logo_url", Selectors: []string{`img`}, Attr: "src|data-src", Kind: extract.Link},
				{Field: "badges", Selectors: []string{`time`}, Attr: "datetime", Kind: extract.TextList},
			},
		},
	}
}

var relativeAgeExpr = regexp.MustCompile(`(?i)\b(today|yesterday|(\d+)\s+days?\s+ago)\b`)

// recencyFilter honors the optional last-days window. Age is read from
// whatever date marker the card carried (a datetime badge or a relative-age
// note); records without one are kept, since dropping them would silently
// empty reports on pages that never expose dates.
func recencyFilter(records []models.Record, input models.RunInput) []models.Record {
	if input.LastDays <= 0 {
		return records
	}
	now := time.Now()
	kept := records[:0]
	for _, record := range records {
		if days, ok := recordAgeDays(&record, now); ok && days > input.LastDays {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}

func recordAgeDays(record *models.Record, now time.Time) (int, bool) {
	for _, value := range record.Badges {
		if days, ok := parseAgeDays(value, now); ok {
			return days, true
		}
	}
	for _, value := range record.Notes {
		if days, ok := parseAgeDays(value, now); ok {
			return days, true
		}
	}
	return 0, false
}

// parseAgeDays understands absolute dates (RFC 3339 and bare yyyy-mm-dd) and
// the relative wording BetaList renders on cards.
func parseAgeDays(value string, now time.Time) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			days := int(now.Sub(t).Hours() / 24)
			if days < 0 {
				days = 0
			}
			return days, true
		}
	}

	groups := relativeAgeExpr.FindStringSubmatch(value)
	if groups == nil {
		return 0, false
	}
	switch strings.ToLower(groups[1]) {
	case "today":
		return 0, true
	case "yesterday":
		return 1, true
	}
	if n, err := strconv.Atoi(groups[2]); err == nil {
		return n, true
	}
	return 0, false
}
