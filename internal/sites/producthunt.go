package sites

import (
	"regexp"
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
)

var postItemRankExpr = regexp.MustCompile(`post-item-(\d+)`)

// ProductHunt extracts the daily product leaderboard. Cards are React-rendered
// sections keyed by a data-test attribute, so the browser path is mandatory.
func ProductHunt() *agent.Spec {
	return &agent.Spec{
		Name:         "product_hunt",
		Description:  "Product Hunt daily leaderboard",
		DefaultURL:   "https://www.producthunt.com/",
		RecordsField: "products",
		DefaultCap:   20,
		Scroll: agent.ScrollPolicy{
			MaxRounds: 15,
			Patience:  2,
			Interval:  1200 * time.Millisecond,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Goal: "Extract every product from the Product Hunt leaderboard: " +
			"name, product URL, description, topics and upvote count.",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{`section[data-test^="post-item-"]`},
			AllowHost:         "producthunt.com",
			Fields: []extract.FieldRule{
				{Field: "name", Selectors: []string{`a[href^="/products/"]`}},
				{Field: "url", Selectors: []string{`a[href^="/products/"]`}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{
					`div.text-secondary`,
					`div.text-16.font-normal.text-dark-gray.text-secondary`,
				}},
				{Field: "rank", Selectors: []string{`section[data-test^="post-item-"]`},
					Attr: "data-test", Pattern: postItemRankExpr, Kind: extract.Integer},
				{Field: "votes", Selectors: []string{`button[data-test="vote-button"]`}, Kind: extract.Integer},
				{Field: "tags", Selectors: []string{`a[href^="/topics/"]`}, Kind: extract.TextList, Dedupe: true},
			},
		},
	}
}
