// Package agent ties the pipeline together: one Spec per listing site, a
// read-only registry, and a Runner that walks a page from navigation to a
// finished report. A run never ends without a report; total failure still
// yields the sentinel.
package agent

import (
	"time"

	"github.com/histia/harvest/internal/browser"
	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/pkg/models"
)

// ScrollPolicy tunes the stabilization poll for a site's lazy loading.
type ScrollPolicy struct {
	// MaxRounds bounds the scroll loop. Zero means the site renders in one
	// screen and no scrolling happens.
	MaxRounds int
	// Patience is the number of consecutive no-growth rounds that end the
	// poll early.
	Patience int
	// Interval is the settle delay after each scroll step.
	Interval time.Duration
}

// Spec declares everything site-specific as data. Adding a site means adding
// a Spec, not code paths.
type Spec struct {
	Name        string
	Description string
	// DefaultURL is the listing page used when the caller gives none.
	DefaultURL string
	// RecordsField is the JSON key the report's record list is emitted
	// under ("products", "startups", "tools", ...).
	RecordsField string
	// Table drives the Record Parser for this site's cards.
	Table *extract.RuleTable
	// Scroll is the lazy-load policy.
	Scroll ScrollPolicy
	// DefaultCap bounds the record count when the caller gives none.
	DefaultCap int
	// StaticFirst sites render server-side; try plain HTTP before paying
	// for a browser context.
	StaticFirst bool
	// NeedsLogin sites require credentials before the listing renders.
	NeedsLogin bool
	// LoginForm locates the credential form when NeedsLogin is set.
	LoginForm browser.LoginForm
	// OverlaySelectors are cookie banners and modals dismissed after
	// navigation, best effort.
	OverlaySelectors []string
	// French switches the sentinel placeholder to the French wording.
	French bool
	// Goal is the extraction instruction handed to the model on the
	// fallback path.
	Goal string
	// Sanitize, when set, post-processes each record in place and reports
	// whether to keep it. Runs after assembly and after recovery.
	Sanitize func(record *models.Record) bool
	// Filter, when set, prunes the assembled record list against the run
	// input (recency windows, navigation noise).
	Filter func(records []models.Record, input models.RunInput) []models.Record
}

// Cap resolves the effective record cap for a run.
func (s *Spec) Cap(input models.RunInput) int {
	if input.MaxRecords > 0 {
		return input.MaxRecords
	}
	if s.DefaultCap > 0 {
		return s.DefaultCap
	}
	return 50
}

// TargetURL resolves the effective listing URL for a run.
func (s *Spec) TargetURL(input models.RunInput) string {
	if input.URL != "" {
		return input.URL
	}
	return s.DefaultURL
}
