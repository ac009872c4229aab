package extract

import (
	"strings"

	"github.com/histia/harvest/pkg/models"
)

// Deduplicator collapses duplicate records by case-insensitive name, or by
// (name, url) when widened. First-seen-wins: a later duplicate is dropped
// even when it carries more fields. The original agents behaved this way and
// the policy is preserved as-is.
type Deduplicator struct {
	seen  map[string]struct{}
	byURL bool
}

// NewDeduplicator returns an empty deduplicator. byURL widens the key from
// name-only to the (name, url) composite.
func NewDeduplicator(byURL bool) *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{}), byURL: byURL}
}

// Observe registers the record and reports whether it is the first occurrence
// of its key.
func (d *Deduplicator) Observe(record *models.Record) bool {
	key := strings.ToLower(strings.TrimSpace(record.Name))
	if d.byURL {
		key += "\x00" + record.URL
	}
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Assemble maps Parse over the fragments in page order, drops nameless ones,
// deduplicates first-seen-wins and truncates to cap. A fragment that is a
// JSON array rather than markup is a payload mined from inline scripts and
// decodes through the key aliases instead of the rule table. Nil when nothing
// survives, so the caller can fall through to the recovery chain.
func Assemble(fragments []string, baseURL string, cap int, table *RuleTable) *models.Report {
	dedup := NewDeduplicator(table.DedupeByURL)

	var records []models.Record
	full := func() bool { return cap > 0 && len(records) >= cap }

	for _, fragment := range fragments {
		if full() {
			break
		}
		trimmed := strings.TrimSpace(fragment)
		if strings.HasPrefix(trimmed, "[") {
			for _, mined := range DecodeScriptRecords(trimmed, baseURL) {
				if full() {
					break
				}
				if dedup.Observe(&mined) {
					records = append(records, mined)
				}
			}
			continue
		}
		record := Parse(fragment, baseURL, table)
		if record == nil {
			continue
		}
		if !dedup.Observe(record) {
			continue
		}
		records = append(records, *record)
	}

	if len(records) == 0 {
		return nil
	}
	return models.NewReport(baseURL, records)
}
