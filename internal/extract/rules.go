// Package extract turns listing-card HTML fragments into typed records.
//
// Parsing is driven by per-site rule tables rather than per-site code: each
// field is described by an ordered list of selector alternatives plus an
// attribute (or text) to read and an optional regex to narrow the value.
// Adding a new site means adding a new table, not a new parser.
package extract

import "regexp"

// ValueKind tells the parser how to post-process the raw selector value.
type ValueKind int

const (
	// Text keeps the whitespace-normalized text or attribute value.
	Text ValueKind = iota
	// Link resolves the value as a URL against the fragment's page.
	Link
	// Integer extracts the first run of digits, thousands separators stripped.
	Integer
	// Decimal extracts the first floating-point-looking substring.
	Decimal
	// TextList collects all matching element texts in document order.
	TextList
)

// FieldRule extracts one record field. Selectors are tried in order; the first
// that yields non-empty normalized text wins and later alternatives are not
// consulted.
type FieldRule struct {
	// Field names the Record field this rule feeds. See applyField for the
	// accepted names.
	Field string
	// Selectors are CSS selector alternatives, most specific first.
	Selectors []string
	// Attr reads an attribute instead of text content. For Link rules an
	// empty Attr defaults to href. "src|data-src" style alternatives are
	// tried left to right.
	Attr string
	// Pattern optionally narrows the matched text; capture group 1 is used
	// when present, otherwise the whole match.
	Pattern *regexp.Regexp
	// Kind selects post-processing. Zero value is Text.
	Kind ValueKind
	// Dedupe drops repeated values within a single list field, keeping the
	// first occurrence. Only meaningful for TextList rules whose selector
	// pattern is known to leak duplicates.
	Dedupe bool
}

// RuleTable is the complete parsing recipe for one site.
type RuleTable struct {
	// FragmentSelectors locate the listing cards on the live page, most
	// specific variant first. Used by the collector, carried here so one
	// table fully describes a site.
	FragmentSelectors []string
	// Fields are applied in order to each fragment.
	Fields []FieldRule
	// AllowHost rejects resolved URLs whose host does not end with this
	// suffix. Empty disables the filter.
	AllowHost string
	// DedupeByURL widens the dedup key from name-only to (name, url).
	DedupeByURL bool
}
