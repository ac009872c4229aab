package models

import (
	"encoding/json"
	"net/url"
	"strings"
)

// SentinelName marks the placeholder record emitted when every extraction
// strategy failed. The French variant is the placeholder the original reports
// shipped with; both are recognized when detecting fallback reports.
const (
	SentinelName   = "unavailable"
	SentinelNameFR = "Informations indisponibles"
)

// Report aggregates the records extracted from one source page. Records keep
// page order; ties are broken by first occurrence. A Report is never empty:
// on total failure it carries exactly one sentinel record.
type Report struct {
	SourceURL    string   `json:"source_url"`
	Records      []Record `json:"-"`
	PagesVisited []string `json:"pages_visited,omitempty"`
	Notes        string   `json:"notes,omitempty"`

	// RecordsField is the JSON key the record list is emitted under
	// ("startups", "products", "tools", ...). Empty defaults to "records".
	RecordsField string `json:"-"`
}

// NewReport builds a report for the given source with no metadata set.
func NewReport(sourceURL string, records []Record) *Report {
	return &Report{SourceURL: sourceURL, Records: records}
}

// SentinelReport builds the guaranteed non-empty failure report. The reason is
// carried both on the report and on the sentinel record so it survives callers
// that only look at the record list.
func SentinelReport(sourceURL, reason string) *Report {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "could not extract any records from the page"
	}
	return &Report{
		SourceURL: sourceURL,
		Records: []Record{{
			Name:  SentinelName,
			URL:   sourceURL,
			Notes: []string{reason, "report generated automatically after extraction failed"},
		}},
		Notes: reason,
	}
}

// IsSentinel reports whether this is a fallback report: a single placeholder
// record under either sentinel name.
func (r *Report) IsSentinel() bool {
	if r == nil || len(r.Records) != 1 {
		return false
	}
	name := r.Records[0].Name
	return name == SentinelName || name == SentinelNameFR
}

// Truncate drops records beyond cap, keeping encounter order. cap <= 0 leaves
// the report unchanged.
func (r *Report) Truncate(cap int) {
	if cap > 0 && len(r.Records) > cap {
		r.Records = r.Records[:cap]
	}
}

// MarshalJSON emits source_url as a plain string (structured URL types must
// never leak onto the wire) and the record list under RecordsField. Field
// order is fixed so serialization is idempotent.
func (r *Report) MarshalJSON() ([]byte, error) {
	field := r.RecordsField
	if field == "" {
		field = "records"
	}

	var buf strings.Builder
	buf.WriteByte('{')

	writeKey := func(key string) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
	}

	writeKey("source_url")
	src, err := json.Marshal(coerceURLString(r.SourceURL))
	if err != nil {
		return nil, err
	}
	buf.Write(src)

	writeKey(field)
	records := r.Records
	if records == nil {
		records = []Record{}
	}
	recs, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	buf.Write(recs)

	if len(r.PagesVisited) > 0 {
		writeKey("pages_visited")
		pages, err := json.Marshal(r.PagesVisited)
		if err != nil {
			return nil, err
		}
		buf.Write(pages)
	}

	if r.Notes != "" {
		writeKey("notes")
		notes, _ := json.Marshal(r.Notes)
		buf.Write(notes)
	}

	buf.WriteByte('}')
	return []byte(buf.String()), nil
}

// recordListKeys are the per-agent names the record list may travel under.
var recordListKeys = []string{"records", "startups", "products", "tools", "companies"}

// UnmarshalJSON accepts a report whose record list sits under any of the known
// per-agent keys. The first recognized key that holds a non-null array wins.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		SourceURL    string          `json:"source_url"`
		PagesVisited []string        `json:"pages_visited"`
		Notes        string          `json:"notes"`
		Records      json.RawMessage `json:"records"`
		Startups     json.RawMessage `json:"startups"`
		Products     json.RawMessage `json:"products"`
		Tools        json.RawMessage `json:"tools"`
		Companies    json.RawMessage `json:"companies"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.SourceURL = raw.SourceURL
	r.PagesVisited = raw.PagesVisited
	r.Notes = raw.Notes
	r.Records = nil

	lists := map[string]json.RawMessage{
		"records":   raw.Records,
		"startups":  raw.Startups,
		"products":  raw.Products,
		"tools":     raw.Tools,
		"companies": raw.Companies,
	}
	for _, key := range recordListKeys {
		blob := lists[key]
		if len(blob) == 0 || string(blob) == "null" {
			continue
		}
		var records []Record
		if err := json.Unmarshal(blob, &records); err != nil {
			return err
		}
		r.Records = records
		r.RecordsField = key
		return nil
	}
	return nil
}

// coerceURLString round-trips the value through net/url so a valid URL comes
// back in canonical string form; anything unparsable passes through as-is.
func coerceURLString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}
