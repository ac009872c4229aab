package sites

import (
	"strings"

	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/pkg/models"
)

// sanitizeRecord normalizes one record in place and reports whether it
// survives. URL fields that did not come through the rule parser (model
// fallback output) can carry prose around the actual address; those are
// salvaged rather than dropped. A record that loses its name is rejected.
func sanitizeRecord(record *models.Record) bool {
	record.Name = extract.NormalizeText(record.Name)
	if record.Name == "" {
		return false
	}

	record.URL = repairURL(record.URL)
	record.Website = repairURL(record.Website)
	record.LogoURL = repairURL(record.LogoURL)
	record.LinkedInURL = extract.NormalizeLinkedIn(record.LinkedInURL)

	notes := record.Notes[:0]
	for _, note := range record.Notes {
		if trimmed := extract.NormalizeText(note); trimmed != "" {
			notes = append(notes, trimmed)
		}
	}
	if len(notes) == 0 {
		notes = nil
	}
	record.Notes = notes
	return true
}

// repairURL keeps well-formed absolute URLs and tries to pull an address out
// of anything else. Values with nothing URL-shaped inside come back empty.
func repairURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if !strings.ContainsAny(raw, " \t") {
			return raw
		}
	}
	return extract.SalvageURL(raw)
}
