package recovery

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/histia/harvest/pkg/models"
)

// fencedJSONPattern captures the body of the first ```json fenced block. The
// language tag is optional; many agents emit bare fences.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseReportJSON decodes text as a report object and keeps it only if at
// least one named record survives. Nameless records are dropped, not repaired.
func parseReportJSON(text string) *models.Report {
	text = strings.TrimSpace(text)
	if text == "" || !strings.HasPrefix(text, "{") {
		return nil
	}

	var report models.Report
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil
	}
	report.Records = namedOnly(report.Records)
	if len(report.Records) == 0 {
		return nil
	}
	return &report
}

// parseFencedJSON extracts the first fenced JSON block from markdown-flavoured
// final text and decodes it as a report.
func parseFencedJSON(text string) *models.Report {
	match := fencedJSONPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	return parseReportJSON(match[1])
}

// parseDonePayload validates the data attached to a terminal done action.
// URL-typed leaves are stringified first, then the payload is re-marshalled
// through the report schema so only known fields survive.
func parseDonePayload(data any) *models.Report {
	flattened := stringifyURLLeaves(data)
	raw, err := json.Marshal(flattened)
	if err != nil {
		return nil
	}
	return parseReportJSON(string(raw))
}

func namedOnly(records []models.Record) []models.Record {
	kept := records[:0]
	for _, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}
