// Package output writes finished reports to files. The format follows the
// file extension: .csv and .md get tabular renderings, everything else the
// canonical JSON report.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/histia/harvest/pkg/models"
)

// Save writes the report to path in the format its extension selects.
func Save(report *models.Report, path string) error {
	var content []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		content, err = RenderCSV(report)
	case ".md", ".markdown":
		content = []byte(RenderMarkdown(report))
	default:
		content, err = RenderJSON(report)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// RenderJSON emits the canonical report document.
func RenderJSON(report *models.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// csvColumns is the fixed record-to-row mapping. Multi-value fields are
// joined with "; " so a row stays one line.
var csvColumns = []string{
	"name", "url", "website", "description", "sector", "location",
	"price", "original_price", "rank", "votes", "reviews", "rating", "tags",
}

// RenderCSV emits one row per record under a fixed header.
func RenderCSV(report *models.Report) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvColumns); err != nil {
		return nil, err
	}
	for _, record := range report.Records {
		row := []string{
			record.Name,
			record.URL,
			record.Website,
			record.Description,
			record.Sector,
			record.Location,
			record.Price,
			record.OriginalPrice,
			formatInt(record.Rank),
			formatInt(record.Votes),
			formatInt(record.Reviews),
			formatFloat(record.Rating),
			strings.Join(record.Tags, "; "),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return []byte(buf.String()), writer.Error()
}

// RenderMarkdown emits a GitHub-flavored table preceded by the source URL.
func RenderMarkdown(report *models.Report) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "# Extraction report\n\nSource: <%s>\n\n", report.SourceURL)

	buf.WriteString("| Name | URL | Description | Tags |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, record := range report.Records {
		fmt.Fprintf(&buf, "| %s | %s | %s | %s |\n",
			escapeCell(record.Name),
			escapeCell(record.URL),
			escapeCell(record.Description),
			escapeCell(strings.Join(record.Tags, ", ")),
		)
	}

	if report.Notes != "" {
		fmt.Fprintf(&buf, "\n%s\n", report.Notes)
	}
	return buf.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
