package extract

import (
	"encoding/json"
	"strings"

	"github.com/histia/harvest/pkg/models"
)

// DecodeScriptRecords parses a JSON array of objects mined from a page's
// inline scripts into records. Bootstrap payloads name their keys freely, so
// keys are matched case-insensitively through the same aliasing the markdown
// recovery applies to table headers. Objects without a usable name are
// dropped.
func DecodeScriptRecords(payload, baseURL string) []models.Record {
	var items []map[string]any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil
	}

	var records []models.Record
	for _, item := range items {
		if record := scriptRecord(item, baseURL); record != nil {
			records = append(records, *record)
		}
	}
	return records
}

func scriptRecord(item map[string]any, baseURL string) *models.Record {
	record := &models.Record{}
	for key, value := range item {
		switch strings.ToLower(key) {
		case "name", "title", "company", "startup", "product":
			if record.Name == "" {
				record.Name = NormalizeText(scriptString(value))
			}
		case "url", "link", "href", "permalink":
			if record.URL == "" {
				record.URL = ResolveURL(baseURL, scriptString(value))
			}
		case "website", "homepage":
			if record.Website == "" {
				record.Website = ResolveURL(baseURL, scriptString(value))
			}
		case "description", "tagline", "summary":
			if record.Description == "" {
				record.Description = NormalizeText(scriptString(value))
			}
		case "logo", "logo_url", "image":
			if record.LogoURL == "" {
				record.LogoURL = ResolveURL(baseURL, scriptString(value))
			}
		case "votes", "votes_count", "upvotes":
			record.Votes = scriptInt(value)
		case "rank", "ranking":
			record.Rank = scriptInt(value)
		case "tags", "topics", "categories":
			if len(record.Tags) == 0 {
				record.Tags = scriptStrings(value)
			}
		}
	}

	if record.Name == "" {
		return nil
	}
	return record
}

func scriptString(value any) string {
	s, _ := value.(string)
	return s
}

func scriptInt(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case string:
		if n, ok := FirstInt(v); ok {
			return n
		}
	}
	return 0
}

func scriptStrings(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	var values []string
	for _, item := range items {
		if text := NormalizeText(scriptString(item)); text != "" {
			values = append(values, text)
		}
	}
	return values
}
