package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/histia/harvest/pkg/models"
)

// Parse extracts one record from a card fragment. It is a pure function of
// its inputs: nil comes back when the fragment has no detectable name, and a
// field that fails to parse stays zero without affecting the rest of the
// record. The fragment is parsed as a body fragment, so partially rendered
// markup (lazy images, unclosed tags) is tolerated.
func Parse(fragment, baseURL string, table *RuleTable) *models.Record {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		log.Debug().Err(err).Msg("unparsable fragment skipped")
		return nil
	}
	root := doc.Selection

	record := &models.Record{}
	for _, rule := range table.Fields {
		applyField(record, root, rule, baseURL, table.AllowHost)
	}

	if record.Name == "" {
		return nil
	}
	return record
}

// applyField runs one rule against the fragment and writes the result into
// the record. First selector with a non-empty normalized value wins.
func applyField(record *models.Record, root *goquery.Selection, rule FieldRule, baseURL, allowHost string) {
	switch rule.Kind {
	case TextList:
		setListField(record, rule.Field, collectList(root, rule))
		return
	default:
	}

	raw := firstValue(root, rule)
	if raw == "" {
		return
	}

	switch rule.Kind {
	case Link:
		resolved := ResolveURL(baseURL, raw)
		if resolved == "" || !HostAllowed(resolved, allowHost) {
			return
		}
		setTextField(record, rule.Field, resolved)
	case Integer:
		if n, ok := FirstInt(raw); ok {
			setIntField(record, rule.Field, n)
		}
	case Decimal:
		if f, ok := FirstFloat(raw); ok {
			setFloatField(record, rule.Field, f)
		}
	default:
		setTextField(record, rule.Field, raw)
	}
}

// firstValue walks the rule's selector alternatives and returns the first
// non-empty normalized value, regex-narrowed when a pattern is set.
func firstValue(root *goquery.Selection, rule FieldRule) string {
	for _, selector := range rule.Selectors {
		sel := root.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		raw := readValue(sel, rule.Attr)
		value := NormalizeText(raw)
		if value == "" {
			continue
		}
		if rule.Pattern != nil {
			value = applyPattern(value, rule)
			if value == "" {
				continue
			}
		}
		return value
	}
	return ""
}

func applyPattern(value string, rule FieldRule) string {
	groups := rule.Pattern.FindStringSubmatch(value)
	if groups == nil {
		return ""
	}
	if len(groups) > 1 && groups[1] != "" {
		return groups[1]
	}
	return groups[0]
}

// readValue reads text content or the first present attribute from an
// "attr|fallback" list.
func readValue(sel *goquery.Selection, attr string) string {
	if attr == "" {
		return sel.Text()
	}
	for _, name := range strings.Split(attr, "|") {
		if v, ok := sel.Attr(strings.TrimSpace(name)); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// collectList gathers all matching texts in document order, blank entries
// removed. Duplicates are kept unless the rule opts into dedupe.
func collectList(root *goquery.Selection, rule FieldRule) []string {
	var values []string
	seen := map[string]struct{}{}
	for _, selector := range rule.Selectors {
		matched := false
		root.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := NormalizeText(readValue(sel, rule.Attr))
			if text == "" {
				return
			}
			matched = true
			if rule.Dedupe {
				key := strings.ToLower(text)
				if _, dup := seen[key]; dup {
					return
				}
				seen[key] = struct{}{}
			}
			values = append(values, text)
		})
		if matched {
			break
		}
	}
	return values
}

func setTextField(record *models.Record, field, value string) {
	switch field {
	case "name":
		record.Name = value
	case "url":
		record.URL = value
	case "website":
		record.Website = value
	case "linkedin_url":
		record.LinkedInURL = NormalizeLinkedIn(value)
	case "description":
		record.Description = value
	case "sector":
		record.Sector = value
	case "location":
		record.Location = value
	case "stage":
		record.Stage = value
	case "employees":
		record.Employees = value
	case "price":
		record.Price = value
	case "original_price":
		record.OriginalPrice = value
	case "logo_url":
		record.LogoURL = value
	default:
		log.Debug().Str("field", field).Msg("rule names unknown text field")
	}
}

func setIntField(record *models.Record, field string, value int) {
	switch field {
	case "rank":
		record.Rank = value
	case "votes":
		record.Votes = value
	case "comments":
		record.Comments = value
	case "reviews":
		record.Reviews = value
	case "founded_year":
		record.FoundedYear = value
	default:
		log.Debug().Str("field", field).Msg("rule names unknown integer field")
	}
}

func setFloatField(record *models.Record, field string, value float64) {
	switch field {
	case "rating":
		record.Rating = value
	default:
		log.Debug().Str("field", field).Msg("rule names unknown decimal field")
	}
}

func setListField(record *models.Record, field string, values []string) {
	if len(values) == 0 {
		return
	}
	switch field {
	case "tags":
		record.Tags = values
	case "badges":
		record.Badges = values
	case "notes":
		record.Notes = values
	default:
		log.Debug().Str("field", field).Msg("rule names unknown list field")
	}
}
