package recovery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/pkg/models"
)

// Header labels agents use interchangeably across runs. Matching is done on
// the lowercased, trimmed cell text.
var headerAliases = map[string]string{
	"name":         "name",
	"startup name": "name",
	"startup":      "name",
	"company":      "name",
	"company name": "name",
	"product":      "name",
	"product name": "name",
	"tool":         "name",
	"tool name":    "name",
	"title":        "name",
	"url":          "url",
	"link":         "url",
	"listing url":  "url",
	"website":      "website",
	"website url":  "website",
	"description":  "description",
	"tagline":      "description",
	"summary":      "description",
	"tags":         "tags",
	"categories":   "tags",
	"category":     "tags",
	"sector":       "sector",
	"location":     "location",
	"stage":        "stage",
	"rank":         "rank",
	"#":            "rank",
	"position":     "rank",
	"votes":        "votes",
	"upvotes":      "votes",
	"price":        "price",
}

var tableSeparatorPattern = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)

// parseMarkdownTables scans the outputs oldest first, collects every row of
// every recognizable table and deduplicates by name. Tables without a
// name-like header column are ignored.
func parseMarkdownTables(outputs []string) []models.Record {
	dedup := extract.NewDeduplicator(false)
	var records []models.Record

	for _, output := range outputs {
		for _, table := range splitTables(output) {
			for _, record := range parseTable(table) {
				r := record
				if dedup.Observe(&r) {
					records = append(records, r)
				}
			}
		}
	}
	return records
}

// splitTables groups consecutive pipe-delimited lines into candidate tables.
func splitTables(text string) [][]string {
	var tables [][]string
	var current []string

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2 {
			current = append(current, trimmed)
			continue
		}
		flush()
	}
	flush()
	return tables
}

func parseTable(lines []string) []models.Record {
	columns := mapHeader(splitRow(lines[0]))
	nameCol, ok := columns["name"]
	if !ok {
		return nil
	}
	rankCol, hasRank := columns["rank"]

	var records []models.Record
	for _, line := range lines[1:] {
		if tableSeparatorPattern.MatchString(line) {
			continue
		}
		cells := splitRow(line)
		if nameCol >= len(cells) {
			continue
		}
		name := cleanCell(cells[nameCol])
		if name == "" || isHeaderEcho(name) {
			continue
		}
		// A rank column full of prose means the agent repeated headings or
		// commentary inside the table body.
		if hasRank && rankCol < len(cells) {
			if _, err := strconv.Atoi(cleanCell(cells[rankCol])); err != nil {
				continue
			}
		}

		record := models.Record{Name: name}
		for field, col := range columns {
			if col >= len(cells) {
				continue
			}
			value := cleanCell(cells[col])
			if value == "" {
				continue
			}
			switch field {
			case "url":
				record.URL = value
			case "website":
				record.Website = value
			case "description":
				record.Description = value
			case "sector":
				record.Sector = value
			case "location":
				record.Location = value
			case "stage":
				record.Stage = value
			case "price":
				record.Price = value
			case "tags":
				record.Tags = splitTags(value)
			case "votes":
				if n, ok := extract.FirstInt(value); ok {
					record.Votes = n
				}
			case "rank":
				if n, err := strconv.Atoi(value); err == nil {
					record.Rank = n
				}
			}
		}
		records = append(records, record)
	}
	return records
}

func mapHeader(cells []string) map[string]int {
	columns := make(map[string]int)
	for i, cell := range cells {
		if field, ok := headerAliases[strings.ToLower(cleanCell(cell))]; ok {
			if _, taken := columns[field]; !taken {
				columns[field] = i
			}
		}
	}
	return columns
}

func splitRow(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	return strings.Split(line, "|")
}

func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.Trim(cell, "*")
	cell = strings.TrimSpace(cell)
	if isNullValue(cell) {
		return ""
	}
	return cell
}

func isHeaderEcho(name string) bool {
	_, ok := headerAliases[strings.ToLower(name)]
	return ok
}

func splitTags(value string) []string {
	var tags []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' }) {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

var (
	numberedNamePattern = regexp.MustCompile(`^\d+\.\s*\*\*(?:Name\s*:?\s*\*\*\s*:?\s*(.+)|([^*]+)\*\*\s*$)`)
	boldNamePattern     = regexp.MustCompile(`^\*\*Name\*?\*?\s*:\s*\*?\*?\s*(.+?)\*{0,2}\s*$`)
	standaloneBold      = regexp.MustCompile(`^\*\*([^*]+)\*\*\s*$`)
	fieldLinePattern    = regexp.MustCompile(`^[-*]?\s*\*\*([^*]+?)\s*:?\s*\*\*\s*:?\s*(.*)$`)
)

// Section headings that introduce prose around the records, not a record.
var sectionHeadings = []string{"fiche", "galerie", "notes", "short notes", "summary", "extraction"}

// parseBoldBlocks handles the loosest agent output: records written as bold
// name lines followed by bold field lines, one field per line.
func parseBoldBlocks(text string) []models.Record {
	dedup := extract.NewDeduplicator(false)
	var records []models.Record
	var current *models.Record

	flush := func() {
		if current != nil && strings.TrimSpace(current.Name) != "" && dedup.Observe(current) {
			records = append(records, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if name := matchRecordStart(line); name != "" {
			flush()
			current = &models.Record{Name: name}
			continue
		}
		if current == nil {
			continue
		}
		if match := fieldLinePattern.FindStringSubmatch(line); match != nil {
			applyBoldField(current, match[1], match[2])
		}
	}
	flush()
	return records
}

func matchRecordStart(line string) string {
	if match := numberedNamePattern.FindStringSubmatch(line); match != nil {
		name := match[1]
		if name == "" {
			name = match[2]
		}
		return cleanCell(name)
	}
	if match := boldNamePattern.FindStringSubmatch(line); match != nil {
		return cleanCell(match[1])
	}
	if match := standaloneBold.FindStringSubmatch(line); match != nil {
		name := cleanCell(match[1])
		if name == "" || isSectionHeading(name) || strings.Contains(name, ":") {
			return ""
		}
		return name
	}
	return ""
}

func isSectionHeading(name string) bool {
	lower := strings.ToLower(name)
	for _, heading := range sectionHeadings {
		if strings.Contains(lower, heading) {
			return true
		}
	}
	return false
}

func applyBoldField(record *models.Record, label, value string) {
	value = strings.TrimSpace(value)
	if isNullValue(value) {
		return
	}

	switch strings.ToLower(strings.TrimSpace(label)) {
	case "name":
		if record.Name == "" {
			record.Name = value
		}
	case "url", "link", "listing url":
		record.URL = value
	case "website", "website url", "site":
		record.Website = value
	case "linkedin", "linkedin url":
		record.LinkedInURL = value
	case "description", "tagline", "summary":
		record.Description = value
	case "sector", "industry":
		record.Sector = value
	case "location":
		record.Location = value
	case "stage":
		record.Stage = value
	case "employees", "team size":
		record.Employees = value
	case "price":
		record.Price = value
	case "tags", "categories":
		record.Tags = splitTags(value)
	default:
		if value != "" {
			record.Notes = append(record.Notes, strings.TrimSpace(label)+": "+value)
		}
	}
}

// Placeholder values agents emit for fields they could not find.
func isNullValue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "null", "none", "n/a", "-", "--",
		"(not available)", "not available",
		"(not specified)", "not specified",
		"(no description provided)":
		return true
	}
	return false
}
