package recovery

import "testing"

func TestParseMarkdownTables_HeaderAliases(t *testing.T) {
	output := `Here is what I found:

| Rank | Startup Name | Tagline | Tags |
|------|--------------|---------|------|
| 1 | Acme | Rockets for coyotes | Hardware, Space |
| 2 | Beta Corp | Boring software | SaaS |
`
	records := parseMarkdownTables([]string{output})
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Name != "Acme" || records[0].Rank != 1 {
		t.Errorf("first record = %+v", records[0])
	}
	if records[0].Description != "Rockets for coyotes" {
		t.Errorf("tagline must map to description, got %q", records[0].Description)
	}
	if len(records[0].Tags) != 2 || records[0].Tags[1] != "Space" {
		t.Errorf("tags = %v", records[0].Tags)
	}
}

func TestParseMarkdownTables_SkipsProseRankRows(t *testing.T) {
	output := `| Rank | Name |
|---|---|
| 1 | Acme |
| continued below | Name |
| two | Ghost |
| 2 | Beta |
`
	records := parseMarkdownTables([]string{output})
	if len(records) != 2 {
		t.Fatalf("records = %+v, want only numeric-rank rows", records)
	}
	if records[0].Name != "Acme" || records[1].Name != "Beta" {
		t.Errorf("records = %+v", records)
	}
}

func TestParseMarkdownTables_AccumulatesAcrossOutputsAndDedupes(t *testing.T) {
	first := "| Name | Description |\n|---|---|\n| Acme | first |\n"
	second := "| Name | Description |\n|---|---|\n| ACME | richer duplicate |\n| Beta | b |\n"

	records := parseMarkdownTables([]string{first, second})
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Description != "first" {
		t.Errorf("first occurrence must win, got %+v", records[0])
	}
}

func TestParseMarkdownTables_IgnoresNamelessTables(t *testing.T) {
	output := "| Step | Result |\n|---|---|\n| 1 | scrolled |\n"
	if records := parseMarkdownTables([]string{output}); len(records) != 0 {
		t.Errorf("table without a name column must be ignored, got %+v", records)
	}
}

func TestParseBoldBlocks_FieldMapping(t *testing.T) {
	text := `**Simcardo**
- **Website:** https://simcardo.example
- **LinkedIn:** https://www.linkedin.com/company/simcardo
- **Sector:** Telecom
- **Funding:** Seed

**Beta Corp**
- **Description:** null
`
	records := parseBoldBlocks(text)
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	acme := records[0]
	if acme.Website != "https://simcardo.example" || acme.Sector != "Telecom" {
		t.Errorf("record = %+v", acme)
	}
	if acme.LinkedInURL == "" {
		t.Errorf("linkedin field lost: %+v", acme)
	}
	if len(acme.Notes) != 1 || acme.Notes[0] != "Funding: Seed" {
		t.Errorf("unmapped fields must land in notes, got %v", acme.Notes)
	}
	if records[1].Description != "" {
		t.Errorf("null placeholder must stay absent, got %q", records[1].Description)
	}
}

func TestParseBoldBlocks_SkipsSectionHeadings(t *testing.T) {
	text := `**Fiche complète**

**Acme**
- **Location:** Paris

**Short Notes**
`
	records := parseBoldBlocks(text)
	if len(records) != 1 || records[0].Name != "Acme" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Location != "Paris" {
		t.Errorf("location = %q", records[0].Location)
	}
}

func TestParseBoldBlocks_NumberedNames(t *testing.T) {
	text := "1. **Acme**\n2. **Name**: Beta Corp\n"
	records := parseBoldBlocks(text)
	if len(records) != 2 || records[0].Name != "Acme" || records[1].Name != "Beta Corp" {
		t.Fatalf("records = %+v", records)
	}
}
