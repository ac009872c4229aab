package recovery

import (
	"testing"

	"github.com/histia/harvest/pkg/models"
)

func TestRun_StructuredOutputWinsOverEverything(t *testing.T) {
	req := &Request{
		Payload: &Payload{
			Structured: models.NewReport("https://example.com/", []models.Record{{Name: "Direct"}}),
			FinalText:  `{"source_url":"https://example.com/","records":[{"name":"FromText"}]}`,
		},
		SourceURL:    "https://betalist.com/",
		RecordsField: "startups",
		Cap:          10,
	}

	report := Run(req)
	if len(report.Records) != 1 || report.Records[0].Name != "Direct" {
		t.Fatalf("records = %+v, want the structured output", report.Records)
	}
	if report.SourceURL != "https://betalist.com/" {
		t.Errorf("source url must be normalized to the request, got %q", report.SourceURL)
	}
	if report.RecordsField != "startups" {
		t.Errorf("records field = %q", report.RecordsField)
	}
}

func TestRun_StructuredWithOnlyNamelessRecordsFallsThrough(t *testing.T) {
	req := &Request{
		Payload: &Payload{
			Structured: &models.Report{
				SourceURL: "https://example.com/",
				Records:   []models.Record{{Description: "no name"}},
			},
			FinalText: `{"records":[{"name":"FromText"}]}`,
		},
		SourceURL: "https://example.com/",
		Cap:       10,
	}

	report := Run(req)
	if len(report.Records) != 1 || report.Records[0].Name != "FromText" {
		t.Fatalf("records = %+v, want fallthrough to final-text JSON", report.Records)
	}
}

func TestRun_FencedJSON(t *testing.T) {
	req := &Request{
		Payload: &Payload{
			FinalText: "Here are the results:\n```json\n{\"records\":[{\"name\":\"Fenced\"}]}\n```\nDone.",
		},
		SourceURL: "https://example.com/",
		Cap:       10,
	}

	report := Run(req)
	if len(report.Records) != 1 || report.Records[0].Name != "Fenced" {
		t.Fatalf("records = %+v", report.Records)
	}
}

func TestRun_LineOrientedTextNeverReachesSentinel(t *testing.T) {
	// Prose with bold name blocks must be caught by the bold-block rung,
	// not fall all the way through to the placeholder.
	req := &Request{
		Payload: &Payload{
			FinalText: "Extraction complete.\n\n" +
				"1. **Name**: Acme\n" +
				"- **Website:** https://acme.example\n" +
				"- **Description:** Rockets for coyotes\n\n" +
				"2. **Name**: Beta Corp\n" +
				"- **Description:** (not available)\n",
		},
		SourceURL: "https://example.com/",
		Cap:       10,
	}

	report := Run(req)
	if report.IsSentinel() {
		t.Fatal("bold-block text must not produce a sentinel report")
	}
	if len(report.Records) != 2 {
		t.Fatalf("records = %+v", report.Records)
	}
	if report.Records[0].Website != "https://acme.example" {
		t.Errorf("website = %q", report.Records[0].Website)
	}
	if report.Records[1].Description != "" {
		t.Errorf("placeholder value must stay absent, got %q", report.Records[1].Description)
	}
}

func TestRun_DoneActionPayload(t *testing.T) {
	req := &Request{
		Payload: &Payload{
			Actions: []Action{
				{Name: "scroll", Data: map[string]any{"down": true}},
				{Name: "done", Data: map[string]any{
					"source_url": "https://example.com/",
					"records":    []any{map[string]any{"name": "FromDone"}},
				}},
			},
		},
		SourceURL: "https://example.com/",
		Cap:       10,
	}

	report := Run(req)
	if len(report.Records) != 1 || report.Records[0].Name != "FromDone" {
		t.Fatalf("records = %+v", report.Records)
	}
}

func TestRun_ExhaustionYieldsSentinel(t *testing.T) {
	req := &Request{
		Payload:       &Payload{FinalText: "I was unable to load the page."},
		SourceURL:     "https://example.com/",
		FailureReason: "navigation timed out",
		Cap:           10,
	}

	report := Run(req)
	if !report.IsSentinel() {
		t.Fatalf("expected sentinel, got %+v", report)
	}
	if report.Notes != "navigation timed out" {
		t.Errorf("failure reason must be carried in notes, got %q", report.Notes)
	}
	if len(report.Records[0].Notes) == 0 || report.Records[0].Notes[0] != "navigation timed out" {
		t.Errorf("failure reason must be on the sentinel record, got %v", report.Records[0].Notes)
	}
}

func TestRun_FrenchSentinel(t *testing.T) {
	report := Run(&Request{
		Payload:   &Payload{},
		SourceURL: "https://www.zone-secure.net/",
		French:    true,
	})
	if !report.IsSentinel() {
		t.Fatal("expected sentinel")
	}
	if report.Records[0].Name != models.SentinelNameFR {
		t.Errorf("name = %q", report.Records[0].Name)
	}
}

func TestRun_CapAppliesToRecoveredReports(t *testing.T) {
	records := []models.Record{}
	for i := 0; i < 30; i++ {
		records = append(records, models.Record{Name: "S" + string(rune('A'+i))})
	}
	req := &Request{
		Payload:   &Payload{Structured: models.NewReport("u", records)},
		SourceURL: "https://example.com/",
		Cap:       5,
	}

	report := Run(req)
	if len(report.Records) != 5 {
		t.Fatalf("cap must bound recovered reports, got %d records", len(report.Records))
	}
}
