package sites

import (
	"strings"
	"time"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/pkg/models"
)

// ZoneSecure extracts startups from a French flipbook publication. The viewer
// renders page chrome alongside the content, so a navigation-noise filter runs
// after assembly. Reports from this agent use the French sentinel wording.
func ZoneSecure() *agent.Spec {
	return &agent.Spec{
		Name:         "zone_secure",
		Description:  "Zone Secure startup yearbook (French flipbook)",
		DefaultURL:   "https://fr.zone-secure.net/20412/2540033/#page=1",
		RecordsField: "startups",
		DefaultCap:   100,
		French:       true,
		Scroll: agent.ScrollPolicy{
			MaxRounds: 30,
			Patience:  3,
			Interval:  2 * time.Second,
		},
		OverlaySelectors: consentOverlaySelectors,
		Sanitize:         sanitizeRecord,
		Filter:           dropNavigationNoise,
		Goal: "Extract every startup presented in this French publication: " +
			"name, description, website, sector and location. Ignore the " +
			"viewer chrome (sommaire, onglets, plein écran).",
		Table: &extract.RuleTable{
			FragmentSelectors: []string{
				`article`,
				`div[class*="startup"]`,
				`div[class*="company"]`,
				`div[class*="card"]`,
				`div[class*="listing"]`,
			},
			Fields: []extract.FieldRule{
				{Field: "name", Selectors: []string{
					`h1`, `h2`, `h3`, `h4`, `h5`, `h6`,
					`[class*="name"]`,
					`[class*="title"]`,
					`a[href*="startup"]`,
					`a[href*="company"]`,
				}},
				{Field: "url", Selectors: []string{
					`a[href*="startup"]`,
					`a[href*="company"]`,
					`a[href]`,
				}, Attr: "href", Kind: extract.Link},
				{Field: "description", Selectors: []string{
					`[class*="description"]`,
					`[class*="tagline"]`,
					`[class*="summary"]`,
					`p`,
				}},
				{Field: "website", Selectors: []string{
					`a[href^="http"]:not([href*="zone-secure.net"])`,
				}, Attr: "href", Kind: extract.Link},
			},
		},
	}
}

// viewerVocabulary lists the flipbook chrome labels and section headings that
// leak into extraction as fake startup names.
var viewerVocabulary = []string{
	"forum", "remerciements", "plan", "sommaire",
	"rechercher", "partager", "télécharger", "plein écran",
	"onglets", "retour au document", "toutes les pages",
	"conseil audit", "construction & transport", "energie environnement",
	"finance banque assurance", "formation", "it digital", "public",
	"production supply chain", "santé biotech", "start-up", "startup",
}

// dropNavigationNoise removes viewer chrome and bare section headings. A short
// single lowercase word with no other field filled is page furniture, not a
// company.
func dropNavigationNoise(records []models.Record, _ models.RunInput) []models.Record {
	kept := records[:0]
	for _, record := range records {
		if isNavigationNoise(&record) {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}

func isNavigationNoise(record *models.Record) bool {
	name := strings.ToLower(strings.TrimSpace(record.Name))
	if name == "" {
		return true
	}
	for _, word := range viewerVocabulary {
		if strings.Contains(name, word) {
			return true
		}
	}

	hasDetail := record.Description != "" ||
		record.Website != "" ||
		record.URL != "" ||
		record.Sector != "" ||
		record.Location != "" ||
		record.Employees != "" ||
		record.LogoURL != "" ||
		record.FoundedYear != 0 ||
		len(record.Tags) > 0
	if hasDetail {
		return false
	}
	if len(name) >= 15 {
		return false
	}
	// A lone lowercase word with nothing else filled is page furniture;
	// capitalized single-word names still pass as plausible companies.
	trimmed := strings.TrimSpace(record.Name)
	return len(strings.Fields(trimmed)) == 1 && trimmed == strings.ToLower(trimmed)
}
