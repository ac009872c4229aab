package sites

import (
	"testing"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/pkg/models"
)

func TestRegisterAll(t *testing.T) {
	registry := agent.NewRegistry()
	if err := RegisterAll(registry); err != nil {
		t.Fatalf("register: %v", err)
	}

	specs := registry.List()
	if len(specs) != 9 {
		t.Fatalf("registered %d agents, want 9", len(specs))
	}
	for _, spec := range specs {
		if spec.RecordsField == "" {
			t.Errorf("%s: records field must be set", spec.Name)
		}
		if spec.Table == nil || len(spec.Table.FragmentSelectors) == 0 {
			t.Errorf("%s: rule table must carry fragment selectors", spec.Name)
			continue
		}
		hasName := false
		for _, rule := range spec.Table.Fields {
			if rule.Field == "name" {
				hasName = true
			}
		}
		if !hasName {
			t.Errorf("%s: rule table must extract a name", spec.Name)
		}
	}
	if _, ok := registry.Get("BetaList"); !ok {
		t.Error("lookup must be case-insensitive")
	}
}

func TestBetaListGoldenFragment(t *testing.T) {
	fragment := `<div class="block" id="startup-98265">
		<a class="block" href="/startups/simcardo"><img src="https://betalist.imgix.net/simcardo.png"></a>
		<a class="block font-medium" href="/startups/simcardo">Simcardo</a>
		<a class="block text-gray-500" href="/startups/simcardo">Travel eSIM data plans without roaming fees</a>
		<a class="pill" href="/topics/travel">Travel</a>
		<a class="pill" href="/topics/travel">Travel</a>
		<a class="cta" href="https://simcardo.com">Visit site</a>
	</div>`

	record := extract.Parse(fragment, "https://betalist.com/", BetaList().Table)
	if record == nil {
		t.Fatal("golden fragment must parse")
	}
	if record.Name != "Simcardo" {
		t.Errorf("name = %q", record.Name)
	}
	if record.URL != "https://betalist.com/startups/simcardo" {
		t.Errorf("url = %q", record.URL)
	}
	if record.Description != "Travel eSIM data plans without roaming fees" {
		t.Errorf("description = %q", record.Description)
	}
	if record.Website != "https://simcardo.com" {
		t.Errorf("website = %q", record.Website)
	}
	if len(record.Tags) != 1 || record.Tags[0] != "Travel" {
		t.Errorf("tags = %v, want deduplicated topics", record.Tags)
	}
	if record.LogoURL != "https://betalist.imgix.net/simcardo.png" {
		t.Errorf("logo = %q", record.LogoURL)
	}
}

func TestProductHuntGoldenFragment(t *testing.T) {
	fragment := `<section data-test="post-item-1039459">
		<a href="/products/notionforms">NotionForms</a>
		<div class="text-16 font-normal text-dark-gray text-secondary">Build forms backed by Notion</div>
		<a href="/topics/productivity">Productivity</a>
		<a href="/topics/no-code">No-Code</a>
		<button data-test="vote-button">1,248</button>
	</section>`

	record := extract.Parse(fragment, "https://www.producthunt.com/", ProductHunt().Table)
	if record == nil {
		t.Fatal("golden fragment must parse")
	}
	if record.Name != "NotionForms" {
		t.Errorf("name = %q", record.Name)
	}
	if record.URL != "https://www.producthunt.com/products/notionforms" {
		t.Errorf("url = %q", record.URL)
	}
	if record.Rank != 1039459 {
		t.Errorf("rank = %d, want the post-item id", record.Rank)
	}
	if record.Votes != 1248 {
		t.Errorf("votes = %d", record.Votes)
	}
	if len(record.Tags) != 2 {
		t.Errorf("tags = %v", record.Tags)
	}
}

func TestAppSumoGoldenFragment(t *testing.T) {
	fragment := `<div class="relative h-full">
		<a href="/products/acme-crm/" aria-label="Acme CRM">
			<img alt="Acme CRM" src="https://cdn.appsumo.com/acme.png">
		</a>
		<span class="sr-only">Acme CRM</span>
		<div class="line-clamp-2">Manage your pipeline without spreadsheets</div>
		<span id="deal-price">$69</span>
		<span id="deal-price-original">$588</span>
		<a href="/products/acme-crm/#reviews"><span>123 reviews</span></a>
		<img alt="4.8 stars" src="https://cdn.appsumo.com/stars.png">
	</div>`

	record := extract.Parse(fragment, "https://appsumo.com/collections/whats-hot/", AppSumoHot().Table)
	if record == nil {
		t.Fatal("golden fragment must parse")
	}
	if record.Name != "Acme CRM" {
		t.Errorf("name = %q", record.Name)
	}
	if record.URL != "https://appsumo.com/products/acme-crm/" {
		t.Errorf("url = %q", record.URL)
	}
	if record.Price != "$69" || record.OriginalPrice != "$588" {
		t.Errorf("price = %q / %q", record.Price, record.OriginalPrice)
	}
	if record.Reviews != 123 {
		t.Errorf("reviews = %d", record.Reviews)
	}
	if record.Rating != 4.8 {
		t.Errorf("rating = %v", record.Rating)
	}
	if record.LogoURL != "https://cdn.appsumo.com/acme.png" {
		t.Errorf("logo = %q", record.LogoURL)
	}
}

func TestAppSumoVariantsShareMarkupRules(t *testing.T) {
	hot, nu := AppSumoHot(), AppSumoNew()
	if hot.Name == nu.Name || hot.DefaultURL == nu.DefaultURL {
		t.Fatalf("variants must differ in name and URL: %q/%q", hot.Name, nu.Name)
	}
	if len(hot.Table.Fields) != len(nu.Table.Fields) {
		t.Error("variants must share the card rules")
	}
}

func TestFutureToolsGoldenFragment(t *testing.T) {
	fragment := `<li class="tool-item">
		<a href="/tools/magic-writer"><div class="tool-item-title">Magic Writer</div></a>
		<div class="tool-item-description">Writes product copy from bullet points</div>
		<a href="/tags/copywriting">Copywriting</a>
	</li>`

	record := extract.Parse(fragment, "https://www.futuretools.io/", FutureTools().Table)
	if record == nil {
		t.Fatal("golden fragment must parse")
	}
	if record.Name != "Magic Writer" {
		t.Errorf("name = %q", record.Name)
	}
	if record.URL != "https://www.futuretools.io/tools/magic-writer" {
		t.Errorf("url = %q", record.URL)
	}
	if record.Description != "Writes product copy from bullet points" {
		t.Errorf("description = %q", record.Description)
	}
}

func TestStationFGoldenFragment(t *testing.T) {
	fragment := `<div data-slot="drawer-trigger">
		<a href="/companies/acme-robotics">
			<div data-slot="item-title"><h5>Acme Robotics</h5></div>
			<div data-slot="item-description">Warehouse robots for small logistics teams</div>
		</a>
		<a href="https://acmerobotics.fr">acmerobotics.fr</a>
		<img src="/logos/acme.png">
	</div>`

	record := extract.Parse(fragment, "https://hal2.stationf.co/companies", StationF().Table)
	if record == nil {
		t.Fatal("golden fragment must parse")
	}
	if record.Name != "Acme Robotics" {
		t.Errorf("name = %q", record.Name)
	}
	if record.URL != "https://hal2.stationf.co/companies/acme-robotics" {
		t.Errorf("url = %q", record.URL)
	}
	if record.Website != "https://acmerobotics.fr" {
		t.Errorf("website = %q", record.Website)
	}
	if record.LogoURL != "https://hal2.stationf.co/logos/acme.png" {
		t.Errorf("logo = %q", record.LogoURL)
	}
}

func TestDeeptechGoldenFragment(t *testing.T) {
	fragment := `<div class="table-list-item">
		<img class="responsive-img" src="https://img.lesdeeptech.fr/logos/quantix.png">
		<a data-testid="internal" href="/companies/quantix">Quantix</a>
		<p class="text-neutral-400">Quantum error correction chips</p>
		<p class="text-sm">42</p>
		<div class="companyMarket">
			<ul class="item-list-column item-list-column--horizontal">
				<li><a data-testid="internal" href="/companies?market=b2b">B2B</a></li>
			</ul>
			<ul class="item-list-column">
				<li><a data-testid="internal" href="/companies?industry=health">health</a></li>
				<li><a data-testid="internal" href="/companies?industry=biotechnology">biotechnology</a></li>
			</ul>
		</div>
		<div class="business-type-column"><a data-testid="internal" href="/companies?type=manufacturing">manufacturing</a></div>
		<div class="companyEmployees"><div class="growth-line-chart__hover-content"><span class="growth-line-chart__value">2-10 employees</span></div></div>
		<div class="launchDate"><time datetime="2023-04-01">2023</time></div>
		<div class="hqLocations">La Ciotat, France</div>
		<div class="growthStage"><span>seed</span></div>
	</div>`

	record := extract.Parse(fragment, "https://observatoire.lesdeeptech.fr/companies", Deeptech().Table)
	if record == nil {
		t.Fatal("golden fragment must parse")
	}
	if record.Name != "Quantix" {
		t.Errorf("name = %q", record.Name)
	}
	if record.URL != "https://observatoire.lesdeeptech.fr/companies/quantix" {
		t.Errorf("url = %q", record.URL)
	}
	if record.Description != "Quantum error correction chips" {
		t.Errorf("description = %q", record.Description)
	}
	if record.Rank != 42 {
		t.Errorf("rank = %d", record.Rank)
	}
	if record.Sector != "B2B" {
		t.Errorf("sector = %q, want the market column", record.Sector)
	}
	if len(record.Tags) != 2 || record.Tags[0] != "health" || record.Tags[1] != "biotechnology" {
		t.Errorf("tags = %v, want the industries only", record.Tags)
	}
	if len(record.Badges) != 1 || record.Badges[0] != "manufacturing" {
		t.Errorf("badges = %v, want the business types", record.Badges)
	}
	if record.Employees != "2-10 employees" {
		t.Errorf("employees = %q", record.Employees)
	}
	if record.FoundedYear != 2023 {
		t.Errorf("founded year = %d", record.FoundedYear)
	}
	if record.Location != "La Ciotat, France" {
		t.Errorf("location = %q", record.Location)
	}
	if record.Stage != "seed" {
		t.Errorf("stage = %q", record.Stage)
	}
	if record.LogoURL != "https://img.lesdeeptech.fr/logos/quantix.png" {
		t.Errorf("logo = %q", record.LogoURL)
	}
}

func TestDeeptechRequiresExplicitURL(t *testing.T) {
	if url := Deeptech().DefaultURL; url != "" {
		t.Errorf("directory views are per-filter, default URL must stay empty, got %q", url)
	}
}

func TestZoneSecureNavigationNoiseFilter(t *testing.T) {
	records := []models.Record{
		{Name: "Sommaire"},
		{Name: "OngletsRetour au document"},
		{Name: "Acme Robotics", Description: "Des robots pour la logistique"},
		{Name: "axelera"},
		{Name: "Dataiku"},
		{Name: "Santé Biotech"},
	}

	kept := dropNavigationNoise(records, models.RunInput{})
	if len(kept) != 2 {
		t.Fatalf("kept = %+v", kept)
	}
	if kept[0].Name != "Acme Robotics" || kept[1].Name != "Dataiku" {
		t.Errorf("kept = %+v", kept)
	}
}

func TestRecencyFilter(t *testing.T) {
	records := []models.Record{
		{Name: "Fresh", Badges: []string{"2 days ago"}},
		{Name: "Today", Badges: []string{"today"}},
		{Name: "Stale", Badges: []string{"12 days ago"}},
		{Name: "Undated"},
	}

	kept := recencyFilter(records, models.RunInput{LastDays: 3})
	if len(kept) != 3 {
		t.Fatalf("kept = %+v", kept)
	}
	for _, record := range kept {
		if record.Name == "Stale" {
			t.Error("stale record must be dropped")
		}
	}

	all := recencyFilter([]models.Record{
		{Name: "Stale", Badges: []string{"12 days ago"}},
	}, models.RunInput{})
	if len(all) != 1 {
		t.Error("zero window must disable the filter")
	}
}

func TestSanitizeRecord(t *testing.T) {
	record := &models.Record{
		Name:        "  Acme   Corp ",
		Website:     "Visit www.acme.com for details",
		LinkedInURL: "acme.com/in/founder",
		Notes:       []string{"   ", "seen on page 2"},
	}
	if !sanitizeRecord(record) {
		t.Fatal("named record must survive")
	}
	if record.Name != "Acme Corp" {
		t.Errorf("name = %q", record.Name)
	}
	if record.Website != "https://www.acme.com" {
		t.Errorf("website = %q", record.Website)
	}
	if record.LinkedInURL != "" {
		t.Errorf("relative linkedin url must be dropped, got %q", record.LinkedInURL)
	}
	if len(record.Notes) != 1 || record.Notes[0] != "seen on page 2" {
		t.Errorf("notes = %v", record.Notes)
	}

	if sanitizeRecord(&models.Record{Name: "   "}) {
		t.Error("nameless record must be rejected")
	}
}
