package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/histia/harvest/internal/browser"
	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/pkg/models"
)

// fakeSession serves canned fragments and page HTML.
type fakeSession struct {
	fragments []string
	pageHTML  string
	navErr    error
	loggedIn  bool
	navigated string
}

func (s *fakeSession) Navigate(_ context.Context, pageURL string) error {
	s.navigated = pageURL
	return s.navErr
}

func (s *fakeSession) Evaluate(_ context.Context, expression string) (string, error) {
	if strings.Contains(expression, ".length") {
		return "0", nil
	}
	raw, _ := json.Marshal(s.fragments)
	return string(raw), nil
}

func (s *fakeSession) ScrollStep(context.Context) error { return nil }

func (s *fakeSession) OuterHTML(context.Context) (string, error) { return s.pageHTML, nil }

func (s *fakeSession) DismissOverlays(context.Context, []string) {}

func (s *fakeSession) Login(_ context.Context, _ browser.LoginForm, email, password string) error {
	if email == "" || password == "" {
		return errors.New("missing credentials")
	}
	s.loggedIn = true
	return nil
}

type fakeSource struct {
	session  *fakeSession
	acquired int
	released int
}

func (f *fakeSource) Acquire(time.Duration) (Session, error) {
	f.acquired++
	return f.session, nil
}

func (f *fakeSource) Release(Session) { f.released++ }

type fakeExtractor struct {
	reply string
	err   error
	goal  string
}

func (f *fakeExtractor) Extract(_ context.Context, goal, _ string) (string, error) {
	f.goal = goal
	return f.reply, f.err
}

func cardTable() *extract.RuleTable {
	return &extract.RuleTable{
		FragmentSelectors: []string{"div.card"},
		Fields: []extract.FieldRule{
			{Field: "name", Selectors: []string{"h3"}},
			{Field: "description", Selectors: []string{"p"}},
		},
	}
}

func testSpec() *Spec {
	return &Spec{
		Name:         "betalist",
		DefaultURL:   "https://betalist.com/",
		RecordsField: "startups",
		Table:        cardTable(),
		DefaultCap:   25,
	}
}

func TestRun_DirectFragmentPath(t *testing.T) {
	source := &fakeSource{session: &fakeSession{
		fragments: []string{
			"<div class=\"card\"><h3>Acme</h3><p>a</p></div>",
			"<div class=\"card\"><h3>Beta</h3><p>b</p></div>",
		},
	}}
	runner := &Runner{Sessions: source}

	result, err := runner.Run(context.Background(), testSpec(), models.RunInput{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	report := result.Report
	if len(report.Records) != 2 || report.Records[0].Name != "Acme" {
		t.Fatalf("records = %+v", report.Records)
	}
	if report.RecordsField != "startups" {
		t.Errorf("records field = %q", report.RecordsField)
	}
	if report.SourceURL != "https://betalist.com/" {
		t.Errorf("source url = %q", report.SourceURL)
	}
	if source.acquired != 1 || source.released != 1 {
		t.Errorf("session acquire/release = %d/%d", source.acquired, source.released)
	}
	if result.RunID == "" {
		t.Error("run id must be set")
	}
}

func TestRun_RecoversThroughModelFallback(t *testing.T) {
	source := &fakeSource{session: &fakeSession{
		pageHTML: "<html><body><h1>Listing</h1></body></html>",
	}}
	extractor := &fakeExtractor{
		reply: `{"source_url":"x","records":[{"name":"FromModel"}]}`,
	}
	runner := &Runner{Sessions: source, LLM: extractor}

	result, err := runner.Run(context.Background(), testSpec(), models.RunInput{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	report := result.Report
	if report.IsSentinel() {
		t.Fatal("model reply must be recovered, not replaced by the sentinel")
	}
	if len(report.Records) != 1 || report.Records[0].Name != "FromModel" {
		t.Fatalf("records = %+v", report.Records)
	}
	if !strings.Contains(extractor.goal, "betalist.com") {
		t.Errorf("default goal should mention the target, got %q", extractor.goal)
	}
}

func TestRun_SentinelWhenEverythingFails(t *testing.T) {
	source := &fakeSource{session: &fakeSession{}}
	runner := &Runner{Sessions: source}

	result, err := runner.Run(context.Background(), testSpec(), models.RunInput{})
	if err != nil {
		t.Fatalf("run must not error on empty extraction: %v", err)
	}
	report := result.Report
	if !report.IsSentinel() {
		t.Fatalf("report = %+v, want sentinel", report)
	}
	if report.Notes == "" {
		t.Error("sentinel report must carry a reason")
	}
}

func TestRun_InvalidURLIsCallerError(t *testing.T) {
	runner := &Runner{Sessions: &fakeSource{session: &fakeSession{}}}
	spec := testSpec()

	_, err := runner.Run(context.Background(), spec, models.RunInput{URL: "ftp://example.com/x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := runner.Run(context.Background(), spec, models.RunInput{URL: "not a url"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRun_NavigationFailurePropagates(t *testing.T) {
	source := &fakeSource{session: &fakeSession{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}}
	runner := &Runner{Sessions: source}

	if _, err := runner.Run(context.Background(), testSpec(), models.RunInput{}); err == nil {
		t.Fatal("navigation failure must propagate")
	}
	if source.released != 1 {
		t.Error("session must be released on failure")
	}
}

func TestRun_LoginAgentRequiresCredentials(t *testing.T) {
	spec := testSpec()
	spec.NeedsLogin = true
	session := &fakeSession{fragments: []string{"<div class=\"card\"><h3>Acme</h3></div>"}}
	runner := &Runner{Sessions: &fakeSource{session: session}}

	if _, err := runner.Run(context.Background(), spec, models.RunInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for missing credentials", err)
	}

	result, err := runner.Run(context.Background(), spec, models.RunInput{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !session.loggedIn {
		t.Error("login must run before navigation")
	}
	if result.Report.IsSentinel() {
		t.Errorf("report = %+v", result.Report)
	}
}

func TestRun_StoredCredentialsUsed(t *testing.T) {
	spec := testSpec()
	spec.NeedsLogin = true
	session := &fakeSession{fragments: []string{"<div class=\"card\"><h3>Acme</h3></div>"}}
	runner := &Runner{
		Sessions: &fakeSource{session: session},
		Lookup: func(site string) (string, string, error) {
			if site != "betalist" {
				return "", "", errors.New("unknown site")
			}
			return "stored@example.com", "secret", nil
		},
	}

	if _, err := runner.Run(context.Background(), spec, models.RunInput{}); err != nil {
		t.Fatalf("run with stored credentials: %v", err)
	}
	if !session.loggedIn {
		t.Error("stored credentials must satisfy the login agent")
	}
}

func TestRun_SanitizeRejectionFallsBackToSentinel(t *testing.T) {
	spec := testSpec()
	spec.Sanitize = func(*models.Record) bool { return false }
	source := &fakeSource{session: &fakeSession{
		fragments: []string{"<div class=\"card\"><h3>Acme</h3></div>"},
	}}
	runner := &Runner{Sessions: source}

	result, err := runner.Run(context.Background(), spec, models.RunInput{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Report.IsSentinel() {
		t.Fatalf("report = %+v, want sentinel after total sanitize rejection", result.Report)
	}
	if result.Report.RecordsField != "startups" {
		t.Errorf("records field = %q", result.Report.RecordsField)
	}
}

func TestRun_FilterPrunesRecords(t *testing.T) {
	spec := testSpec()
	spec.Filter = func(records []models.Record, _ models.RunInput) []models.Record {
		var kept []models.Record
		for _, r := range records {
			if r.Name != "Beta" {
				kept = append(kept, r)
			}
		}
		return kept
	}
	source := &fakeSource{session: &fakeSession{
		fragments: []string{
			"<div class=\"card\"><h3>Acme</h3></div>",
			"<div class=\"card\"><h3>Beta</h3></div>",
		},
	}}
	runner := &Runner{Sessions: source}

	result, err := runner.Run(context.Background(), spec, models.RunInput{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Report.Records) != 1 || result.Report.Records[0].Name != "Acme" {
		t.Errorf("records = %+v", result.Report.Records)
	}
}

func TestRun_CapFromInputWins(t *testing.T) {
	var fragments []string
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		fragments = append(fragments, "<div class=\"card\"><h3>"+name+"</h3></div>")
	}
	source := &fakeSource{session: &fakeSession{fragments: fragments}}
	runner := &Runner{Sessions: source}

	result, err := runner.Run(context.Background(), testSpec(), models.RunInput{MaxRecords: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Report.Records) != 2 {
		t.Errorf("records = %+v, want the caller cap honored", result.Report.Records)
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&Spec{Name: "Product_Hunt"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(&Spec{Name: "product_hunt"}); err == nil {
		t.Error("duplicate registration must fail")
	}
	if err := registry.Register(&Spec{}); err == nil {
		t.Error("nameless spec must fail")
	}

	if _, ok := registry.Get("PRODUCT_HUNT"); !ok {
		t.Error("lookup must be case-insensitive")
	}
	if _, ok := registry.Get("missing"); ok {
		t.Error("unknown agent must miss")
	}

	registry.Register(&Spec{Name: "betalist"})
	list := registry.List()
	if len(list) != 2 || list[0].Name != "Product_Hunt" && list[0].Name != "betalist" {
		t.Errorf("list = %v", list)
	}
	if !(list[0].Name < list[1].Name) {
		t.Errorf("list must be sorted: %q, %q", list[0].Name, list[1].Name)
	}
}
