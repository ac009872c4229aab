package agent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/histia/harvest/internal/browser"
	"github.com/histia/harvest/internal/collector"
	"github.com/histia/harvest/internal/extract"
	"github.com/histia/harvest/internal/recovery"
	"github.com/histia/harvest/pkg/models"
)

// ErrInvalidInput marks caller mistakes (bad URL, missing credentials). The
// API maps it to 400, the CLI to a non-zero exit.
var ErrInvalidInput = errors.New("invalid run input")

// Session is one exclusively-owned browser tab, satisfied by
// browser.Session and by test fakes.
type Session interface {
	Navigate(ctx context.Context, pageURL string) error
	Evaluate(ctx context.Context, expression string) (string, error)
	ScrollStep(ctx context.Context) error
	OuterHTML(ctx context.Context) (string, error)
	DismissOverlays(ctx context.Context, selectors []string)
	Login(ctx context.Context, form browser.LoginForm, email, password string) error
}

// SessionSource hands out sessions. The browser pool implements it through a
// small adapter in the app package.
type SessionSource interface {
	Acquire(timeout time.Duration) (Session, error)
	Release(Session)
}

// Extractor is the model-backed fallback, satisfied by llm.Client. Nil
// disables the fallback and failed runs go straight to the sentinel.
type Extractor interface {
	Extract(ctx context.Context, goal, markdown string) (string, error)
}

// Limiter throttles page navigations per domain.
type Limiter interface {
	Wait(ctx context.Context, urlStr string) error
}

// PageToMarkdown converts rendered HTML into prompt markdown. Indirected so
// runner tests do not drag the converter in.
type PageToMarkdown func(pageHTML, pageURL string) (string, error)

// Runner executes agent runs. All fields are optional except Sessions or
// Static; a Runner with neither cannot reach any page.
type Runner struct {
	Sessions SessionSource
	Static   *collector.StaticCollector
	LLM      Extractor
	Limiter  Limiter
	Markdown PageToMarkdown
	// AcquireTimeout bounds the wait for a free browser context.
	AcquireTimeout time.Duration
	// Lookup resolves stored credentials for login agents when the input
	// carries none. Optional.
	Lookup func(site string) (email, password string, err error)
	// OnScrollRound observes stabilization rounds, for progress display.
	OnScrollRound func(round, count int)
}

// Run drives one agent from navigation to a finished report. Content
// ambiguity never surfaces as an error; only caller mistakes and
// infrastructure faults do. The returned result always carries a non-empty
// report on success.
func (r *Runner) Run(ctx context.Context, spec *Spec, input models.RunInput) (*models.RunResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	target := spec.TargetURL(input)
	if err := validateURL(target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cap := spec.Cap(input)

	logger := log.With().
		Str("run_id", runID).
		Str("agent", spec.Name).
		Str("url", target).
		Logger()
	logger.Info().Int("cap", cap).Msg("run started")

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, target); err != nil {
			return nil, fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}

	report, pageHTML, err := r.collect(ctx, spec, input, target, cap)
	if err != nil {
		return nil, err
	}

	if report == nil {
		report = r.recover(ctx, spec, target, cap, pageHTML)
	}

	finalize(spec, input, report, target, cap)

	elapsed := time.Since(start)
	logger.Info().
		Int("records", len(report.Records)).
		Bool("sentinel", report.IsSentinel()).
		Dur("elapsed", elapsed).
		Msg("run finished")

	return &models.RunResult{
		RunID:      runID,
		Agent:      spec.Name,
		Duration:   elapsed,
		DurationMS: elapsed.Milliseconds(),
		Report:     report,
	}, nil
}

// collect walks the direct path: static fetch or browser session, scroll
// stabilization, fragment collection, assembly. A nil report with nil error
// means "nothing usable, try recovery"; pageHTML carries the rendered page
// for the model fallback when available.
func (r *Runner) collect(ctx context.Context, spec *Spec, input models.RunInput, target string, cap int) (*models.Report, string, error) {
	if spec.StaticFirst && r.Static != nil && !spec.NeedsLogin {
		fragments, err := r.Static.Collect(ctx, target, spec.Table.FragmentSelectors)
		if err != nil {
			log.Warn().Err(err).Msg("static collection failed, falling back to browser")
		} else if report := extract.Assemble(fragments, target, cap, spec.Table); report != nil {
			return report, "", nil
		}
	}

	if r.Sessions == nil {
		return nil, "", nil
	}

	session, err := r.Sessions.Acquire(r.AcquireTimeout)
	if err != nil {
		return nil, "", fmt.Errorf("no browser session available: %w", err)
	}
	defer r.Sessions.Release(session)

	if spec.NeedsLogin {
		email, password, err := r.credentials(spec, input)
		if err != nil {
			return nil, "", err
		}
		if err := session.Login(ctx, spec.LoginForm, email, password); err != nil {
			return nil, "", err
		}
	}

	if err := session.Navigate(ctx, target); err != nil {
		return nil, "", err
	}
	session.DismissOverlays(ctx, spec.OverlaySelectors)

	if spec.Scroll.MaxRounds > 0 && len(spec.Table.FragmentSelectors) > 0 {
		poller := &collector.Poller{
			MaxRounds: spec.Scroll.MaxRounds,
			Patience:  spec.Scroll.Patience,
			Interval:  spec.Scroll.Interval,
			OnRound:   r.OnScrollRound,
		}
		poller.Wait(ctx, session, session, spec.Table.FragmentSelectors[0], cap)
	}

	fragments := collector.Collect(ctx, session, spec.Table.FragmentSelectors)
	report := extract.Assemble(fragments, target, cap, spec.Table)

	var pageHTML string
	if report == nil {
		if html, err := session.OuterHTML(ctx); err == nil {
			pageHTML = html
		} else {
			log.Debug().Err(err).Msg("could not capture page HTML for model fallback")
		}
	}
	return report, pageHTML, nil
}

// recover runs the model fallback and the recovery chain. Always returns a
// report; exhaustion yields the sentinel.
func (r *Runner) recover(ctx context.Context, spec *Spec, target string, cap int, pageHTML string) *models.Report {
	payload := &recovery.Payload{}
	reason := "no listing fragments matched on the page"

	if r.LLM != nil && pageHTML != "" {
		toMarkdown := r.Markdown
		if toMarkdown == nil {
			toMarkdown = func(html, _ string) (string, error) { return html, nil }
		}
		markdown, err := toMarkdown(pageHTML, target)
		if err != nil {
			log.Warn().Err(err).Msg("markdown conversion failed")
			reason = "page content could not be prepared for model extraction"
		} else {
			goal := spec.Goal
			if goal == "" {
				goal = fmt.Sprintf("Extract the listing entries from %s", target)
			}
			text, err := r.LLM.Extract(ctx, goal, markdown)
			if err != nil {
				log.Warn().Err(err).Msg("model extraction failed")
				reason = fmt.Sprintf("model extraction failed: %v", err)
			} else {
				payload.FinalText = text
				payload.Outputs = []string{text}
			}
		}
	}

	return recovery.Run(&recovery.Request{
		Payload:       payload,
		SourceURL:     target,
		RecordsField:  spec.RecordsField,
		Cap:           cap,
		FailureReason: reason,
		French:        spec.French,
	})
}

// finalize applies sanitize hooks, filters and envelope metadata. The
// sentinel report skips sanitation so the placeholder always survives.
func finalize(spec *Spec, input models.RunInput, report *models.Report, target string, cap int) {
	report.SourceURL = target
	report.RecordsField = spec.RecordsField
	if len(report.PagesVisited) == 0 {
		report.PagesVisited = []string{target}
	}

	if !report.IsSentinel() {
		records := report.Records
		if spec.Sanitize != nil {
			kept := records[:0]
			for i := range records {
				if spec.Sanitize(&records[i]) {
					kept = append(kept, records[i])
				}
			}
			records = kept
		}
		if spec.Filter != nil {
			records = spec.Filter(records, input)
		}
		if len(records) == 0 {
			sentinel := models.SentinelReport(target, "all extracted records were rejected during sanitation")
			if spec.French {
				sentinel.Records[0].Name = models.SentinelNameFR
			}
			sentinel.RecordsField = spec.RecordsField
			sentinel.PagesVisited = report.PagesVisited
			*report = *sentinel
			return
		}
		report.Records = records
	}

	report.Truncate(cap)
}

func (r *Runner) credentials(spec *Spec, input models.RunInput) (string, string, error) {
	email, password := input.Email, input.Password
	if (email == "" || password == "") && r.Lookup != nil {
		storedEmail, storedPassword, err := r.Lookup(spec.Name)
		if err != nil {
			log.Debug().Err(err).Str("agent", spec.Name).Msg("credential lookup failed")
		} else {
			if email == "" {
				email = storedEmail
			}
			if password == "" {
				password = storedPassword
			}
		}
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("%w: agent %q requires email and password", ErrInvalidInput, spec.Name)
	}
	return email, password, nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("target URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("target URL does not parse: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target URL scheme %q is not http(s)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("target URL has no host")
	}
	return nil
}
