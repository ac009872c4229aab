package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Cookie is an injectable browser cookie. Expires is a Unix timestamp; zero
// means session cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  float64
	HTTPOnly bool
	Secure   bool
	SameSite string
}

// Session is one leased browser tab. It satisfies the collector's Page and
// Scroller interfaces. Not safe for concurrent use; one agent run owns it.
type Session struct {
	tab *tab
}

func newSession(t *tab) *Session {
	return &Session{tab: t}
}

// run executes the actions against the tab, bounded by the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := s.tab.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(runCtx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL and gives initial scripts a moment to run before
// control returns.
func (s *Session) Navigate(ctx context.Context, pageURL string) error {
	start := time.Now()
	err := s.run(ctx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.ActionFunc(func(context.Context) error {
			time.Sleep(300 * time.Millisecond)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", pageURL, err)
	}
	log.Debug().Str("url", pageURL).Dur("elapsed", time.Since(start)).Msg("navigation complete")
	return nil
}

// Evaluate runs the expression and returns its result as text. JS strings
// come back unquoted; everything else comes back as its JSON encoding.
func (s *Session) Evaluate(ctx context.Context, expression string) (string, error) {
	var result json.RawMessage
	if err := s.run(ctx, chromedp.Evaluate(expression, &result)); err != nil {
		return "", err
	}
	var str string
	if err := json.Unmarshal(result, &str); err == nil {
		return str, nil
	}
	return string(result), nil
}

// ScrollStep advances the viewport by one screen height.
func (s *Session) ScrollStep(ctx context.Context) error {
	return s.run(ctx, chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil))
}

// Title returns the document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// OuterHTML returns the full rendered document.
func (s *Session) OuterHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// SetCookies injects cookies before navigation so authenticated pages render
// on first load.
func (s *Session) SetCookies(ctx context.Context, cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		cookie := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			cookie.Expires = &expires
		}
		switch c.SameSite {
		case "Strict":
			cookie.SameSite = network.CookieSameSiteStrict
		case "Lax":
			cookie.SameSite = network.CookieSameSiteLax
		case "None":
			cookie.SameSite = network.CookieSameSiteNone
		}
		params = append(params, cookie)
	}
	if err := s.run(ctx, network.Enable(), network.SetCookies(params)); err != nil {
		return fmt.Errorf("cookie injection failed: %w", err)
	}
	log.Debug().Int("cookies", len(params)).Msg("session cookies injected")
	return nil
}

// dismissScript clicks the first visible consent or overlay button matching
// any of the selectors and reports how many were clicked.
const dismissScript = `((selectors) => {
	let clicked = 0;
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (el && el.offsetParent !== null) {
			el.click();
			clicked++;
		}
	}
	return clicked;
})(%s)`

// DismissOverlays clicks cookie banners and modal close buttons. Best effort;
// a page without overlays is not an error.
func (s *Session) DismissOverlays(ctx context.Context, selectors []string) {
	if len(selectors) == 0 {
		return
	}
	encoded, _ := json.Marshal(selectors)
	raw, err := s.Evaluate(ctx, fmt.Sprintf(dismissScript, encoded))
	if err != nil {
		log.Debug().Err(err).Msg("overlay dismissal failed")
		return
	}
	if raw != "0" && raw != "" {
		log.Debug().Str("clicked", raw).Msg("overlays dismissed")
		time.Sleep(200 * time.Millisecond)
	}
}

// LoginForm describes a credential form on a login page.
type LoginForm struct {
	URL              string
	EmailSelector    string
	PasswordSelector string
	SubmitSelector   string
}

// Login navigates to the form, fills it and submits. The caller decides
// whether a failed login aborts the run.
func (s *Session) Login(ctx context.Context, form LoginForm, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("login requires both email and password")
	}
	err := s.run(ctx,
		chromedp.Navigate(form.URL),
		chromedp.WaitVisible(form.EmailSelector, chromedp.ByQuery),
		chromedp.SendKeys(form.EmailSelector, email, chromedp.ByQuery),
		chromedp.SendKeys(form.PasswordSelector, password, chromedp.ByQuery),
		chromedp.Click(form.SubmitSelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(context.Context) error {
			time.Sleep(1500 * time.Millisecond)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("login at %s failed: %w", form.URL, err)
	}
	log.Info().Str("url", form.URL).Msg("login submitted")
	return nil
}
