package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakePage answers Evaluate from a selector-keyed script table.
type fakePage struct {
	fragments map[string][]string
	counts    []int
	calls     int
	failOn    string
}

func (p *fakePage) Evaluate(_ context.Context, expression string) (string, error) {
	if p.failOn != "" && strings.Contains(expression, p.failOn) {
		return "", errors.New("evaluation failed")
	}
	if strings.Contains(expression, ".length") {
		idx := p.calls
		p.calls++
		if idx >= len(p.counts) {
			idx = len(p.counts) - 1
		}
		return fmt.Sprintf("%d", p.counts[idx]), nil
	}
	for selector, fragments := range p.fragments {
		if strings.Contains(expression, selectorLiteral(selector)) {
			raw, _ := json.Marshal(fragments)
			return string(raw), nil
		}
	}
	return "[]", nil
}

func selectorLiteral(selector string) string {
	raw, _ := json.Marshal(selector)
	return string(raw)
}

type fakeScroller struct{ steps int }

func (s *fakeScroller) ScrollStep(context.Context) error {
	s.steps++
	return nil
}

func TestCollect_FirstMatchingSelectorWins(t *testing.T) {
	page := &fakePage{fragments: map[string][]string{
		"div.card": {"<div class=\"card\">a</div>", "<div class=\"card\">b</div>"},
		"article":  {"<article>never reached</article>"},
	}}

	fragments := Collect(context.Background(), page, []string{"section.missing", "div.card", "article"})
	if len(fragments) != 2 {
		t.Fatalf("fragments = %v", fragments)
	}
	if !strings.Contains(fragments[0], "card") {
		t.Errorf("fragment = %q", fragments[0])
	}
}

func TestCollect_EvaluationErrorMovesOn(t *testing.T) {
	page := &fakePage{
		failOn:    "broken",
		fragments: map[string][]string{"div.ok": {"<div class=\"ok\"></div>"}},
	}

	fragments := Collect(context.Background(), page, []string{"div.broken", "div.ok"})
	if len(fragments) != 1 {
		t.Fatalf("fragments = %v, want fallback selector to be consulted", fragments)
	}
}

func TestCollect_NothingMatchesReturnsNil(t *testing.T) {
	page := &fakePage{}
	if fragments := Collect(context.Background(), page, []string{"div.a", "div.b"}); fragments != nil {
		t.Errorf("fragments = %v, want nil", fragments)
	}
}

func TestPoller_StopsAfterStablePatience(t *testing.T) {
	page := &fakePage{counts: []int{5, 12, 20, 20, 20, 20}}
	scroller := &fakeScroller{}
	poller := &Poller{
		MaxRounds: 10,
		Patience:  2,
		Sleep:     func(context.Context, time.Duration) {},
	}

	count := poller.Wait(context.Background(), page, scroller, "div.card", 0)
	if count != 20 {
		t.Errorf("count = %d", count)
	}
	// Rounds: 3 growth + 2 stable.
	if scroller.steps != 5 {
		t.Errorf("scroll steps = %d, want poll to stop after patience is spent", scroller.steps)
	}
}

func TestPoller_StopsEarlyAtTarget(t *testing.T) {
	page := &fakePage{counts: []int{10, 30, 60}}
	poller := &Poller{
		MaxRounds: 10,
		Patience:  3,
		Sleep:     func(context.Context, time.Duration) {},
	}

	count := poller.Wait(context.Background(), page, &fakeScroller{}, "div.card", 25)
	if count != 30 {
		t.Errorf("count = %d, want stop at the first measurement past the target", count)
	}
}

func TestPoller_MeasurementErrorCountsAsNoGrowth(t *testing.T) {
	page := &fakePage{failOn: ".length"}
	poller := &Poller{
		MaxRounds: 4,
		Patience:  2,
		Sleep:     func(context.Context, time.Duration) {},
	}

	if count := poller.Wait(context.Background(), page, nil, "div.card", 0); count != 0 {
		t.Errorf("count = %d", count)
	}
}

func TestPoller_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{counts: []int{5}}
	scroller := &fakeScroller{}
	poller := &Poller{MaxRounds: 10, Sleep: func(context.Context, time.Duration) {}}

	poller.Wait(ctx, page, scroller, "div.card", 0)
	if scroller.steps != 0 {
		t.Errorf("scrolled %d times after cancellation", scroller.steps)
	}
}
