package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scroller advances the page by one step, typically a viewport-height scroll.
type Scroller interface {
	ScrollStep(ctx context.Context) error
}

// Poller scrolls until the match count for a selector stops growing. Lazy
// listings load in bursts, so a single unchanged measurement is not enough;
// the count has to hold still for Patience consecutive rounds.
type Poller struct {
	// MaxRounds bounds the total number of scroll steps.
	MaxRounds int
	// Patience is how many consecutive no-growth rounds end the poll.
	Patience int
	// Interval is the settle delay between a scroll step and its measurement.
	Interval time.Duration
	// Sleep is swapped out in tests. Nil means time.Sleep honoring ctx.
	Sleep func(ctx context.Context, d time.Duration)
	// OnRound, when set, observes each round. The CLI hangs a progress bar
	// off this.
	OnRound func(round, count int)
}

// Wait runs the scroll-measure loop and returns the final match count. Target
// > 0 stops early once that many matches exist. Measurement errors count as
// no growth rather than aborting the poll.
func (p *Poller) Wait(ctx context.Context, page Page, scroller Scroller, selector string, target int) int {
	maxRounds := p.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 20
	}
	patience := p.Patience
	if patience <= 0 {
		patience = 2
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	best := 0
	stable := 0
	for round := 0; round < maxRounds; round++ {
		if ctx.Err() != nil {
			return best
		}
		if scroller != nil {
			if err := scroller.ScrollStep(ctx); err != nil {
				log.Debug().Err(err).Int("round", round).Msg("scroll step failed")
			}
		}
		sleep(ctx, p.Interval)

		count, err := Count(ctx, page, selector)
		if err != nil {
			log.Debug().Err(err).Int("round", round).Msg("count measurement failed")
			count = best
		}
		if p.OnRound != nil {
			p.OnRound(round, count)
		}

		if count > best {
			best = count
			stable = 0
		} else {
			stable++
		}

		if target > 0 && best >= target {
			log.Debug().Int("count", best).Int("target", target).Msg("target reached")
			return best
		}
		if stable >= patience {
			log.Debug().Int("count", best).Int("rounds", round+1).Msg("listing stabilized")
			return best
		}
	}
	return best
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
