// Package collector pulls listing fragments out of a rendered page. The
// fragments are serialized element HTML, crossing the browser boundary as one
// JSON array per evaluation so partially rendered cards cannot interleave.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Page is the minimal surface the collector needs from a browser tab.
type Page interface {
	// Evaluate runs the expression in the page and returns its string result.
	Evaluate(ctx context.Context, expression string) (string, error)
}

// fragmentScript serializes every match of a selector to outerHTML and
// returns the batch as a JSON array string.
const fragmentScript = `(() => {
	const out = [];
	document.querySelectorAll(%s).forEach((node) => out.push(node.outerHTML));
	return JSON.stringify(out);
})()`

// Collect evaluates each selector in order and returns the fragments of the
// first one that matches anything. A selector that errors or matches nothing
// just moves the walk along; collection failures surface as an empty slice,
// never as an error, so the caller falls through to recovery.
func Collect(ctx context.Context, page Page, selectors []string) []string {
	for _, selector := range selectors {
		raw, err := page.Evaluate(ctx, fmt.Sprintf(fragmentScript, jsString(selector)))
		if err != nil {
			log.Debug().Err(err).Str("selector", selector).Msg("fragment evaluation failed")
			continue
		}

		var fragments []string
		if err := json.Unmarshal([]byte(raw), &fragments); err != nil {
			log.Debug().Err(err).Str("selector", selector).Msg("fragment batch was not a JSON array")
			continue
		}
		if len(fragments) == 0 {
			continue
		}

		log.Debug().
			Str("selector", selector).
			Int("fragments", len(fragments)).
			Msg("fragments collected")
		return fragments
	}
	return nil
}

// Count returns how many elements the selector currently matches. Used by the
// stabilization poller to detect when lazy loading has settled.
func Count(ctx context.Context, page Page, selector string) (int, error) {
	raw, err := page.Evaluate(ctx, fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(selector)))
	if err != nil {
		return 0, err
	}
	raw = strings.TrimSpace(raw)
	var n int
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return 0, fmt.Errorf("non-numeric count %q: %w", raw, err)
	}
	return n, nil
}

// jsString quotes a selector for embedding in an evaluated expression.
func jsString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}
