// Package recovery recovers a usable report when the direct fragment path
// yields nothing. It walks an ordered list of alternative sources, from the
// agent's structured output down to the raw action history, and stops at the
// first one that produces at least one record. Exhaustion ends in a sentinel
// report, never in an error.
package recovery

import (
	"fmt"

	"github.com/histia/harvest/pkg/models"
)

// Payload carries everything a finished agent run left behind. It is a tagged
// bundle rather than a loose dict: each strategy consumes exactly one part.
type Payload struct {
	// Structured is a pre-validated report returned by the agent, when the
	// LLM managed to emit schema-conforming output directly.
	Structured *models.Report
	// FinalText is the agent's final free-text result, possibly JSON,
	// possibly markdown with a fenced JSON block.
	FinalText string
	// Outputs are the recorded extraction outputs in chronological order,
	// oldest first. Page order across outputs is preserved this way.
	Outputs []string
	// Actions is the action history, newest first, searched for a terminal
	// done action carrying a data payload.
	Actions []Action
}

// Action is one entry of the agent's action history.
type Action struct {
	Name string
	// Data is the action payload as decoded JSON (maps, slices, strings).
	// Leaves may be fmt.Stringer values from upstream URL types; they are
	// stringified before validation.
	Data any
}

// DoneData returns the payload of the newest terminal "done" action.
func (p *Payload) DoneData() (any, bool) {
	for _, action := range p.Actions {
		if action.Name == "done" && action.Data != nil {
			return action.Data, true
		}
	}
	return nil, false
}

// stringifyURLLeaves walks decoded JSON and converts any non-primitive leaf
// that knows how to print itself into its string form. Structured URL values
// must not survive into validation.
func stringifyURLLeaves(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = stringifyURLLeaves(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = stringifyURLLeaves(item)
		}
		return out
	case string, bool, nil, float64, int, int64:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}
