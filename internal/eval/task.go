package eval

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// ModelCaller sends one prompt to a model and returns the raw response
// text. Transport concerns (auth, timeouts, connection retries) belong to
// the implementation; the runner only retries whole failed calls.
type ModelCaller func(ctx context.Context, prompt string) (string, error)

// TrialFunc executes one independent trial: generate the prompt(s), call
// the model, score the response. Game tasks loop over several calls per
// trial. rng is the trial's private random stream; implementations must
// draw all randomness from it so a fixed seed replays the trial exactly.
type TrialFunc func(ctx context.Context, call ModelCaller, p Params, rng *rand.Rand) Outcome

// TaskDefinition describes one registered evaluation. Definitions are
// immutable once registered.
type TaskDefinition struct {
	Name          string
	Description   string
	DefaultRuns   int
	DefaultParams Params
	Validate      func(Params) error // optional, checked after param merge
	Trial         TrialFunc
}

// Outcome is the result of a single trial. Owned by the runner during
// aggregation; never shared between trials.
type Outcome struct {
	Index    int     // trial index within the run
	Score    float64 // task-defined range: math {0,1}, games {-1,0,+1}
	Prompt   string  // last prompt sent, for debug output
	Response string  // last raw model response
	Failed   bool    // transport failure or unusable response
	Err      string
}

// Result aggregates all trials of one run invocation.
type Result struct {
	Eval      string
	Model     string
	Mean      float64
	Runs      int // trials attempted, the mean's denominator
	Failures  int
	Timestamp time.Time
	Outcomes  []Outcome // in trial-index order
}

// Params is a task's effective option set. Values are int, float64, or
// string; the recognized keys and their types come from the task's
// DefaultParams.
type Params map[string]any

// Int returns an integer option. Missing keys return zero; the merge step
// guarantees registered tasks never see a missing or mistyped key.
func (p Params) Int(key string) int {
	v, _ := p[key].(int)
	return v
}

// Float returns a float option, accepting int-typed values too.
func (p Params) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Str returns a string option.
func (p Params) Str(key string) string {
	v, _ := p[key].(string)
	return v
}

// Keys lists option names in sorted order, for display.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeParams overlays string-form overrides (as parsed from --param
// flags) onto a task's defaults. Unknown keys and values that do not
// parse as the default's type are rejected, so every trial sees a fully
// validated option set.
func MergeParams(defaults Params, overrides map[string]string) (Params, error) {
	merged := make(Params, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, raw := range overrides {
		def, ok := defaults[k]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", k)
		}
		switch def.(type) {
		case int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %q is not an integer", k, raw)
			}
			merged[k] = n
		case float64:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %q is not a number", k, raw)
			}
			merged[k] = f
		case string:
			merged[k] = raw
		default:
			return nil, fmt.Errorf("parameter %q has unsupported default type %T", k, def)
		}
	}
	return merged, nil
}
