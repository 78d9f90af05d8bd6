package eval

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
)

const mathSystemPrompt = `Answer the math problem with the numeric result only. Round to two decimal places if necessary. Do not add newlines, commas, or any other characters.

Examples:

User: 1 + 1
Assistant: 2
----
User: 234/2
Assistant: 117
----
User: 10/2- 5
Assistant: 0
----
User: 823 * 377
Assistant: 310271
----
User: 1/3
Assistant: 0.33`

var mathOps = []string{"+", "-", "*", "/"}

// firstNumber matches the first bare number in a response, so answers
// like "the answer is 48462!" still score.
var firstNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// RegisterMath adds the arithmetic evaluation.
func RegisterMath(r *Registry) {
	r.Register(TaskDefinition{
		Name:          "math",
		Description:   "Basic arithmetic problems with random integers",
		DefaultRuns:   50,
		DefaultParams: Params{"low": 100, "high": 1000},
		Validate: func(p Params) error {
			low, high := p.Int("low"), p.Int("high")
			if low < 1 {
				return fmt.Errorf("low must be at least 1, got %d", low)
			}
			if high <= low {
				return fmt.Errorf("high (%d) must exceed low (%d)", high, low)
			}
			return nil
		},
		Trial: mathTrial,
	})
}

func mathTrial(ctx context.Context, call ModelCaller, p Params, rng *rand.Rand) Outcome {
	problem, want := mathProblem(p.Int("low"), p.Int("high"), rng)
	prompt := mathSystemPrompt + "\n\nUser: " + problem

	resp, err := call(ctx, prompt)
	if err != nil {
		return Outcome{Prompt: prompt, Failed: true, Err: err.Error()}
	}

	score, parsed := scoreMath(resp, want)
	out := Outcome{Prompt: prompt, Response: resp, Score: score}
	if !parsed {
		out.Failed = true
		out.Err = fmt.Sprintf("no numeric answer in response %q", resp)
	}
	return out
}

// mathProblem draws a problem and its exact answer. Division operands
// are constructed so the quotient is a whole number in range: draw the
// divisor, then a quotient that keeps the dividend within [low, high].
func mathProblem(low, high int, rng *rand.Rand) (string, float64) {
	span := high - low + 1
	op := mathOps[rng.Intn(len(mathOps))]

	var x, y, answer int
	if op == "/" {
		y = low + rng.Intn(span)
		qmin := (low + y - 1) / y
		qmax := high / y
		answer = qmin + rng.Intn(qmax-qmin+1)
		x = y * answer
	} else {
		x = low + rng.Intn(span)
		y = low + rng.Intn(span)
		switch op {
		case "+":
			answer = x + y
		case "-":
			answer = x - y
		case "*":
			answer = x * y
		}
	}
	return fmt.Sprintf("%d %s %d", x, op, y), float64(answer)
}

// scoreMath extracts the first bare number from the response and
// compares it to the expected answer. Returns the score and whether a
// number was found at all.
func scoreMath(response string, want float64) (float64, bool) {
	m := firstNumber.FindString(response)
	if m == "" {
		return 0, false
	}
	got, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	if math.Abs(got-want) < 1e-9 {
		return 1, true
	}
	return 0, true
}
