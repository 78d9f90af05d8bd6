package eval

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestScoreMath(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     float64
		score    float64
		parsed   bool
	}{
		{"exact", "48462", 48462, 1, true},
		{"wrong", "48000", 48462, 0, true},
		{"embedded answer", "the answer is 48462!", 48462, 1, true},
		{"no number", "I don't know", 48462, 0, false},
		{"negative", "-50", -50, 1, true},
		{"decimal", "0.33", 0.33, 1, true},
		{"trailing text", "117\n", 117, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, parsed := scoreMath(tc.response, tc.want)
			if score != tc.score || parsed != tc.parsed {
				t.Fatalf("scoreMath(%q, %v) = (%f, %v), want (%f, %v)",
					tc.response, tc.want, score, parsed, tc.score, tc.parsed)
			}
		})
	}
}

var problemRE = regexp.MustCompile(`^(-?\d+) ([+*/-]) (-?\d+)$`)

func TestMathProblem_OperandsInRange(t *testing.T) {
	const low, high = 100, 1000
	sawDivision := false

	for seed := int64(0); seed < 500; seed++ {
		rng := rand.New(rand.NewSource(seed))
		problem, want := mathProblem(low, high, rng)

		m := problemRE.FindStringSubmatch(problem)
		if m == nil {
			t.Fatalf("malformed problem %q", problem)
		}
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[3])
		if x < low || x > high || y < low || y > high {
			t.Fatalf("operands out of range in %q", problem)
		}

		var expect int
		switch m[2] {
		case "+":
			expect = x + y
		case "-":
			expect = x - y
		case "*":
			expect = x * y
		case "/":
			sawDivision = true
			if y == 0 || x%y != 0 {
				t.Fatalf("inexact division %q", problem)
			}
			expect = x / y
		}
		if float64(expect) != want {
			t.Fatalf("problem %q: want %f, computed %d", problem, want, expect)
		}
	}
	if !sawDivision {
		t.Fatal("expected at least one division problem over 500 seeds")
	}
}

func TestMathProblem_Deterministic(t *testing.T) {
	a, _ := mathProblem(100, 1000, rand.New(rand.NewSource(3)))
	b, _ := mathProblem(100, 1000, rand.New(rand.NewSource(3)))
	if a != b {
		t.Fatalf("same seed gave different problems: %q vs %q", a, b)
	}
}

// solver answers the arithmetic in the prompt, like a model that always
// gets it right.
func solver(ctx context.Context, prompt string) (string, error) {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	last := strings.TrimPrefix(lines[len(lines)-1], "User: ")
	m := problemRE.FindStringSubmatch(last)
	if m == nil {
		return "", fmt.Errorf("no problem in prompt")
	}
	x, _ := strconv.Atoi(m[1])
	y, _ := strconv.Atoi(m[3])
	var v int
	switch m[2] {
	case "+":
		v = x + y
	case "-":
		v = x - y
	case "*":
		v = x * y
	case "/":
		v = x / y
	}
	return strconv.Itoa(v), nil
}

func TestMathTask_PerfectSolverScoresFull(t *testing.T) {
	r := DefaultRegistry()
	def, err := r.Get("math")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	res, err := Run(context.Background(), def, "solver", solver, Options{Runs: 20, Seed: 11, Workers: 4})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Mean != 1 {
		t.Fatalf("perfect solver should score 1.0, got %f (failures %d)", res.Mean, res.Failures)
	}
}

func TestMathTask_NonsenseScoresZeroWithErrorFlag(t *testing.T) {
	nonsense := func(ctx context.Context, prompt string) (string, error) {
		return "I don't know", nil
	}
	def, _ := DefaultRegistry().Get("math")

	res, err := Run(context.Background(), def, "m", nonsense, Options{Runs: 5, Seed: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Mean != 0 {
		t.Fatalf("expected mean 0, got %f", res.Mean)
	}
	if res.Failures != 5 {
		t.Fatalf("expected every trial flagged, got %d", res.Failures)
	}
}

func TestMathTask_ValidatesRange(t *testing.T) {
	def, _ := DefaultRegistry().Get("math")

	_, err := Run(context.Background(), def, "m", okCaller, Options{
		Params: map[string]string{"low": "500", "high": "10"},
	})
	if err == nil {
		t.Fatal("expected validation error for high <= low")
	}
}
