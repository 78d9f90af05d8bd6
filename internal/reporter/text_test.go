package reporter

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/evalforge/internal/eval"
	"github.com/ppiankov/evalforge/internal/store"
)

func TestTextReporter_Summary(t *testing.T) {
	var b strings.Builder
	r := NewTextReporter(&b, false)

	r.PrintSummary(&eval.Result{
		Eval:     "math",
		Model:    "gpt-4o",
		Mean:     0.82,
		Runs:     50,
		Failures: 3,
	})

	out := b.String()
	for _, want := range []string{"math", "gpt-4o", "0.820", "50 trials", "3 failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTextReporter_List(t *testing.T) {
	var b strings.Builder
	r := NewTextReporter(&b, false)

	r.PrintList([]eval.TaskDefinition{
		{Name: "math", Description: "arithmetic", DefaultRuns: 50, DefaultParams: eval.Params{"low": 100, "high": 1000}},
		{Name: "tictactoe_random", Description: "vs random", DefaultRuns: 10},
	})

	out := b.String()
	for _, want := range []string{"math", "arithmetic", "Default runs: 50", "high=1000", "low=100", "tictactoe_random"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list missing %q:\n%s", want, out)
		}
	}
}

func TestTextReporter_Trial(t *testing.T) {
	var b strings.Builder
	r := NewTextReporter(&b, false)

	r.PrintTrial(eval.Outcome{
		Index:    0,
		Prompt:   "1 + 1",
		Response: "2\n",
		Score:    1,
	})

	out := b.String()
	if !strings.Contains(out, "1 + 1") || !strings.Contains(out, "response: 2") {
		t.Fatalf("trial output wrong:\n%s", out)
	}
}

func TestTextReporter_Rows(t *testing.T) {
	var b strings.Builder
	r := NewTextReporter(&b, false)

	r.PrintRows(nil)
	if !strings.Contains(b.String(), "no results") {
		t.Fatalf("empty rows should say so:\n%s", b.String())
	}

	b.Reset()
	r.PrintRows([]store.Row{
		{Eval: "math", Model: "gpt-4o", Mean: 0.5, Runs: 50, CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	})
	out := b.String()
	if !strings.Contains(out, "math") || !strings.Contains(out, "0.500") {
		t.Fatalf("rows output wrong:\n%s", out)
	}
}

func TestLiveReporter_StartStop(t *testing.T) {
	var mu sync.Mutex
	var b strings.Builder
	w := writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return b.Write(p)
	})

	lr := NewLiveReporter(w, false, func() Progress {
		return Progress{Done: 3, Failed: 1, Total: 10}
	})
	lr.Start()
	time.Sleep(600 * time.Millisecond)
	lr.Stop()

	mu.Lock()
	out := b.String()
	mu.Unlock()
	if !strings.Contains(out, "3/10 trials") || !strings.Contains(out, "1 failed") {
		t.Fatalf("live output wrong:\n%q", out)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
