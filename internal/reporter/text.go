package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/evalforge/internal/eval"
	"github.com/ppiankov/evalforge/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// Progress is a snapshot of a running batch, polled by the live displays.
type Progress struct {
	Done   int
	Failed int
	Total  int
}

// TextReporter writes human-readable output to a writer.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables ANSI codes.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

func (r *TextReporter) paint(color, s string) string {
	if !r.color {
		return s
	}
	return color + s + colorReset
}

// PrintHeader writes the banner for one eval/model batch.
func (r *TextReporter) PrintHeader(evalName, model string, runs, workers int) {
	fmt.Fprintf(r.w, "evalforge: %s on %s, %d trials, %d workers\n", evalName, model, runs, workers)
}

// PrintTrial writes one trial's full record, used by debug mode.
func (r *TextReporter) PrintTrial(o eval.Outcome) {
	fmt.Fprintf(r.w, "--- trial %d ---\n", o.Index)
	fmt.Fprintf(r.w, "prompt:\n%s\n", o.Prompt)
	fmt.Fprintf(r.w, "response: %s\n", strings.TrimSpace(o.Response))
	if o.Err != "" {
		fmt.Fprintf(r.w, "error: %s\n", r.paint(colorRed, o.Err))
	}
	fmt.Fprintf(r.w, "score: %s\n", r.paintScore(o.Score))
}

// PrintSummary writes the aggregate line for one finished batch.
func (r *TextReporter) PrintSummary(res *eval.Result) {
	line := fmt.Sprintf("%s  %s  mean %s over %d trials", res.Eval, res.Model, r.paintScore(res.Mean), res.Runs)
	if res.Failures > 0 {
		line += "  " + r.paint(colorYellow, fmt.Sprintf("(%d failed)", res.Failures))
	}
	fmt.Fprintln(r.w, line)
}

// PrintList writes the eval catalog.
func (r *TextReporter) PrintList(defs []eval.TaskDefinition) {
	fmt.Fprintln(r.w, "Available evaluations:")
	fmt.Fprintln(r.w, strings.Repeat("-", 50))
	for _, def := range defs {
		r.PrintInfo(def)
	}
}

// PrintInfo writes one eval's catalog entry.
func (r *TextReporter) PrintInfo(def eval.TaskDefinition) {
	fmt.Fprintf(r.w, "%-20s | %s\n", def.Name, def.Description)
	fmt.Fprintf(r.w, "%-20s | Default runs: %d\n", "", def.DefaultRuns)
	if len(def.DefaultParams) > 0 {
		var parts []string
		for _, k := range def.DefaultParams.Keys() {
			parts = append(parts, fmt.Sprintf("%s=%v", k, def.DefaultParams[k]))
		}
		fmt.Fprintf(r.w, "%-20s | Default params: %s\n", "", strings.Join(parts, ", "))
	}
	fmt.Fprintln(r.w)
}

// PrintRows writes stored result rows as a table.
func (r *TextReporter) PrintRows(rows []store.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(r.w, "no results")
		return
	}
	fmt.Fprintf(r.w, "%-20s %-28s %-24s %8s %6s\n", "TIME", "EVAL", "MODEL", "MEAN", "RUNS")
	for _, row := range rows {
		r.PrintRow(row)
	}
}

// PrintRow writes one stored result row.
func (r *TextReporter) PrintRow(row store.Row) {
	fmt.Fprintf(r.w, "%-20s %-28s %-24s %8.3f %6d\n",
		row.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		row.Eval, row.Model, row.Mean, row.Runs)
}

func (r *TextReporter) paintScore(score float64) string {
	s := fmt.Sprintf("%.3f", score)
	switch {
	case score > 0:
		return r.paint(colorGreen, s)
	case score < 0:
		return r.paint(colorRed, s)
	default:
		return r.paint(colorDim, s)
	}
}
