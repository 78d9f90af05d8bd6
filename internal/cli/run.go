package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ppiankov/neurorouter"
	"github.com/spf13/cobra"

	"github.com/ppiankov/evalforge/internal/config"
	"github.com/ppiankov/evalforge/internal/eval"
	"github.com/ppiankov/evalforge/internal/llm"
	"github.com/ppiankov/evalforge/internal/reporter"
	"github.com/ppiankov/evalforge/internal/store"
)

func newRunCmd() *cobra.Command {
	var (
		runs       int
		workers    int
		seed       int64
		paramFlags []string
		noSave     bool
		tuiMode    string
	)

	cmd := &cobra.Command{
		Use:   "run <evals> <models>",
		Short: "Run batch evaluations against one or more models",
		Long:  "Run executes every eval in the comma-separated <evals> list against every model in <models>, with bounded concurrency, and appends each aggregate result to the results database.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
				workers = cfg.Workers
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}

			params, err := parseParamFlags(paramFlags)
			if err != nil {
				return err
			}

			return runBatches(batchConfig{
				evals:   splitList(args[0]),
				models:  splitList(args[1]),
				runs:    runs,
				workers: workers,
				seed:    seed,
				params:  params,
				save:    !noSave,
				tuiMode: tuiMode,
				cfg:     cfg,
			})
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 0, "number of trials per batch (default: per-eval)")
	cmd.Flags().IntVar(&workers, "workers", eval.DefaultWorkers, "max concurrent model calls")
	cmd.Flags().Int64Var(&seed, "seed", 0, "base seed for trial randomness (default: wall clock)")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "eval parameter override, key=value (repeatable)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not append results to the database")
	cmd.Flags().StringVar(&tuiMode, "tui", "auto", "display mode: full (interactive TUI), minimal (live counter), off, auto (detect TTY)")

	return cmd
}

// batchConfig holds parameters for runBatches.
type batchConfig struct {
	evals   []string
	models  []string
	runs    int
	workers int
	seed    int64
	params  map[string]string
	save    bool
	tuiMode string
	cfg     *config.Settings
}

func runBatches(bc batchConfig) error {
	registry := eval.DefaultRegistry()

	// resolve every eval up front so a typo fails before any model call
	defs := make([]eval.TaskDefinition, 0, len(bc.evals))
	for _, name := range bc.evals {
		def, err := registry.Get(name)
		if err != nil {
			return err
		}
		defs = append(defs, def)
	}

	apiKey, err := bc.cfg.ResolveAPIKey()
	if err != nil {
		return err
	}
	client, err := llm.New(llm.Config{
		BaseURL:   bc.cfg.BaseURL,
		APIKey:    apiKey,
		MaxTokens: bc.cfg.MaxTokens,
	})
	if err != nil {
		return err
	}

	// setup signal handling: interrupt stops feeding new trials but
	// lets in-flight model calls finish
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ninterrupted, waiting for in-flight trials to finish...")
		cancel()
	}()

	// start Responses API → Chat Completions proxy if configured
	if bc.cfg.Proxy != nil && bc.cfg.Proxy.Enabled {
		proxyCfg, err := resolveProxyConfig(bc.cfg.Proxy)
		if err != nil {
			return fmt.Errorf("proxy config: %w", err)
		}
		srv := neurorouter.NewProxy(proxyCfg)
		if _, err := srv.Start(); err != nil {
			// non-fatal: another evalforge process may already own the port
			slog.Warn("proxy start failed (may already be running)", "error", err)
		} else {
			defer func() {
				if err := srv.Stop(); err != nil {
					slog.Warn("proxy stop error", "error", err)
				}
			}()
		}
	}

	var sink *store.Store
	if bc.save {
		sink, err = store.Open(bc.cfg.ResolveDBPath())
		if err != nil {
			return fmt.Errorf("open results db: %w", err)
		}
		defer sink.Close()
	}

	isTTY := isTerminal()
	textRep := reporter.NewTextReporter(os.Stdout, isTTY)

	var failedBatches int
	for _, def := range defs {
		for _, model := range bc.models {
			if ctx.Err() != nil {
				break
			}
			res, err := runBatch(ctx, def, model, client, bc, textRep, isTTY)
			if err != nil {
				return err
			}
			textRep.PrintSummary(res)

			if sink != nil {
				row := store.Row{
					Eval:      res.Eval,
					Model:     res.Model,
					Mean:      res.Mean,
					Runs:      res.Runs,
					CreatedAt: res.Timestamp,
				}
				if err := sink.Append(row); err != nil {
					slog.Warn("failed to save result", "eval", res.Eval, "model", res.Model, "error", err)
				}
			}
			if res.Failures == res.Runs {
				failedBatches++
			}
		}
	}

	if failedBatches > 0 {
		return fmt.Errorf("%d batch(es) had every trial fail", failedBatches)
	}
	return nil
}

// runBatch executes one eval × model batch with the requested live
// display.
func runBatch(ctx context.Context, def eval.TaskDefinition, model string, client *llm.Client, bc batchConfig, textRep *reporter.TextReporter, isTTY bool) (*eval.Result, error) {
	runs := bc.runs
	if runs <= 0 {
		runs = def.DefaultRuns
	}
	textRep.PrintHeader(def.Name, model, runs, bc.workers)

	var done, failed atomic.Int64
	progress := func() reporter.Progress {
		return reporter.Progress{
			Done:   int(done.Load()),
			Failed: int(failed.Load()),
			Total:  runs,
		}
	}

	// resolve display mode: full TUI, minimal live counter, or off
	displayMode := bc.tuiMode
	if displayMode == "" || displayMode == "auto" {
		if isTTY {
			displayMode = "minimal"
		} else {
			displayMode = "off"
		}
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var live *reporter.LiveReporter
	var tuiProgram *tea.Program
	switch displayMode {
	case "full":
		tuiModel := reporter.NewTUIModel(def.Name, model, progress, cancelRun)
		tuiProgram = tea.NewProgram(tuiModel)
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				slog.Warn("TUI error", "error", err)
			}
		}()
	case "minimal":
		live = reporter.NewLiveReporter(os.Stdout, isTTY, progress)
		live.Start()
	default:
		// "off" or unrecognized: no live display
	}

	res, err := eval.Run(runCtx, def, model, client.Caller(model), eval.Options{
		Runs:    bc.runs,
		Workers: bc.workers,
		Seed:    bc.seed,
		Params:  bc.params,
		OnTrial: func(o eval.Outcome) {
			done.Add(1)
			if o.Failed {
				failed.Add(1)
			}
			slog.Debug("trial finished", "eval", def.Name, "trial", o.Index, "score", o.Score, "failed", o.Failed)
		},
	})

	if tuiProgram != nil {
		tuiProgram.Quit()
		tuiProgram.Wait()
	}
	if live != nil {
		live.Stop()
	}
	return res, err
}

// resolveProxyConfig converts config.ProxyConfig to neurorouter.ProxyConfig,
// resolving "env:VAR_NAME" references in API keys.
func resolveProxyConfig(pc *config.ProxyConfig) (neurorouter.ProxyConfig, error) {
	cfg := neurorouter.ProxyConfig{
		Listen:  pc.Listen,
		Targets: make(map[string]neurorouter.Target, len(pc.Targets)),
	}
	if cfg.Listen == "" {
		cfg.Listen = ":4000"
	}
	for name, t := range pc.Targets {
		apiKey, err := config.ResolveSecret(t.APIKey)
		if err != nil {
			return neurorouter.ProxyConfig{}, fmt.Errorf("target %q: %w", name, err)
		}
		cfg.Targets[name] = neurorouter.Target{
			BaseURL: t.BaseURL,
			APIKey:  apiKey,
		}
	}
	return cfg, nil
}
