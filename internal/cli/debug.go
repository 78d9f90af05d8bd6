package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/evalforge/internal/config"
	"github.com/ppiankov/evalforge/internal/eval"
	"github.com/ppiankov/evalforge/internal/llm"
	"github.com/ppiankov/evalforge/internal/reporter"
)

func newDebugCmd() *cobra.Command {
	var (
		seed       int64
		paramFlags []string
	)

	cmd := &cobra.Command{
		Use:   "debug <eval> <model>",
		Short: "Run a single trial with full prompt/response output",
		Long:  "Debug runs exactly one trial and prints the prompts, raw model responses, and score. Given the same --seed it reproduces the identical trial, never saving anything.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			params, err := parseParamFlags(paramFlags)
			if err != nil {
				return err
			}

			registry := eval.DefaultRegistry()
			def, err := registry.Get(args[0])
			if err != nil {
				return err
			}

			apiKey, err := cfg.ResolveAPIKey()
			if err != nil {
				return err
			}
			client, err := llm.New(llm.Config{
				BaseURL:   cfg.BaseURL,
				APIKey:    apiKey,
				MaxTokens: cfg.MaxTokens,
			})
			if err != nil {
				return err
			}

			model := args[1]
			res, err := eval.Run(context.Background(), def, model, client.Caller(model), eval.Options{
				Runs:    1,
				Workers: 1,
				Seed:    seed,
				Params:  params,
			})
			if err != nil {
				return err
			}

			textRep := reporter.NewTextReporter(os.Stdout, isTerminal())
			for _, o := range res.Outcomes {
				textRep.PrintTrial(o)
			}
			textRep.PrintSummary(res)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for reproducible trials")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "eval parameter override, key=value (repeatable)")

	return cmd
}
