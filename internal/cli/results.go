package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/evalforge/internal/config"
	"github.com/ppiankov/evalforge/internal/reporter"
	"github.com/ppiankov/evalforge/internal/store"
)

func newResultsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show recent stored results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			s, err := store.Open(cfg.ResolveDBPath())
			if err != nil {
				return fmt.Errorf("open results db: %w", err)
			}
			defer s.Close()

			rows, err := s.Recent(limit)
			if err != nil {
				return err
			}
			reporter.NewTextReporter(os.Stdout, isTerminal()).PrintRows(rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max rows to show")
	return cmd
}
