package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/evalforge/internal/config"
)

// Version and Commit are set via LDFLAGS at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var (
	verbose    bool
	configFile string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evalforge",
		Short: "Benchmark language models on programmatically verifiable tasks",
		Long:  "evalforge runs registered evaluations (arithmetic, tic-tac-toe against scripted opponents) against remote models, in parallel, and records a score per model and eval.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "path to config file")

	root.AddCommand(newListCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newDebugCmd())
	root.AddCommand(newResultsCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
