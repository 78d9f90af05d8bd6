package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/evalforge/internal/eval"
	"github.com/ppiankov/evalforge/internal/reporter"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all available evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			textRep := reporter.NewTextReporter(os.Stdout, isTerminal())
			textRep.PrintList(eval.DefaultRegistry().List())
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <eval>",
		Short: "Show one evaluation's description and defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := eval.DefaultRegistry().Get(args[0])
			if err != nil {
				return err
			}
			textRep := reporter.NewTextReporter(os.Stdout, isTerminal())
			textRep.PrintInfo(def)
			return nil
		},
	}
}
