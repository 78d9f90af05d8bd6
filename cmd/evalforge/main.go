package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/evalforge/internal/cli"
	"github.com/ppiankov/evalforge/internal/eval"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, eval.ErrUnknownEval) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
