package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ppiankov/evalforge/internal/config"
	"github.com/ppiankov/evalforge/internal/reporter"
	"github.com/ppiankov/evalforge/internal/store"
)

func newWatchCmd() *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the results database and print rows as they land",
		Long:  "Watch prints the most recent stored results, then follows the database and prints each row that sibling evalforge processes append.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return watchResults(cfg.ResolveDBPath(), tail)
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 10, "rows to print before following")
	return cmd
}

func watchResults(dbPath string, tail int) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open results db: %w", err)
	}
	defer s.Close()

	textRep := reporter.NewTextReporter(os.Stdout, isTerminal())

	rows, err := s.Recent(tail)
	if err != nil {
		return err
	}
	// Recent is newest-first; replay oldest-first like a log
	last := time.Time{}
	for i := len(rows) - 1; i >= 0; i-- {
		textRep.PrintRow(rows[i])
		if rows[i].CreatedAt.After(last) {
			last = rows[i].CreatedAt
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory: sqlite writes land in the db and its -wal file
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(dbPath), err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	// fsnotify can coalesce or miss events around WAL checkpoints, so a
	// slow poll backs it up
	poll := time.NewTicker(5 * time.Second)
	defer poll.Stop()

	drain := func() error {
		fresh, err := s.Since(last)
		if err != nil {
			return err
		}
		for _, row := range fresh {
			textRep.PrintRow(row)
			if row.CreatedAt.After(last) {
				last = row.CreatedAt
			}
		}
		return nil
	}

	for {
		select {
		case <-sigCh:
			return nil
		case <-poll.C:
			if err := drain(); err != nil {
				return err
			}
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := drain(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}
