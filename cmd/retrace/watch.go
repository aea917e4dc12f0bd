package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/retrace/pkg/retrace/broadcaster"
	"github.com/jamesainslie/retrace/pkg/retrace/config"
	"github.com/jamesainslie/retrace/pkg/retrace/types"
	"github.com/jamesainslie/retrace/pkg/retrace/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Record live changes until interrupted",
	Long: `Watch a directory recursively and record every create, write and
remove as a journal change. Runs in the foreground until interrupted
with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := config.ExpandPath(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		maxSize, err := types.ParseSize(cfg.MaxFileSize)
		if err != nil {
			return fmt.Errorf("invalid max_file_size: %w", err)
		}

		j, closer, err := openJournal()
		if err != nil {
			return err
		}
		defer closer()

		w, err := watcher.New(j, root)
		if err != nil {
			return err
		}
		defer w.Close()

		w.SetMaxFileSize(maxSize)
		w.SetExclude(cfg.Exclude)

		b := broadcaster.New()
		defer b.Close()
		w.SetBroadcaster(b)

		if err := w.Watch(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !getQuiet() {
			sub := b.Subscribe(nil)
			go func() {
				for event := range sub.Events {
					fmt.Printf("%4d  %-11s %s\n", event.Seq, event.Kind, event.Path)
				}
			}()
			defer b.Unsubscribe(sub.ID)
		}

		printInfo("Watching %s (Ctrl-C to stop)", root)
		w.Run(ctx)
		printInfo("Stopped; %d change(s) recorded.", j.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
