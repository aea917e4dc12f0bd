package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print file content from the tracked tree",
	Long: `Print a file's content as recorded in the journal.

By default the current state is shown. With --at, the tree is replayed
up to and including the given change, so any historical state of the
file can be recovered even if it has since been edited or deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := vfs.ParsePath(args[0])

		j, closer, err := openJournal()
		if err != nil {
			return err
		}
		defer closer()

		at, _ := cmd.Flags().GetInt("at")

		var entry *vfs.Entry
		if at >= 0 {
			root, err := j.ReplayTo(at + 1)
			if err != nil {
				return err
			}
			entry, err = root.Get(path)
			if err != nil {
				return fmt.Errorf("%s at change %d: %w", path, at, err)
			}
		} else {
			entry, err = j.Resolve(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		if entry.IsDirectory() {
			for _, child := range entry.Children() {
				suffix := ""
				if child.IsDirectory() {
					suffix = "/"
				}
				fmt.Printf("%s%s\n", child.Name(), suffix)
			}
			return nil
		}

		_, err = os.Stdout.Write(entry.Content())
		return err
	},
}

func init() {
	catCmd.Flags().Int("at", -1, "replay history up to this change (inclusive)")
	rootCmd.AddCommand(catCmd)
}
