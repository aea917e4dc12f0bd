package main

import (
	"github.com/jamesainslie/retrace/cmd/retrace/tui"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive history browser",
	Long: `Browse recorded history in a full-screen terminal UI: navigate
changes, inspect one in detail, and revert back to a chosen point.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, closer, err := openJournal()
		if err != nil {
			return err
		}
		defer closer()

		return tui.Run(j)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
