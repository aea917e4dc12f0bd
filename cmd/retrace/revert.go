package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert [n]",
	Short: "Undo the last n changes",
	Long: `Undo the most recently applied changes, newest first.

Reverted changes stay in the journal until a new change is recorded,
so history remains inspectable with 'retrace log'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 1
		if len(args) == 1 {
			var err error
			n, err = strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid count: %s", args[0])
			}
		}

		j, closer, err := openJournal()
		if err != nil {
			return err
		}
		defer closer()

		if err := j.RevertLast(n); err != nil {
			return err
		}
		printInfo("Reverted %d change(s); %d still applied.", n, j.Applied())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revertCmd)
}
