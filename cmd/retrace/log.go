package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recorded history",
	Long: `Show the journal's recorded changes in order, oldest first.

Changes past the applied watermark (reverted but not yet overwritten)
are marked as reverted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, closer, err := openJournal()
		if err != nil {
			return err
		}
		defer closer()

		limit, _ := cmd.Flags().GetInt("limit")
		changes := j.Changes()
		applied := j.Applied()

		start := 0
		if limit > 0 && len(changes) > limit {
			start = len(changes) - limit
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			type record struct {
				Seq      int    `json:"seq"`
				Kind     string `json:"kind"`
				Path     string `json:"path"`
				Reverted bool   `json:"reverted,omitempty"`
			}
			records := make([]record, 0, len(changes)-start)
			for seq := start; seq < len(changes); seq++ {
				records = append(records, record{
					Seq:      seq,
					Kind:     changes[seq].Kind().String(),
					Path:     changes[seq].Path().String(),
					Reverted: seq >= applied,
				})
			}
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		if len(changes) == 0 {
			printInfo("Journal is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tKIND\tPATH\t")
		for seq := start; seq < len(changes); seq++ {
			marker := ""
			if seq >= applied {
				marker = "(reverted)"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				seq, changes[seq].Kind(), displayPath(changes[seq]), marker)
		}
		return w.Flush()
	},
}

// displayPath renders a change's target for the log table, including
// the destination for renames and moves.
func displayPath(c change.Change) string {
	switch v := c.(type) {
	case *change.Rename:
		return fmt.Sprintf("%s -> %s", v.Path(), v.NewName())
	case *change.Move:
		return fmt.Sprintf("%s -> %s/", v.Path(), v.NewParent())
	default:
		return c.Path().String()
	}
}

func init() {
	logCmd.Flags().IntP("limit", "n", 0, "show only the last N changes")
	rootCmd.AddCommand(logCmd)
}
