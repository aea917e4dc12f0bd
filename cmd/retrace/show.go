package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <seq>",
	Short: "Show one recorded change in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid sequence number: %s", args[0])
		}

		j, closer, err := openJournal()
		if err != nil {
			return err
		}
		defer closer()

		c, err := j.Change(seq)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return printChangeJSON(seq, c, seq >= j.Applied())
		}

		fmt.Printf("Change %d\n", seq)
		fmt.Printf("  kind: %s\n", c.Kind())
		fmt.Printf("  path: %s\n", c.Path())
		switch v := c.(type) {
		case *change.CreateFile:
			fmt.Printf("  id:   %d\n", v.ID())
			fmt.Printf("  size: %s\n", humanize.IBytes(uint64(len(v.Content()))))
		case *change.CreateDirectory:
			fmt.Printf("  id:   %d\n", v.ID())
		case *change.Rename:
			fmt.Printf("  to:   %s\n", v.NewName())
		case *change.Move:
			fmt.Printf("  to:   %s/\n", v.NewParent())
		case *change.SetContent:
			fmt.Printf("  size: %s\n", humanize.IBytes(uint64(len(v.Content()))))
		}
		if seq >= j.Applied() {
			fmt.Println("  state: reverted")
		}
		for _, idPath := range c.AffectedIDPaths() {
			fmt.Printf("  id-path: %s\n", idPath)
		}
		return nil
	},
}

func printChangeJSON(seq int, c change.Change, reverted bool) error {
	out := map[string]interface{}{
		"seq":  seq,
		"kind": c.Kind().String(),
		"path": c.Path().String(),
	}
	if reverted {
		out["reverted"] = true
	}
	switch v := c.(type) {
	case *change.CreateFile:
		out["id"] = v.ID()
		out["size"] = len(v.Content())
	case *change.CreateDirectory:
		out["id"] = v.ID()
	case *change.Rename:
		out["new_name"] = v.NewName()
	case *change.Move:
		out["new_parent"] = v.NewParent().String()
	case *change.SetContent:
		out["size"] = len(v.Content())
	}
	if idPaths := c.AffectedIDPaths(); len(idPaths) > 0 {
		strs := make([]string, len(idPaths))
		for i, p := range idPaths {
			strs[i] = p.String()
		}
		out["id_paths"] = strs
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
