package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/retrace/pkg/retrace/config"
	"github.com/jamesainslie/retrace/pkg/retrace/importer"
	"github.com/jamesainslie/retrace/pkg/retrace/types"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Seed the journal from an existing tree",
	Long: `Walk a directory and record every file and directory in it as
creation changes, so the imported state becomes part of the replayable
history. Import into a fresh journal; importing on top of existing
history skips entries that already exist.`,
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

		imp := importer.New(j, maxSize, cfg.Exclude)
		stats, err := imp.Import(root)
		if err != nil {
			return err
		}

		printInfo("Imported %d directories, %d files (%s); %d skipped.",
			stats.Dirs, stats.Files, humanize.IBytes(uint64(stats.Bytes)), stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
