package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"autoreel/internal/history"
	"autoreel/pkg/config"
)

var historyRemote bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past reel runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVarP(&historyRemote, "remote", "r", false, "List runs archived in GCS instead of local ones")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if historyRemote {
		if cfg.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is not configured")
		}
		archive, err := history.NewGCSArchive(ctx, cfg.GCSBucket, "reels")
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close() }()

		runs, err := archive.List(ctx)
		if err != nil {
			return err
		}
		printRuns(runs, "gs://"+cfg.GCSBucket)
		return nil
	}

	entries, err := os.ReadDir(cfg.History.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println(dimStyle.Render("No runs recorded yet."))
			return nil
		}
		return err
	}

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			runs = append(runs, entry.Name())
		}
	}
	printRuns(runs, cfg.History.Dir)
	return nil
}

func printRuns(runs []string, location string) {
	if len(runs) == 0 {
		fmt.Println(dimStyle.Render("No runs recorded yet."))
		return
	}
	sort.Strings(runs)
	fmt.Println(sectionStyle.Render("Runs in " + location))
	for _, run := range runs {
		fmt.Println("  " + run)
	}
}
