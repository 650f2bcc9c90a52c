package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/store"
)

var reportList bool

var reportCmd = &cobra.Command{
	Use:   "report [run]",
	Short: "Regenerate reports for a saved model",
	Long: `Load a previously saved model, ask the inference engine to summarize it,
and rewrite the technical and business reports in the run directory. With no
argument the newest (or interactively selected) run is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := store.New(cfg.OutputsDir)
		if reportList {
			return printRuns(st)
		}
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		info, err := pickRun(st, arg)
		if err != nil {
			return err
		}
		loaded, err := store.LoadRun(info.Dir)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Model: %s\n", loaded.Folder)

		run := &store.Run{Dir: loaded.Dir, Folder: loaded.Folder}
		win := cfgpkg.ReportWindow{
			StartDate: loaded.Metadata.DateRange.Start,
			EndDate:   loaded.Metadata.DateRange.End,
		}
		if err := writeReports(cmd.Context(), newEngineClient(), run, loaded.Model, win, loaded.Metadata); err != nil {
			return err
		}
		fmt.Printf("✓ Reports regenerated in %s\n", loaded.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportList, "list", false, "list saved runs and exit")
}

func printRuns(s *store.Store) error {
	runs, err := s.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("(no saved runs in %s)\n", s.RunsDir())
		return nil
	}
	for _, r := range runs {
		line := "- " + r.Folder
		if d := runDetail(r.Metadata); d != "" {
			line += "  " + d
		}
		fmt.Println(line)
		if r.Metadata.ConfigFile != "" {
			fmt.Printf("    config: %s, data: %s\n", r.Metadata.ConfigFile, r.Metadata.DataFile)
		}
		if n := len(r.Metadata.Diagnostics); n > 0 {
			fmt.Printf("    ⚠ %d sampler warning(s)\n", n)
		}
	}
	return nil
}
