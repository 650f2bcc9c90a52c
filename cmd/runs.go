package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harvestmetrics/mixctl/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved model runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRuns(store.New(cfg.OutputsDir))
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
