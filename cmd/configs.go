package cmd

import (
	"github.com/spf13/cobra"
)

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "List available dataset config files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConfigFiles()
	},
}

func init() {
	rootCmd.AddCommand(configsCmd)
}
