package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cfgpkg "github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/store"
	"github.com/harvestmetrics/mixctl/internal/utils"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the workspace and engine are ready for a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok := true
		check := func(passed bool, format string, a ...any) {
			mark := "✓"
			if !passed {
				mark = "✗"
				ok = false
			}
			fmt.Printf("%s %s\n", mark, fmt.Sprintf(format, a...))
		}

		// Config files present and parsable, with their data files in reach.
		names, err := utils.ListFilesByExt(cfg.ConfigsDir, ".yaml", ".yml")
		check(err == nil && len(names) > 0, "config files in %s: %d", cfg.ConfigsDir, len(names))
		for _, n := range names {
			path := filepath.Join(cfg.ConfigsDir, n)
			file, err := cfgpkg.LoadDatasetFile(path)
			if err != nil {
				check(false, "%s: %v", n, err)
				continue
			}
			for key, ds := range file.Datasets {
				if err := ds.Validate(); err != nil {
					check(false, "%s [%s]: %v", n, key, err)
					continue
				}
				if _, err := resolveDataPath(ds.CSVPath); err != nil {
					check(false, "%s [%s]: %v", n, key, err)
					continue
				}
				check(true, "%s [%s] parses and its data file exists", n, key)
			}
		}

		// Outputs directory writable.
		runsDir := store.New(cfg.OutputsDir).RunsDir()
		if err := utils.EnsureDir(runsDir); err != nil {
			check(false, "outputs dir %s: %v", runsDir, err)
		} else {
			probe := filepath.Join(runsDir, ".doctor")
			werr := os.WriteFile(probe, []byte("ok"), 0o644)
			_ = os.Remove(probe)
			check(werr == nil, "outputs dir writable: %s", runsDir)
		}

		// Engine reachable.
		h, err := newEngineClient().Health(cmd.Context())
		if err != nil {
			check(false, "engine at %s: %v", cfg.EngineHost, err)
		} else {
			check(true, "engine at %s: %s (version %s)", cfg.EngineHost, h.Status, h.Version)
		}

		if !ok {
			return fmt.Errorf("some checks failed")
		}
		fmt.Println("All checks passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
