package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harvestmetrics/mixctl/internal/store"
	"github.com/harvestmetrics/mixctl/internal/tui"
	"github.com/harvestmetrics/mixctl/internal/utils"
)

// resolveConfigPath turns a --config value into a dataset config file path.
// Bare names get ".yaml" implied and are looked up in the configs directory.
// With no name, an interactive picker over the configs directory is shown.
func resolveConfigPath(name string) (string, error) {
	if name == "" {
		return pickConfigFile()
	}
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+".yaml", name+".yml")
	}
	for _, c := range candidates {
		if utils.FileExists(c) {
			return c, nil
		}
		if p := filepath.Join(cfg.ConfigsDir, c); utils.FileExists(p) {
			return p, nil
		}
	}
	avail, _ := utils.ListFilesByExt(cfg.ConfigsDir, ".yaml", ".yml")
	if len(avail) == 0 {
		return "", fmt.Errorf("config %q not found and no config files in %s", name, cfg.ConfigsDir)
	}
	return "", fmt.Errorf("config %q not found (available: %s)", name, strings.Join(avail, ", "))
}

func pickConfigFile() (string, error) {
	names, err := utils.ListFilesByExt(cfg.ConfigsDir, ".yaml", ".yml")
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no config files in %s", cfg.ConfigsDir)
	}
	if len(names) == 1 {
		return filepath.Join(cfg.ConfigsDir, names[0]), nil
	}
	if !tui.IsInteractive() {
		return "", fmt.Errorf("multiple config files in %s; use --config to choose one (available: %s)",
			cfg.ConfigsDir, strings.Join(names, ", "))
	}
	items := make([]tui.Item, len(names))
	for i, n := range names {
		items[i] = tui.Item{Label: n}
	}
	idx, err := tui.Pick("Select a model configuration", items)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg.ConfigsDir, names[idx]), nil
}

// resolveDataPath turns a --data value into a CSV file path. Bare names get
// ".csv" implied and are looked up in the data directory.
func resolveDataPath(name string) (string, error) {
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+".csv")
	}
	for _, c := range candidates {
		if utils.FileExists(c) {
			return c, nil
		}
		if p := filepath.Join(cfg.DataDir, c); utils.FileExists(p) {
			return p, nil
		}
	}
	avail, _ := utils.ListFilesByExt(cfg.DataDir, ".csv", ".tsv")
	if len(avail) == 0 {
		return "", fmt.Errorf("data file %q not found and no data files in %s", name, cfg.DataDir)
	}
	return "", fmt.Errorf("data file %q not found (available: %s)", name, strings.Join(avail, ", "))
}

// pickRun selects a saved run: by folder name or path when given, newest when
// only one exists, interactively otherwise.
func pickRun(s *store.Store, arg string) (*store.RunInfo, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if arg != "" {
		for i := range runs {
			if runs[i].Folder == arg || runs[i].Dir == arg || runs[i].Dir == filepath.Clean(arg) {
				return &runs[i], nil
			}
		}
		return nil, fmt.Errorf("no saved run %q under %s", arg, s.RunsDir())
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no saved runs under %s (run 'mixctl run' first)", s.RunsDir())
	}
	if len(runs) == 1 || !tui.IsInteractive() {
		return &runs[0], nil
	}
	items := make([]tui.Item, len(runs))
	for i, r := range runs {
		items[i] = tui.Item{Label: r.Folder, Detail: runDetail(r.Metadata)}
	}
	idx, err := tui.Pick("Select a saved model", items)
	if err != nil {
		return nil, err
	}
	return &runs[idx], nil
}

func runDetail(md *store.Metadata) string {
	var parts []string
	if len(md.DataShape) == 2 {
		parts = append(parts, fmt.Sprintf("%d rows × %d cols", md.DataShape[0], md.DataShape[1]))
	}
	if md.DateRange.Start != "" {
		parts = append(parts, md.DateRange.Start+" → "+md.DateRange.End)
	}
	if md.DataHash != "" {
		parts = append(parts, "data "+md.DataHash)
	}
	return strings.Join(parts, "  ")
}
