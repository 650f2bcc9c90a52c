package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/store"
)

func testGlobals(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := cfg
	cfg = cfgpkg.Defaults()
	cfg.ConfigsDir = filepath.Join(dir, "configs")
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.OutputsDir = filepath.Join(dir, "outputs")
	t.Cleanup(func() { cfg = old })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	testGlobals(t)
	writeFile(t, filepath.Join(cfg.ConfigsDir, "config_v1.yaml"), "default_dataset: a\n")

	// Bare name gets .yaml implied and is found in the configs dir.
	got, err := resolveConfigPath("config_v1")
	if err != nil {
		t.Fatalf("resolveConfigPath: %v", err)
	}
	if got != filepath.Join(cfg.ConfigsDir, "config_v1.yaml") {
		t.Errorf("unexpected path: %s", got)
	}

	// Full name works too.
	got, err = resolveConfigPath("config_v1.yaml")
	if err != nil {
		t.Fatalf("resolveConfigPath with extension: %v", err)
	}
	if filepath.Base(got) != "config_v1.yaml" {
		t.Errorf("unexpected path: %s", got)
	}

	// Unknown name errors and names the available files.
	_, err = resolveConfigPath("nope")
	if err == nil {
		t.Fatal("expected error for unknown config")
	}
	if !strings.Contains(err.Error(), "config_v1.yaml") {
		t.Errorf("error should list available configs, got: %v", err)
	}
}

func TestResolveConfigPathNoConfigs(t *testing.T) {
	testGlobals(t)
	_, err := resolveConfigPath("anything")
	if err == nil {
		t.Fatal("expected error when configs dir is empty")
	}
}

func TestResolveDataPath(t *testing.T) {
	testGlobals(t)
	writeFile(t, filepath.Join(cfg.DataDir, "spend.csv"), "date,sales\n")

	got, err := resolveDataPath("spend")
	if err != nil {
		t.Fatalf("resolveDataPath: %v", err)
	}
	if got != filepath.Join(cfg.DataDir, "spend.csv") {
		t.Errorf("unexpected path: %s", got)
	}

	_, err = resolveDataPath("missing.csv")
	if err == nil {
		t.Fatal("expected error for missing data file")
	}
	if !strings.Contains(err.Error(), "spend.csv") {
		t.Errorf("error should list available data files, got: %v", err)
	}
}

func TestPickRunByName(t *testing.T) {
	testGlobals(t)
	st := store.New(cfg.OutputsDir)
	for _, folder := range []string{"2025-01-01_10-00-00", "2025-02-01_10-00-00"} {
		dir := filepath.Join(st.RunsDir(), folder)
		writeFile(t, filepath.Join(dir, store.ModelFileName), "blob")
		writeFile(t, filepath.Join(dir, store.MetadataFileName), "run_id: x\nfolder_name: "+folder+"\n")
	}

	info, err := pickRun(st, "2025-01-01_10-00-00")
	if err != nil {
		t.Fatalf("pickRun by name: %v", err)
	}
	if info.Folder != "2025-01-01_10-00-00" {
		t.Errorf("got folder %s", info.Folder)
	}

	if _, err := pickRun(st, "2024-12-31_00-00-00"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestPickRunEmptyStore(t *testing.T) {
	testGlobals(t)
	if _, err := pickRun(store.New(cfg.OutputsDir), ""); err == nil {
		t.Fatal("expected error with no saved runs")
	}
}

func TestRunDetail(t *testing.T) {
	md := &store.Metadata{
		DataShape: []int{156, 12},
		DateRange: store.DateRange{Start: "2022-01-03", End: "2024-12-23"},
		DataHash:  "a1b2c3d4e5f60718",
	}
	got := runDetail(md)
	for _, want := range []string{"156 rows", "12 cols", "2022-01-03 → 2024-12-23", "a1b2c3d4e5f60718"} {
		if !strings.Contains(got, want) {
			t.Errorf("detail missing %q: %s", want, got)
		}
	}
	if runDetail(&store.Metadata{}) != "" {
		t.Errorf("empty metadata should yield empty detail")
	}
}
