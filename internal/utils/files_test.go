package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harvestmetrics/mixctl/internal/utils"
)

func TestSafeWriteFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "metadata.yaml")
	if err := utils.SafeWriteFile(p, []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := utils.SafeWriteFile(p, []byte("second")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "second" {
		t.Fatalf("expected replaced content, got %q", b)
	}
	if utils.FileExists(p + ".tmp") {
		t.Fatal("temp file left behind")
	}
}

func TestListFilesByExt(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "c.YAML"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	names, err := utils.ListFilesByExt(dir, ".yaml", ".yml")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a.yml", "b.yaml", "c.YAML"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestListFilesByExt_MissingDir(t *testing.T) {
	names, err := utils.ListFilesByExt(filepath.Join(t.TempDir(), "nope"), ".yaml")
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list, got %v", names)
	}
}
