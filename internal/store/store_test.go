package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/store"
)

func sampleMetadata() *store.Metadata {
	return &store.Metadata{
		RunID:       uuid.NewString(),
		DataHash:    "a3f9c2e1b4d87650",
		CreatedAt:   time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		DataShape:   []int{104, 7},
		DataColumns: []string{"week", "signups", "fb_impressions", "fb_spend"},
		DateRange:   store.DateRange{Start: "2023-01-02", End: "2024-12-30"},
		ModelConfig: store.ModelConfig{
			KPIType:  "non_revenue",
			Model:    config.ModelParams{MaxLag: 8, NSplineKnots: 10},
			Sampling: config.SamplingParams{NChains: 4, NAdapt: 500, NBurnin: 500, NKeep: 1000},
		},
		ConfigFile:  "config_v1.yaml",
		Diagnostics: []string{"R-hat above 1.1 for 3 parameters"},
	}
}

func TestSaveAndLoadRun_MetadataFidelity(t *testing.T) {
	s := store.New(t.TempDir())
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	run, err := s.CreateRun(now)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if run.Folder != "2024-06-01_10-30-00" {
		t.Fatalf("folder name: got %q", run.Folder)
	}
	if err := run.SaveModel([]byte("posterior-blob")); err != nil {
		t.Fatalf("save model: %v", err)
	}
	md := sampleMetadata()
	if err := run.SaveMetadata(md); err != nil {
		t.Fatalf("save metadata: %v", err)
	}

	loaded, err := store.LoadRun(run.Dir)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if string(loaded.Model) != "posterior-blob" {
		t.Fatalf("model blob: got %q", loaded.Model)
	}
	got := loaded.Metadata
	if got.DataHash != md.DataHash {
		t.Fatalf("data hash: got %q want %q", got.DataHash, md.DataHash)
	}
	if len(got.DataShape) != 2 || got.DataShape[0] != 104 || got.DataShape[1] != 7 {
		t.Fatalf("data shape: got %v", got.DataShape)
	}
	if got.DateRange != md.DateRange {
		t.Fatalf("date range: got %+v", got.DateRange)
	}
	if got.ModelConfig.Sampling.NKeep != 1000 {
		t.Fatalf("sampling snapshot: got %+v", got.ModelConfig.Sampling)
	}
	if got.FolderName != run.Folder {
		t.Fatalf("folder name in metadata: got %q", got.FolderName)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0] != md.Diagnostics[0] {
		t.Fatalf("diagnostics: got %v", got.Diagnostics)
	}
}

func TestSaveMetadata_WriteOnce(t *testing.T) {
	s := store.New(t.TempDir())
	run, err := s.CreateRun(time.Now())
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := run.SaveMetadata(sampleMetadata()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := run.SaveMetadata(sampleMetadata()); err == nil {
		t.Fatal("second save must fail: metadata is write-once")
	}
}

func TestList_NewestFirstSkipsIncomplete(t *testing.T) {
	s := store.New(t.TempDir())
	stamps := []time.Time{
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	for _, ts := range stamps {
		run, err := s.CreateRun(ts)
		if err != nil {
			t.Fatalf("create run: %v", err)
		}
		if err := run.SaveModel([]byte("blob")); err != nil {
			t.Fatalf("save model: %v", err)
		}
		if err := run.SaveMetadata(sampleMetadata()); err != nil {
			t.Fatalf("save metadata: %v", err)
		}
	}
	// Incomplete run: directory without a model file must be skipped.
	if _, err := s.CreateRun(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("create incomplete run: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	want := []string{"2024-06-01_09-00-00", "2024-05-01_09-00-00", "2024-04-01_09-00-00"}
	for i, w := range want {
		if runs[i].Folder != w {
			t.Fatalf("order: got %v", runs)
		}
	}
}

func TestList_MissingMetadataFallsBack(t *testing.T) {
	s := store.New(t.TempDir())
	run, err := s.CreateRun(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := run.SaveModel([]byte("blob")); err != nil {
		t.Fatalf("save model: %v", err)
	}
	runs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].Metadata.FolderName != run.Folder {
		t.Fatalf("fallback metadata: got %+v", runs)
	}
}

func TestList_EmptyStore(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "fresh"))
	runs, err := s.List()
	if err != nil {
		t.Fatalf("list on empty store: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %v", runs)
	}
}

func TestLoadRun_MissingModel(t *testing.T) {
	dir := t.TempDir()
	if _, err := store.LoadRun(dir); err == nil {
		t.Fatal("expected error for missing model file")
	}
	// an unreadable metadata file surfaces as an error too
	if err := os.WriteFile(filepath.Join(dir, store.ModelFileName), []byte("blob"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, store.MetadataFileName), []byte(":\tnot yaml"), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	if _, err := store.LoadRun(dir); err == nil {
		t.Fatal("expected error for malformed metadata")
	}
}
