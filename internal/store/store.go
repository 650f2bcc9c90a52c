// Package store persists fitted models, their metadata, and the rendered
// reports into timestamp-named run directories.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/utils"
)

const (
	// FolderLayout names run directories by creation time.
	FolderLayout = "2006-01-02_15-04-05"

	ModelFileName            = "model.bin"
	MetadataFileName         = "metadata.yaml"
	TechnicalReportFileName  = "report_data.html"
	BusinessReportFileName   = "report_business.html"
	runsSubdir               = "models"
)

// DateRange bounds the training data period (ISO dates).
type DateRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ModelConfig is the configuration snapshot recorded at save time.
type ModelConfig struct {
	KPIType  string                `yaml:"kpi_type"`
	Model    config.ModelParams    `yaml:"model_params"`
	Sampling config.SamplingParams `yaml:"sampling"`
}

// Metadata describes a saved run. Write-once; never updated after SaveMetadata.
type Metadata struct {
	RunID         string      `yaml:"run_id"`
	FolderName    string      `yaml:"folder_name"`
	DataHash      string      `yaml:"data_hash"`
	CreatedAt     time.Time   `yaml:"created_at"`
	DataShape     []int       `yaml:"data_shape,flow"`
	DataColumns   []string    `yaml:"data_columns"`
	DateRange     DateRange   `yaml:"date_range"`
	ModelConfig   ModelConfig `yaml:"model_config"`
	ConfigFile    string      `yaml:"config_file,omitempty"`
	DataFile      string      `yaml:"data_file,omitempty"`
	EngineVersion string      `yaml:"engine_version,omitempty"`
	// Sampler warnings recorded verbatim, e.g. non-convergence notes.
	Diagnostics []string `yaml:"diagnostics,omitempty"`
}

// Store manages the run directory tree under the outputs directory.
type Store struct {
	outputsDir string
}

func New(outputsDir string) *Store {
	return &Store{outputsDir: outputsDir}
}

// RunsDir is the directory holding one subdirectory per saved run.
func (s *Store) RunsDir() string {
	return filepath.Join(s.outputsDir, runsSubdir)
}

// Run is an open run directory being written.
type Run struct {
	Dir    string
	Folder string
}

// CreateRun makes a timestamp-named run directory.
func (s *Store) CreateRun(now time.Time) (*Run, error) {
	folder := now.Format(FolderLayout)
	dir := filepath.Join(s.RunsDir(), folder)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &Run{Dir: dir, Folder: folder}, nil
}

// SaveModel writes the opaque fitted-model blob.
func (r *Run) SaveModel(blob []byte) error {
	if len(blob) == 0 {
		return errors.New("model blob is empty")
	}
	if err := utils.SafeWriteFile(filepath.Join(r.Dir, ModelFileName), blob); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// SaveMetadata writes metadata.yaml. Metadata is write-once: a second save for
// the same run fails.
func (r *Run) SaveMetadata(md *Metadata) error {
	path := filepath.Join(r.Dir, MetadataFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("metadata already written for run %s", r.Folder)
	}
	md.FolderName = r.Folder
	b, err := yaml.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// WriteReport writes a rendered HTML report into the run directory.
func (r *Run) WriteReport(name string, html []byte) error {
	if err := utils.SafeWriteFile(filepath.Join(r.Dir, name), html); err != nil {
		return fmt.Errorf("save report %s: %w", name, err)
	}
	return nil
}

// LoadedRun is a previously saved run read back from disk.
type LoadedRun struct {
	Dir      string
	Folder   string
	Model    []byte
	Metadata *Metadata
}

// LoadRun reads the model blob and metadata from a run directory.
func LoadRun(dir string) (*LoadedRun, error) {
	blob, err := os.ReadFile(filepath.Join(dir, ModelFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no saved model at %s: %w", dir, err)
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	md, err := readMetadata(dir)
	if err != nil {
		return nil, err
	}
	return &LoadedRun{
		Dir:      dir,
		Folder:   filepath.Base(dir),
		Model:    blob,
		Metadata: md,
	}, nil
}

// RunInfo is a listing entry for a saved run.
type RunInfo struct {
	Folder   string
	Dir      string
	Metadata *Metadata
}

// List enumerates saved runs, newest first (folder names sort by timestamp).
// Directories without a model file are skipped; a missing metadata file falls
// back to the folder name so old runs still show up.
func (s *Store) List() ([]RunInfo, error) {
	entries, err := os.ReadDir(s.RunsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}
	var runs []RunInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.RunsDir(), e.Name())
		if !utils.FileExists(filepath.Join(dir, ModelFileName)) {
			continue
		}
		md, err := readMetadata(dir)
		if err != nil {
			md = &Metadata{FolderName: e.Name()}
		}
		runs = append(runs, RunInfo{Folder: e.Name(), Dir: dir, Metadata: md})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Folder > runs[j].Folder })
	return runs, nil
}

func readMetadata(dir string) (*Metadata, error) {
	b, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Metadata{FolderName: filepath.Base(dir)}, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var md Metadata
	if err := yaml.Unmarshal(b, &md); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &md, nil
}
