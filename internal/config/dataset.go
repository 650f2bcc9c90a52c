package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for dataset configuration failures. Callers match with errors.Is.
var (
	ErrNotFound       = errors.New("config file not found")
	ErrMalformed      = errors.New("config file malformed")
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrInvalid        = errors.New("invalid dataset config")
)

// Columns maps dataset roles to raw CSV column names.
type Columns struct {
	Time       string   `yaml:"time"`
	Geo        string   `yaml:"geo,omitempty"`
	KPI        string   `yaml:"kpi"`
	Media      []string `yaml:"media"`
	MediaSpend []string `yaml:"media_spend"`
	Controls   []string `yaml:"controls,omitempty"`
}

// Prior holds per-channel prior parameters forwarded to the engine.
type Prior struct {
	Mean float64 `yaml:"prior_mean"`
	SD   float64 `yaml:"prior_sd"`
}

// ModelParams are the model hyperparameters.
type ModelParams struct {
	MaxLag        int `yaml:"max_lag"`
	NHiddenUnits  int `yaml:"n_hidden_units,omitempty"`
	NFourierNodes int `yaml:"n_fourier_nodes,omitempty"`
	NSplineKnots  int `yaml:"n_spline_knots,omitempty"`
}

// SamplingParams control the engine's MCMC run.
type SamplingParams struct {
	NChains int `yaml:"n_chains"`
	NAdapt  int `yaml:"n_adapt"`
	NBurnin int `yaml:"n_burnin"`
	NKeep   int `yaml:"n_keep"`
}

// ReportWindow bounds the report date range (YYYY-MM-DD, inclusive).
type ReportWindow struct {
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

// Dataset is one named dataset section of a config file.
type Dataset struct {
	CSVPath             string            `yaml:"csv_path"`
	KPIType             string            `yaml:"kpi_type"`
	Columns             Columns           `yaml:"columns"`
	MediaToChannel      map[string]string `yaml:"media_to_channel"`
	MediaSpendToChannel map[string]string `yaml:"media_spend_to_channel"`
	Features            map[string]Prior  `yaml:"features,omitempty"`
	Model               ModelParams       `yaml:"model"`
	Sampling            SamplingParams    `yaml:"sampling"`
	Report              ReportWindow      `yaml:"report"`
}

// File is a parsed dataset config file: a default dataset key plus named sections.
type File struct {
	DefaultDataset string
	Datasets       map[string]*Dataset
}

// LoadDatasetFile parses a dataset config YAML. The document is a mapping whose
// "default_dataset" key names the fallback section; every other top-level key is
// a dataset section.
func LoadDatasetFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	f := &File{Datasets: make(map[string]*Dataset)}
	for key, node := range raw {
		if key == "default_dataset" {
			if err := node.Decode(&f.DefaultDataset); err != nil {
				return nil, fmt.Errorf("%w: default_dataset: %v", ErrMalformed, err)
			}
			continue
		}
		var ds Dataset
		if err := node.Decode(&ds); err != nil {
			return nil, fmt.Errorf("%w: dataset %q: %v", ErrMalformed, key, err)
		}
		f.Datasets[key] = &ds
	}
	if len(f.Datasets) == 0 {
		return nil, fmt.Errorf("%w: no dataset sections in %s", ErrInvalid, path)
	}
	return f, nil
}

// Resolve returns the named dataset, or the default when name is empty.
// The DATASET_NAME environment variable overrides the configured default.
func (f *File) Resolve(name string) (string, *Dataset, error) {
	if name == "" {
		name = os.Getenv("DATASET_NAME")
	}
	if name == "" {
		name = f.DefaultDataset
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: no dataset name given and no default_dataset set", ErrUnknownDataset)
	}
	ds, ok := f.Datasets[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return name, ds, nil
}

// Validate checks that a dataset section is usable: a column mapping with time
// and KPI roles, at least one media channel, and spend columns aligned with the
// channel maps.
func (ds *Dataset) Validate() error {
	if ds.CSVPath == "" {
		return fmt.Errorf("%w: csv_path is required", ErrInvalid)
	}
	if ds.Columns.Time == "" {
		return fmt.Errorf("%w: columns.time is required", ErrInvalid)
	}
	if ds.Columns.KPI == "" {
		return fmt.Errorf("%w: columns.kpi is required", ErrInvalid)
	}
	if len(ds.Columns.Media) == 0 {
		return fmt.Errorf("%w: at least one media column is required", ErrInvalid)
	}
	if len(ds.Columns.MediaSpend) != len(ds.Columns.Media) {
		return fmt.Errorf("%w: media_spend has %d columns, media has %d",
			ErrInvalid, len(ds.Columns.MediaSpend), len(ds.Columns.Media))
	}
	seen := make(map[string]string, len(ds.Columns.Media))
	for _, col := range ds.Columns.Media {
		channel, ok := ds.MediaToChannel[col]
		if !ok {
			return fmt.Errorf("%w: media column %q missing from media_to_channel", ErrInvalid, col)
		}
		if prev, dup := seen[channel]; dup {
			return fmt.Errorf("%w: media columns %q and %q both map to channel %q",
				ErrInvalid, prev, col, channel)
		}
		seen[channel] = col
	}
	seen = make(map[string]string, len(ds.Columns.MediaSpend))
	for _, col := range ds.Columns.MediaSpend {
		channel, ok := ds.MediaSpendToChannel[col]
		if !ok {
			return fmt.Errorf("%w: spend column %q missing from media_spend_to_channel", ErrInvalid, col)
		}
		if prev, dup := seen[channel]; dup {
			return fmt.Errorf("%w: spend columns %q and %q both map to channel %q",
				ErrInvalid, prev, col, channel)
		}
		seen[channel] = col
	}
	for channel := range ds.Features {
		if !ds.hasChannel(channel) {
			return fmt.Errorf("%w: features references unknown channel %q", ErrInvalid, channel)
		}
	}
	return nil
}

func (ds *Dataset) hasChannel(channel string) bool {
	for _, ch := range ds.MediaToChannel {
		if ch == channel {
			return true
		}
	}
	return false
}

// Channels returns the channel names in media-column order.
func (ds *Dataset) Channels() []string {
	out := make([]string, 0, len(ds.Columns.Media))
	for _, col := range ds.Columns.Media {
		out = append(out, ds.MediaToChannel[col])
	}
	return out
}
