// Package dataset loads the tabular marketing data and reshapes it per the
// configured column mapping into the form the modeling engine expects.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for data loading failures. Callers match with errors.Is.
var (
	ErrMissingColumn = errors.New("missing column")
	ErrBadTime       = errors.New("unparsable time value")
	ErrBadValue      = errors.New("unparsable numeric value")
	ErrEmpty         = errors.New("no data rows")
)

// Frame is the loaded dataset in model-ready shape. Read-only after Load.
type Frame struct {
	Source  string
	Columns []string // raw header, original order
	Rows    int

	Times []time.Time
	Geos  []string // empty when no geo column is mapped
	KPI   []float64

	// Keyed by channel name (after media_to_channel translation), series per row.
	Media map[string][]float64
	Spend map[string][]float64
	// Keyed by raw control column name.
	Controls map[string][]float64

	Channels []string // channel names in media-column order
}

// Load reads the CSV at path and reshapes it per the role mapping. Column
// renames happen here: media and spend series come out keyed by channel name.
func Load(path string, cols Columns) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = sniffDelimiter(path)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	need := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q not in %s", ErrMissingColumn, name, filepath.Base(path))
		}
		return i, nil
	}

	timeIdx, err := need(cols.Time)
	if err != nil {
		return nil, err
	}
	kpiIdx, err := need(cols.KPI)
	if err != nil {
		return nil, err
	}
	geoIdx := -1
	if cols.Geo != "" {
		if geoIdx, err = need(cols.Geo); err != nil {
			return nil, err
		}
	}
	mediaIdx := make([]int, len(cols.Media))
	for i, name := range cols.Media {
		if mediaIdx[i], err = need(name); err != nil {
			return nil, err
		}
	}
	spendIdx := make([]int, len(cols.MediaSpend))
	for i, name := range cols.MediaSpend {
		if spendIdx[i], err = need(name); err != nil {
			return nil, err
		}
	}
	controlIdx := make([]int, len(cols.Controls))
	for i, name := range cols.Controls {
		if controlIdx[i], err = need(name); err != nil {
			return nil, err
		}
	}

	channels := make([]string, len(cols.Media))
	for i, col := range cols.Media {
		channels[i] = cols.MediaToChannel[col]
	}

	fr := &Frame{
		Source:   path,
		Columns:  append([]string(nil), header...),
		Media:    make(map[string][]float64, len(channels)),
		Spend:    make(map[string][]float64, len(channels)),
		Controls: make(map[string][]float64, len(cols.Controls)),
		Channels: channels,
	}

	row := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		row++
		if len(rec) < len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", row, len(rec), len(header))
		}

		ts, ok := parseTimeMaybe(strings.TrimSpace(rec[timeIdx]))
		if !ok {
			return nil, fmt.Errorf("%w: row %d column %q: %q", ErrBadTime, row, cols.Time, rec[timeIdx])
		}
		fr.Times = append(fr.Times, ts)
		if geoIdx >= 0 {
			fr.Geos = append(fr.Geos, strings.TrimSpace(rec[geoIdx]))
		}

		v, err := parseCell(rec[kpiIdx], row, cols.KPI)
		if err != nil {
			return nil, err
		}
		fr.KPI = append(fr.KPI, v)

		for i, ci := range mediaIdx {
			v, err := parseCell(rec[ci], row, cols.Media[i])
			if err != nil {
				return nil, err
			}
			ch := channels[i]
			fr.Media[ch] = append(fr.Media[ch], v)
		}
		for i, ci := range spendIdx {
			v, err := parseCell(rec[ci], row, cols.MediaSpend[i])
			if err != nil {
				return nil, err
			}
			ch := cols.MediaSpendToChannel[cols.MediaSpend[i]]
			fr.Spend[ch] = append(fr.Spend[ch], v)
		}
		for i, ci := range controlIdx {
			v, err := parseCell(rec[ci], row, cols.Controls[i])
			if err != nil {
				return nil, err
			}
			name := cols.Controls[i]
			fr.Controls[name] = append(fr.Controls[name], v)
		}
	}
	fr.Rows = len(fr.Times)
	if fr.Rows == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return fr, nil
}

// Columns is the role mapping the loader needs. It mirrors the dataset config
// columns section plus the media/spend channel rename maps.
type Columns struct {
	Time       string
	Geo        string
	KPI        string
	Media      []string
	MediaSpend []string
	Controls   []string

	MediaToChannel      map[string]string
	MediaSpendToChannel map[string]string
}

// StartDate returns the earliest time value in the frame.
func (f *Frame) StartDate() time.Time {
	min := f.Times[0]
	for _, t := range f.Times[1:] {
		if t.Before(min) {
			min = t
		}
	}
	return min
}

// EndDate returns the latest time value in the frame.
func (f *Frame) EndDate() time.Time {
	max := f.Times[0]
	for _, t := range f.Times[1:] {
		if t.After(max) {
			max = t
		}
	}
	return max
}

func parseCell(s string, row int, col string) (float64, error) {
	v, ok := parseNumeric(s)
	if !ok {
		return 0, fmt.Errorf("%w: row %d column %q: %q", ErrBadValue, row, col, s)
	}
	return v, nil
}

// sniffDelimiter picks the field separator from the extension or, for .csv
// files, from whichever of tab, semicolon, or comma dominates the header line.
// Semicolon CSVs pair with the comma-decimal locales parseNumeric handles.
func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	f, err := os.Open(path)
	if err != nil {
		return ','
	}
	defer f.Close()
	header, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && header == "" {
		return ','
	}
	best := ','
	bestCount := strings.Count(header, ",")
	for _, cand := range []rune{'\t', ';'} {
		if n := strings.Count(header, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, " ", " ")
	// Auto-detect decimal separator; strip the other as thousands grouping.
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && (dpos < 0 || cpos > dpos) {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
