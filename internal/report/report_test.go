package report_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/harvestmetrics/mixctl/internal/engine"
	"github.com/harvestmetrics/mixctl/internal/report"
	"github.com/harvestmetrics/mixctl/internal/store"
)

func sampleSummary() *engine.Summary {
	return &engine.Summary{
		RSquared: 0.81,
		Channels: []engine.ChannelSummary{
			{Channel: "Search", ROI: 1.12, Contribution: 0.18, Spend: 52000},
			{Channel: "Facebook", ROI: 1.74, Contribution: 0.22, Spend: 48000},
			{Channel: "TikTok", ROI: 0.62, Contribution: 0.05, Spend: 21000},
		},
		BaselineContribution: 0.55,
	}
}

func TestExtract_Deterministic(t *testing.T) {
	a, err := report.Extract(sampleSummary())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	b, err := report.Extract(sampleSummary())
	if err != nil {
		t.Fatalf("extract again: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("extraction not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestExtract_SortsByROIDescending(t *testing.T) {
	fig, err := report.Extract(sampleSummary())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if fig.RSquared != 0.81 {
		t.Fatalf("r-squared: got %v", fig.RSquared)
	}
	want := []string{"Facebook", "Search", "TikTok"}
	for i, w := range want {
		if fig.Channels[i].Channel != w {
			t.Fatalf("order: got %+v", fig.Channels)
		}
	}
	if fig.Baseline != 0.55 {
		t.Fatalf("baseline: got %v", fig.Baseline)
	}
}

func TestExtract_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*engine.Summary)
	}{
		{"nan r-squared", func(s *engine.Summary) { s.RSquared = math.NaN() }},
		{"r-squared above one", func(s *engine.Summary) { s.RSquared = 1.2 }},
		{"no channels", func(s *engine.Summary) { s.Channels = nil }},
		{"unnamed channel", func(s *engine.Summary) { s.Channels[0].Channel = "" }},
		{"nan roi", func(s *engine.Summary) { s.Channels[1].ROI = math.NaN() }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := sampleSummary()
			tc.mutate(s)
			if _, err := report.Extract(s); !errors.Is(err, report.ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestQuality_Tiers(t *testing.T) {
	tests := []struct {
		r2   float64
		tier string
	}{
		{0.9, "excellent"},
		{0.75, "excellent"},
		{0.6, "good"},
		{0.5, "good"},
		{0.3, "improve"},
	}
	for _, tc := range tests {
		fig := &report.Figures{RSquared: tc.r2}
		if got := fig.Quality(); got.Tier != tc.tier {
			t.Fatalf("r2=%v: got tier %q, want %q", tc.r2, got.Tier, tc.tier)
		}
	}
}

func TestBuildInsights_HighPerformerAndLaggard(t *testing.T) {
	fig, err := report.Extract(sampleSummary())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	insights := report.BuildInsights(fig)
	if len(insights) == 0 {
		t.Fatal("expected insights")
	}
	var kinds []string
	var titles []string
	for _, in := range insights {
		kinds = append(kinds, in.Kind)
		titles = append(titles, in.Title)
	}
	joined := strings.Join(titles, " | ")
	if !strings.Contains(joined, "Facebook: high-performing channel") {
		t.Fatalf("missing best-channel insight: %s", joined)
	}
	if !strings.Contains(joined, "TikTok: channel to optimize") {
		t.Fatalf("missing worst-channel insight: %s", joined)
	}
	if !strings.Contains(joined, "Channel diversification") {
		t.Fatalf("missing diversification insight: %s", joined)
	}
	// R² at 0.81 is excellent, so no fit warning is expected.
	for i, k := range kinds {
		if k == "danger" {
			t.Fatalf("unexpected danger insight: %s", titles[i])
		}
	}
}

func TestBuildInsights_LowFitAndUnderperformers(t *testing.T) {
	fig := &report.Figures{
		RSquared: 0.4,
		Channels: []report.ChannelFigure{
			{Channel: "TV", ROI: 0.8},
			{Channel: "Radio", ROI: 0.7},
		},
	}
	insights := report.BuildInsights(fig)
	var sawDanger, sawUnderperforming bool
	for _, in := range insights {
		if in.Kind == "danger" {
			sawDanger = true
		}
		if strings.Contains(in.Title, "underperforming") {
			sawUnderperforming = true
		}
	}
	if !sawDanger {
		t.Fatalf("expected danger insight for low R²: %+v", insights)
	}
	if !sawUnderperforming {
		t.Fatalf("expected underperforming-channels insight: %+v", insights)
	}
}

func TestBuildInsights_Deterministic(t *testing.T) {
	fig, err := report.Extract(sampleSummary())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	a := report.BuildInsights(fig)
	b := report.BuildInsights(fig)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("insights not deterministic")
	}
}

func TestRenderBusiness(t *testing.T) {
	fig, err := report.Extract(sampleSummary())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	md := &store.Metadata{
		FolderName:  "2024-06-01_10-30-00",
		CreatedAt:   time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		DataShape:   []int{104, 7},
		DateRange:   store.DateRange{Start: "2023-01-02", End: "2024-12-30"},
		Diagnostics: []string{"R-hat above 1.1 for 3 parameters"},
	}
	html, err := report.RenderBusiness(md, fig, report.BuildInsights(fig))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(html)
	for _, want := range []string{
		"MMM Report - 2024-06-01_10-30-00",
		"0.810",
		"Facebook",
		"$1.74",
		"Baseline",
		"R-hat above 1.1 for 3 parameters",
		"104 rows × 7 columns",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered report missing %q", want)
		}
	}

	again, err := report.RenderBusiness(md, fig, report.BuildInsights(fig))
	if err != nil {
		t.Fatalf("render again: %v", err)
	}
	if out != string(again) {
		t.Fatal("report rendering not deterministic")
	}
}
