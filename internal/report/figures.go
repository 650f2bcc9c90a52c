// Package report turns a fitted model's posterior summary into the two HTML
// reports: the engine's technical report written verbatim, and a business
// report rendered from extracted figures.
package report

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/harvestmetrics/mixctl/internal/engine"
)

// Sentinel errors for report generation failures.
var (
	ErrModelUnreadable = errors.New("model unreadable")
	ErrMissingField    = errors.New("summary field missing")
)

// ChannelFigure is one channel's extracted business figures.
type ChannelFigure struct {
	Channel      string
	ROI          float64
	Contribution float64
	Spend        float64
}

// Figures are the business-report inputs extracted from the engine summary.
// Channels are sorted by ROI descending.
type Figures struct {
	RSquared float64
	Channels []ChannelFigure
	Baseline float64
}

// Extract pulls R², per-channel ROI, and contribution out of the engine's
// summary. Extraction is deterministic: the same summary always yields the
// same figures.
func Extract(sum *engine.Summary) (*Figures, error) {
	if sum == nil {
		return nil, fmt.Errorf("%w: no summary", ErrMissingField)
	}
	if math.IsNaN(sum.RSquared) || sum.RSquared < 0 || sum.RSquared > 1 {
		return nil, fmt.Errorf("%w: r_squared out of range (%v)", ErrMissingField, sum.RSquared)
	}
	if len(sum.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channel summaries", ErrMissingField)
	}
	fig := &Figures{
		RSquared: sum.RSquared,
		Baseline: sum.BaselineContribution,
	}
	for _, ch := range sum.Channels {
		if ch.Channel == "" {
			return nil, fmt.Errorf("%w: unnamed channel entry", ErrMissingField)
		}
		if math.IsNaN(ch.ROI) || math.IsInf(ch.ROI, 0) {
			return nil, fmt.Errorf("%w: channel %q has no usable ROI", ErrMissingField, ch.Channel)
		}
		fig.Channels = append(fig.Channels, ChannelFigure{
			Channel:      ch.Channel,
			ROI:          ch.ROI,
			Contribution: ch.Contribution,
			Spend:        ch.Spend,
		})
	}
	sort.SliceStable(fig.Channels, func(i, j int) bool {
		return fig.Channels[i].ROI > fig.Channels[j].ROI
	})
	return fig, nil
}

// FitQuality tiers R² the way the analysts read it.
type FitQuality struct {
	Tier           string // excellent | good | improve
	Label          string
	Interpretation string
}

// Quality classifies the model fit. Thresholds: 0.75 and 0.5.
func (f *Figures) Quality() FitQuality {
	r2 := f.RSquared
	switch {
	case r2 >= 0.75:
		return FitQuality{
			Tier:  "excellent",
			Label: "Excellent",
			Interpretation: fmt.Sprintf(
				"R² = %.3f (≥ 0.75): the model explains at least 75%% of the variation in your data and captures the marketing relationships very well.", r2),
		}
	case r2 >= 0.5:
		return FitQuality{
			Tier:  "good",
			Label: "Good",
			Interpretation: fmt.Sprintf(
				"R² = %.3f (0.5 – 0.75): the model explains between 50%% and 75%% of the variation. A good fit with room for improvement.", r2),
		}
	default:
		return FitQuality{
			Tier:  "improve",
			Label: "Needs Improvement",
			Interpretation: fmt.Sprintf(
				"R² = %.3f (< 0.5): the model explains less than half of the variation. Review model variables or enrich the data.", r2),
		}
	}
}
