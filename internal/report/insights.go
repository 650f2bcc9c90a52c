package report

import "fmt"

// Insight is one actionable recommendation derived from the figures.
type Insight struct {
	Kind        string // success | info | warning | danger
	Title       string
	Description string
	Action      string
}

// BuildInsights derives marketing recommendations from the extracted figures.
// Pure and deterministic: the same figures always produce the same insights.
func BuildInsights(fig *Figures) []Insight {
	var out []Insight
	out = append(out, fitInsights(fig)...)
	out = append(out, channelInsights(fig)...)
	out = append(out, portfolioInsight(fig)...)
	return out
}

func fitInsights(fig *Figures) []Insight {
	r2 := fig.RSquared
	switch {
	case r2 >= 0.75:
		return nil
	case r2 >= 0.5:
		gap := int((0.75 - r2) * 100)
		return []Insight{{
			Kind:  "warning",
			Title: "Model needs improvement for better accuracy",
			Description: fmt.Sprintf(
				"With an R² of %.3f, the model explains a significant portion of the variation but can be improved by approximately %d points.", r2, gap),
			Action: "Enrich your data (external variables, seasonality, events) to improve model accuracy.",
		}}
	default:
		gap := int((0.5 - r2) * 100)
		return []Insight{{
			Kind:  "danger",
			Title: "Model requires revision",
			Description: fmt.Sprintf(
				"With an R² of %.3f, the model explains less than half of the variation. It requires approximately %d points of improvement to be reliable.", r2, gap),
			Action: "Review model variables and collect more data to improve prediction quality.",
		}}
	}
}

func channelInsights(fig *Figures) []Insight {
	if len(fig.Channels) == 0 {
		return nil
	}
	// Channels arrive sorted by ROI descending.
	best := fig.Channels[0]
	worst := fig.Channels[len(fig.Channels)-1]
	var out []Insight

	switch {
	case best.ROI > 1.5:
		pct := clamp(int((best.ROI-1.0)*20), 10, 30)
		out = append(out, Insight{
			Kind:  "success",
			Title: fmt.Sprintf("%s: high-performing channel to prioritize", best.Channel),
			Description: fmt.Sprintf(
				"With a ROI of %.2f, every dollar invested in %s generates $%.2f in return. This is your most profitable channel.", best.ROI, best.Channel, best.ROI),
			Action: fmt.Sprintf("Gradually increase the budget allocated to %s by %d%% to maximize return on investment.", best.Channel, pct),
		})
	case best.ROI > 1.0:
		pct := clamp(int((best.ROI-1.0)*30), 5, 15)
		out = append(out, Insight{
			Kind:  "info",
			Title: fmt.Sprintf("%s: profitable channel", best.Channel),
			Description: fmt.Sprintf(
				"With a ROI of %.2f, %s generates a positive return on investment.", best.ROI, best.Channel),
			Action: fmt.Sprintf("Maintain or slightly increase the %s budget by %d%% while testing new creative approaches.", best.Channel, pct),
		})
	default:
		out = append(out, Insight{
			Kind:  "warning",
			Title: "All channels underperforming",
			Description: fmt.Sprintf(
				"Even the best channel (%s) has a ROI of %.2f, below 1.0.", best.Channel, best.ROI),
			Action: "Review your creative strategies, targets, and messaging. Test new approaches before increasing budgets.",
		})
	}

	if len(fig.Channels) > 1 && best.ROI > 0 {
		ratio := worst.ROI / best.ROI
		gap := best.ROI - worst.ROI
		if ratio < 0.7 {
			reduction := clamp(int((1-ratio)*50), 15, 40)
			realloc := clamp(int(gap*25), 20, 35)
			out = append(out, Insight{
				Kind:  "warning",
				Title: fmt.Sprintf("%s: channel to optimize", worst.Channel),
				Description: fmt.Sprintf(
					"With a ROI of %.2f, %s is %.2f points below %s (ROI: %.2f), %d%% less performant.",
					worst.ROI, worst.Channel, gap, best.Channel, best.ROI, int((1-ratio)*100)),
				Action: fmt.Sprintf(
					"Analyze %s performance: targeted audiences, creatives, placements. Reduce budget by %d%% and reallocate %d%% to %s.",
					worst.Channel, reduction, realloc, best.Channel),
			})
		}
	}

	if len(fig.Channels) >= 3 {
		spread := best.ROI - worst.ROI
		if spread > 0.3 && best.ROI > 0 {
			rangePct := int((spread / best.ROI) * 100)
			realloc := clamp(rangePct/3, 10, 30)
			out = append(out, Insight{
				Kind:  "info",
				Title: "Channel diversification",
				Description: fmt.Sprintf(
					"Your channels show varied ROI (from %.2f to %.2f), with a gap of %.2f points (%d%% variation), indicating optimization opportunities.",
					worst.ROI, best.ROI, spread, rangePct),
				Action: fmt.Sprintf(
					"Reallocate %d%% of budget from underperforming channels to the most profitable ones, while maintaining minimal presence to test new opportunities.", realloc),
			})
		}
	}
	return out
}

func portfolioInsight(fig *Figures) []Insight {
	if len(fig.Channels) == 0 {
		return nil
	}
	var sum float64
	profitable := 0
	for _, ch := range fig.Channels {
		sum += ch.ROI
		if ch.ROI > 1.0 {
			profitable++
		}
	}
	avg := sum / float64(len(fig.Channels))
	rate := profitable * 100 / len(fig.Channels)

	switch {
	case avg > 1.2:
		return []Insight{{
			Kind:  "success",
			Title: "Positive overall performance",
			Description: fmt.Sprintf(
				"Your media mix generates on average $%.2f in return for every dollar invested. %d%% of your channels (%d/%d) are profitable.",
				avg, rate, profitable, len(fig.Channels)),
			Action: "Maintain this performance by continuing to optimize budgets toward the most performing channels and regularly testing new approaches.",
		}}
	case avg > 1.0:
		return []Insight{{
			Kind:  "info",
			Title: "Moderate overall performance",
			Description: fmt.Sprintf(
				"Your media mix generates on average $%.2f in return for every dollar invested. %d%% of your channels (%d/%d) are profitable.",
				avg, rate, profitable, len(fig.Channels)),
			Action: fmt.Sprintf("Optimize your budgets by reallocating to the most performing channels to improve the overall average to $%.2f.", avg*1.1),
		}}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
