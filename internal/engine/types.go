// Package engine is the client for the external Bayesian MMM engine. All model
// construction, MCMC sampling, and posterior summarization happen on the engine
// side; this package only translates requests and surfaces results.
package engine

// ChannelPrior carries per-channel prior parameters into the model spec.
type ChannelPrior struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// ModelSpec mirrors the engine's model-specification object.
type ModelSpec struct {
	KPIType       string                  `json:"kpi_type"`
	MaxLag        int                     `json:"max_lag"`
	NHiddenUnits  int                     `json:"n_hidden_units,omitempty"`
	NFourierNodes int                     `json:"n_fourier_nodes,omitempty"`
	NSplineKnots  int                     `json:"n_spline_knots,omitempty"`
	Priors        map[string]ChannelPrior `json:"priors,omitempty"`
}

// Sampling controls the engine's posterior sampling run.
type Sampling struct {
	NChains int `json:"n_chains"`
	NAdapt  int `json:"n_adapt"`
	NBurnin int `json:"n_burnin"`
	NKeep   int `json:"n_keep"`
	Seed    int `json:"seed,omitempty"`
}

// FitRequest is the payload for POST /v1/fit. Media and spend series are keyed
// by channel name; times are ISO dates aligned with every series.
type FitRequest struct {
	Times    []string             `json:"times"`
	Geos     []string             `json:"geos,omitempty"`
	KPI      []float64            `json:"kpi"`
	Media    map[string][]float64 `json:"media"`
	Spend    map[string][]float64 `json:"spend"`
	Controls map[string][]float64 `json:"controls,omitempty"`
	Spec     ModelSpec            `json:"spec"`
	Sampling Sampling             `json:"sampling"`
}

// FitResult is the engine's response to a fit call. Model is an opaque
// serialized posterior blob; Diagnostics are the sampler's own warnings
// (divergences, R-hat) passed through verbatim.
type FitResult struct {
	Model         []byte   `json:"model"`
	Diagnostics   []string `json:"diagnostics,omitempty"`
	EngineVersion string   `json:"engine_version,omitempty"`
}

// SummaryRequest is the payload for POST /v1/summary.
type SummaryRequest struct {
	Model     []byte `json:"model"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// ChannelSummary is one channel's posterior summary figures.
type ChannelSummary struct {
	Channel      string  `json:"channel"`
	ROI          float64 `json:"roi"`
	Contribution float64 `json:"contribution"`
	Spend        float64 `json:"spend"`
}

// Summary is the engine's posterior summarization output: the technical report
// HTML plus the structured figures the business report is built from.
type Summary struct {
	RSquared             float64          `json:"r_squared"`
	Channels             []ChannelSummary `json:"channels"`
	BaselineContribution float64          `json:"baseline_contribution"`
	ReportHTML           string           `json:"report_html"`
	EngineVersion        string           `json:"engine_version,omitempty"`
}

// HealthInfo reports engine liveness.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
