// Package runner translates a dataset and its configuration into the engine's
// model specification and drives the fit call. No statistics happen here.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/dataset"
	"github.com/harvestmetrics/mixctl/internal/engine"
)

type Fitter interface {
	Fit(ctx context.Context, req engine.FitRequest) (*engine.FitResult, error)
}

type Runner struct {
	engine Fitter
	log    *zap.Logger
}

func New(e Fitter, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{engine: e, log: log}
}

// BuildRequest maps the loaded frame and dataset config onto the engine's
// fit request. Structural translation only; values pass through unchanged.
func BuildRequest(f *dataset.Frame, ds *config.Dataset, seed int) engine.FitRequest {
	times := make([]string, f.Rows)
	for i, t := range f.Times {
		times[i] = t.Format("2006-01-02")
	}

	spec := engine.ModelSpec{
		KPIType:       ds.KPIType,
		MaxLag:        ds.Model.MaxLag,
		NHiddenUnits:  ds.Model.NHiddenUnits,
		NFourierNodes: ds.Model.NFourierNodes,
		NSplineKnots:  ds.Model.NSplineKnots,
	}
	if len(ds.Features) > 0 {
		spec.Priors = make(map[string]engine.ChannelPrior, len(ds.Features))
		for channel, prior := range ds.Features {
			spec.Priors[channel] = engine.ChannelPrior{Mean: prior.Mean, SD: prior.SD}
		}
	}

	return engine.FitRequest{
		Times:    times,
		Geos:     f.Geos,
		KPI:      f.KPI,
		Media:    f.Media,
		Spend:    f.Spend,
		Controls: f.Controls,
		Spec:     spec,
		Sampling: engine.Sampling{
			NChains: ds.Sampling.NChains,
			NAdapt:  ds.Sampling.NAdapt,
			NBurnin: ds.Sampling.NBurnin,
			NKeep:   ds.Sampling.NKeep,
			Seed:    seed,
		},
	}
}

// Snapshot renders the model configuration into a canonical string used in the
// dataset fingerprint and the run metadata.
func Snapshot(ds *config.Dataset) string {
	return fmt.Sprintf(
		"kpi_type=%s;max_lag=%d;n_hidden_units=%d;n_fourier_nodes=%d;n_spline_knots=%d;n_chains=%d;n_adapt=%d;n_burnin=%d;n_keep=%d",
		ds.KPIType,
		ds.Model.MaxLag, ds.Model.NHiddenUnits, ds.Model.NFourierNodes, ds.Model.NSplineKnots,
		ds.Sampling.NChains, ds.Sampling.NAdapt, ds.Sampling.NBurnin, ds.Sampling.NKeep,
	)
}

// Fit builds the request and runs the engine's blocking training call.
// Engine failure signals, including convergence diagnostics, come back to the
// caller unchanged.
func (r *Runner) Fit(ctx context.Context, f *dataset.Frame, ds *config.Dataset, seed int) (*engine.FitResult, error) {
	req := BuildRequest(f, ds, seed)
	r.log.Info("starting posterior sampling",
		zap.Int("rows", f.Rows),
		zap.Int("channels", len(f.Channels)),
		zap.Int("n_chains", req.Sampling.NChains),
		zap.Int("n_keep", req.Sampling.NKeep))
	start := time.Now()
	res, err := r.engine.Fit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	r.log.Info("posterior sampling finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.String("engine_version", res.EngineVersion))
	return res, nil
}
