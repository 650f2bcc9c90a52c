package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/dataset"
	"github.com/harvestmetrics/mixctl/internal/engine"
	"github.com/harvestmetrics/mixctl/internal/report"
	"github.com/harvestmetrics/mixctl/internal/runner"
	"github.com/harvestmetrics/mixctl/internal/store"
	"github.com/harvestmetrics/mixctl/internal/utils"
)

var (
	runConfigName  string
	runDatasetName string
	runDataPath    string
	runListConfigs bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fit a media mix model and save it with reports",
	Long: `Run the full modeling pipeline: load a dataset configuration, read the
CSV data, fit the model on the inference engine, save the fitted model with its
metadata into a timestamped run directory, and render the HTML reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runListConfigs {
			return listConfigFiles()
		}
		return runPipeline(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigName, "config", "c", "", "dataset config file (default: interactive selection)")
	runCmd.Flags().StringVar(&runDatasetName, "dataset", "", "dataset section within the config (default: the file's default_dataset)")
	runCmd.Flags().StringVar(&runDataPath, "data", "", "CSV data file overriding the config's csv_path")
	runCmd.Flags().BoolVar(&runListConfigs, "list-configs", false, "list available config files and exit")
}

func runPipeline(parent context.Context) error {
	cfgPath, err := resolveConfigPath(runConfigName)
	if err != nil {
		return err
	}
	file, err := cfgpkg.LoadDatasetFile(cfgPath)
	if err != nil {
		return err
	}
	key, ds, err := file.Resolve(runDatasetName)
	if err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("config %s, dataset %q: %w", filepath.Base(cfgPath), key, err)
	}

	dataPath := ds.CSVPath
	if runDataPath != "" {
		dataPath = runDataPath
	}
	dataPath, err = resolveDataPath(dataPath)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Config: %s (dataset %q)\n", cfgPath, key)
	fmt.Printf("✓ Data:   %s\n", dataPath)

	frame, err := dataset.Load(dataPath, dataset.Columns{
		Time:                ds.Columns.Time,
		Geo:                 ds.Columns.Geo,
		KPI:                 ds.Columns.KPI,
		Media:               ds.Columns.Media,
		MediaSpend:          ds.Columns.MediaSpend,
		Controls:            ds.Columns.Controls,
		MediaToChannel:      ds.MediaToChannel,
		MediaSpendToChannel: ds.MediaSpendToChannel,
	})
	if err != nil {
		return err
	}
	snapshot := runner.Snapshot(ds)
	hash := dataset.Fingerprint(frame, snapshot)
	fmt.Printf("✓ Loaded %d rows, %d columns (data hash %s)\n", frame.Rows, len(frame.Columns), hash)

	st := store.New(cfg.OutputsDir)
	run, err := st.CreateRun(time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	eng := newEngineClient()
	res, err := runner.New(eng, log).Fit(ctx, frame, ds, cfg.Seed)
	if err != nil {
		return err
	}
	if err := run.SaveModel(res.Model); err != nil {
		return err
	}
	fmt.Printf("✓ Model saved: %s\n", filepath.Join(run.Dir, store.ModelFileName))

	md := &store.Metadata{
		RunID:       uuid.NewString(),
		DataHash:    hash,
		CreatedAt:   time.Now(),
		DataShape:   []int{frame.Rows, len(frame.Columns)},
		DataColumns: frame.Columns,
		DateRange: store.DateRange{
			Start: frame.StartDate().Format("2006-01-02"),
			End:   frame.EndDate().Format("2006-01-02"),
		},
		ModelConfig: store.ModelConfig{
			KPIType:  ds.KPIType,
			Model:    ds.Model,
			Sampling: ds.Sampling,
		},
		ConfigFile:    filepath.Base(cfgPath),
		DataFile:      filepath.Base(dataPath),
		EngineVersion: res.EngineVersion,
		Diagnostics:   res.Diagnostics,
	}
	if err := run.SaveMetadata(md); err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Printf("⚠ Sampler: %s\n", d)
	}

	// Report failures never lose a saved model: warn and keep the run.
	if err := writeReports(ctx, eng, run, res.Model, ds.Report, md); err != nil {
		log.Warn("report generation failed", zap.String("run", run.Folder), zap.Error(err))
		fmt.Fprintf(os.Stderr, "⚠ Warning: model saved but report generation failed: %v\n", err)
		fmt.Printf("  Re-run later with: mixctl report %s\n", run.Folder)
		return nil
	}
	fmt.Printf("✓ Run complete: %s\n", run.Dir)
	return nil
}

// writeReports asks the engine to summarize the fitted model and writes both
// the technical and the business report into the run directory.
func writeReports(ctx context.Context, eng *engine.Client, run *store.Run, model []byte, win cfgpkg.ReportWindow, md *store.Metadata) error {
	sum, err := eng.Summarize(ctx, engine.SummaryRequest{
		Model:     model,
		StartDate: win.StartDate,
		EndDate:   win.EndDate,
	})
	if err != nil {
		return err
	}
	if err := run.WriteReport(store.TechnicalReportFileName, []byte(sum.ReportHTML)); err != nil {
		return err
	}
	fmt.Printf("✓ Technical report: %s\n", filepath.Join(run.Dir, store.TechnicalReportFileName))

	fig, err := report.Extract(sum)
	if err != nil {
		return err
	}
	html, err := report.RenderBusiness(md, fig, report.BuildInsights(fig))
	if err != nil {
		return err
	}
	if err := run.WriteReport(store.BusinessReportFileName, html); err != nil {
		return err
	}
	q := fig.Quality()
	fmt.Printf("✓ Business report:  %s\n", filepath.Join(run.Dir, store.BusinessReportFileName))
	fmt.Printf("  Fit quality: %s (R² = %.3f)\n", q.Label, fig.RSquared)
	return nil
}

func listConfigFiles() error {
	names, err := utils.ListFilesByExt(cfg.ConfigsDir, ".yaml", ".yml")
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("(no config files in %s)\n", cfg.ConfigsDir)
		return nil
	}
	for _, n := range names {
		fmt.Printf("- %s\n", n)
	}
	return nil
}
