package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/harvestmetrics/mixctl/internal/store"
)

//go:embed templates/business.html.tmpl
var templateFS embed.FS

var businessTmpl = template.Must(
	template.New("business.html.tmpl").
		Funcs(template.FuncMap{
			"mulPct": func(v float64) float64 { return v * 100 },
		}).
		ParseFS(templateFS, "templates/business.html.tmpl"))

type pageData struct {
	Folder        string
	CreatedAt     string
	Period        string
	Shape         string
	Quality       FitQuality
	Figures       *Figures
	Insights      []Insight
	Diagnostics   []string
	EngineVersion string
}

// RenderBusiness renders the business HTML report for a saved run.
func RenderBusiness(md *store.Metadata, fig *Figures, insights []Insight) ([]byte, error) {
	data := pageData{
		Folder:        md.FolderName,
		Quality:       fig.Quality(),
		Figures:       fig,
		Insights:      insights,
		Diagnostics:   md.Diagnostics,
		EngineVersion: md.EngineVersion,
	}
	if !md.CreatedAt.IsZero() {
		data.CreatedAt = md.CreatedAt.Format("02/01/2006 at 15:04")
	}
	if md.DateRange.Start != "" {
		data.Period = fmt.Sprintf("%s → %s", md.DateRange.Start, md.DateRange.End)
	}
	if len(md.DataShape) == 2 {
		data.Shape = fmt.Sprintf("%d rows × %d columns", md.DataShape[0], md.DataShape[1])
	}

	var buf bytes.Buffer
	if err := businessTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render business report: %w", err)
	}
	return buf.Bytes(), nil
}
