// Package chart renders cluster maps: an interactive HTML scatter via
// go-echarts for the API, and a static PNG via gonum/plot for the CLI.
package chart

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/epifield-data/outbreak.report/internal/outbreak"
)

// RenderScatterHTML writes an HTML scatter chart of labeled case records.
// Each cluster becomes its own series; noise and unlabeled rows get a grey
// series of their own. Records beyond maxPoints are dropped by stride so
// large tables stay renderable in a browser.
func RenderScatterHTML(w io.Writer, records []outbreak.CaseRecord, maxPoints int) error {
	stride := 1
	if maxPoints > 0 && len(records) > maxPoints {
		stride = int(math.Ceil(float64(len(records)) / float64(maxPoints)))
	}

	series := make(map[string][]opts.ScatterData)
	minC, maxC := math.Inf(1), math.Inf(-1)
	plotted := 0
	for i := 0; i < len(records); i += stride {
		r := records[i]
		name := seriesName(r)
		series[name] = append(series[name], opts.ScatterData{
			Value: []interface{}{r.Easting, r.Northing},
		})
		plotted++
		for _, v := range []float64{r.Easting, r.Northing} {
			if v < minC {
				minC = v
			}
			if v > maxC {
				maxC = v
			}
		}
	}

	// Pad the axes so edge points stay visible; equal ranges keep the
	// aspect ratio square.
	pad := (maxC - minC) * 0.05
	if pad == 0 || math.IsInf(pad, 0) {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Infection Clusters", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Infection Clusters",
			Subtitle: fmt.Sprintf("records=%d plotted=%d stride=%d", len(records), plotted, stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minC - pad, Max: maxC + pad, Name: "Easting (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minC - pad, Max: maxC + pad, Name: "Northing (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		scatter.AddSeries(name, series[name], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}

	return scatter.Render(w)
}

func seriesName(r outbreak.CaseRecord) string {
	switch {
	case r.Cluster == nil:
		return "uninfected"
	case *r.Cluster == outbreak.NoiseLabel:
		return "noise"
	default:
		return fmt.Sprintf("cluster %d", *r.Cluster)
	}
}
