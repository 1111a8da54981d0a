package chart

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/epifield-data/outbreak.report/internal/outbreak"
)

// clusterPalette cycles across clusters in the PNG output.
var clusterPalette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

var noiseGrey = color.RGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}

// SavePNG writes a static cluster map of the labeled records to path.
func SavePNG(path string, records []outbreak.CaseRecord) error {
	p := plot.New()
	p.Title.Text = "Infection Clusters"
	p.X.Label.Text = "Easting (m)"
	p.Y.Label.Text = "Northing (m)"

	byCluster := make(map[int]plotter.XYs)
	var noise plotter.XYs
	for _, r := range records {
		if r.Cluster == nil {
			continue
		}
		xy := plotter.XY{X: r.Easting, Y: r.Northing}
		if *r.Cluster == outbreak.NoiseLabel {
			noise = append(noise, xy)
			continue
		}
		byCluster[*r.Cluster] = append(byCluster[*r.Cluster], xy)
	}

	// Stable series order keeps colors consistent between renders.
	ids := make([]int, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for i, id := range ids {
		s, err := plotter.NewScatter(byCluster[id])
		if err != nil {
			return fmt.Errorf("failed to build scatter for cluster %d: %w", id, err)
		}
		s.GlyphStyle.Color = clusterPalette[i%len(clusterPalette)]
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("cluster %d", id), s)
	}

	if len(noise) > 0 {
		s, err := plotter.NewScatter(noise)
		if err != nil {
			return fmt.Errorf("failed to build noise scatter: %w", err)
		}
		s.GlyphStyle.Color = noiseGrey
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add("noise", s)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
