package outbreak

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ClusterSummary describes one detected cluster.
type ClusterSummary struct {
	ID               int     `json:"id"`
	Size             int     `json:"size"`
	CentroidNorthing float64 `json:"centroid_northing"`
	CentroidEasting  float64 `json:"centroid_easting"`
	MinNorthing      float64 `json:"min_northing"`
	MaxNorthing      float64 `json:"max_northing"`
	MinEasting       float64 `json:"min_easting"`
	MaxEasting       float64 `json:"max_easting"`
	// RadiusP95 is the 95th-percentile distance of member points from the
	// centroid, a spread measure robust to single outlying cases.
	RadiusP95 float64 `json:"radius_p95"`
}

// Summarize computes one summary per cluster from points and their labels.
// Noise points are skipped. The result is sorted by centroid northing then
// easting so repeated runs over the same data produce identical output even
// when the algorithm discovers clusters in a different order.
func Summarize(points []CasePoint, labels []int) []ClusterSummary {
	if len(points) != len(labels) {
		return nil
	}

	members := make(map[int][]CasePoint)
	for i, label := range labels {
		if label == NoiseLabel || label == 0 {
			continue
		}
		members[label] = append(members[label], points[i])
	}

	summaries := make([]ClusterSummary, 0, len(members))
	for id, pts := range members {
		summaries = append(summaries, summarizeCluster(id, pts))
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CentroidNorthing != summaries[j].CentroidNorthing {
			return summaries[i].CentroidNorthing < summaries[j].CentroidNorthing
		}
		return summaries[i].CentroidEasting < summaries[j].CentroidEasting
	})

	return summaries
}

func summarizeCluster(id int, pts []CasePoint) ClusterSummary {
	northings := make([]float64, len(pts))
	eastings := make([]float64, len(pts))
	for i, p := range pts {
		northings[i] = p.Northing
		eastings[i] = p.Easting
	}

	cn := stat.Mean(northings, nil)
	ce := stat.Mean(eastings, nil)

	s := ClusterSummary{
		ID:               id,
		Size:             len(pts),
		CentroidNorthing: cn,
		CentroidEasting:  ce,
		MinNorthing:      northings[0],
		MaxNorthing:      northings[0],
		MinEasting:       eastings[0],
		MaxEasting:       eastings[0],
	}

	radii := make([]float64, len(pts))
	for i, p := range pts {
		if p.Northing < s.MinNorthing {
			s.MinNorthing = p.Northing
		}
		if p.Northing > s.MaxNorthing {
			s.MaxNorthing = p.Northing
		}
		if p.Easting < s.MinEasting {
			s.MinEasting = p.Easting
		}
		if p.Easting > s.MaxEasting {
			s.MaxEasting = p.Easting
		}
		radii[i] = math.Hypot(p.Northing-cn, p.Easting-ce)
	}

	sort.Float64s(radii)
	s.RadiusP95 = stat.Quantile(0.95, stat.Empirical, radii, nil)

	return s
}
