package outbreak

// Default clustering parameters. Coordinates are planar metres, so the
// defaults describe a 50 m neighbourhood with at least 5 cases.
const (
	DefaultEps    = 50.0
	DefaultMinPts = 5
)

// Params are the DBSCAN tuning parameters.
type Params struct {
	Eps    float64 // neighbourhood radius, same units as the coordinates
	MinPts int     // minimum neighbours (self included) for a core point
}

// DefaultParams returns parameters suitable for case data in metres.
func DefaultParams() Params {
	return Params{Eps: DefaultEps, MinPts: DefaultMinPts}
}

// DBSCAN clusters case points by density and returns one label per input
// point, in input order. Cluster labels are positive integers assigned in
// discovery order; points reachable from no core point get NoiseLabel.
//
// If fewer than MinPts points are supplied no point can be a core point and
// every label is NoiseLabel. An empty input yields an empty label slice.
func DBSCAN(points []CasePoint, params Params) []int {
	if len(points) == 0 {
		return nil
	}

	n := len(points)
	labels := make([]int, n) // 0=unvisited, NoiseLabel=noise, >0=cluster ID
	clusterID := 0

	si := newSpatialIndex(params.Eps)
	si.build(points)

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue
		}

		neighbors := si.regionQuery(points, i, params.Eps)
		if len(neighbors) < params.MinPts {
			labels[i] = NoiseLabel
			continue
		}

		clusterID++
		expandCluster(points, si, labels, i, neighbors, clusterID, params)
	}

	return labels
}

// expandCluster grows cluster clusterID outward from a core point, visiting
// the neighbour queue and pulling in the neighbourhoods of any further core
// points it finds. Noise points inside a core neighbourhood become border
// points of the cluster.
func expandCluster(points []CasePoint, si *spatialIndex, labels []int,
	seedIdx int, neighbors []int, clusterID int, params Params) {

	labels[seedIdx] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == NoiseLabel {
			labels[idx] = clusterID // noise becomes a border point
		}
		if labels[idx] != 0 {
			continue
		}

		labels[idx] = clusterID
		next := si.regionQuery(points, idx, params.Eps)
		if len(next) >= params.MinPts {
			neighbors = append(neighbors, next...)
		}
	}
}
