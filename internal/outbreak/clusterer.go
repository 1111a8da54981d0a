package outbreak

// Clusterer is the interface for case-point clustering algorithms.
type Clusterer interface {
	// Labels returns one cluster label per input point, in input order.
	Labels(points []CasePoint) []int

	GetParams() Params
	SetParams(params Params)
}

// DBSCANClusterer implements Clusterer using the DBSCAN algorithm, which
// suits irregularly shaped infection clusters with noise from isolated cases.
type DBSCANClusterer struct {
	params Params
}

// NewDBSCANClusterer creates a DBSCAN clusterer with the given parameters.
func NewDBSCANClusterer(eps float64, minPts int) *DBSCANClusterer {
	return &DBSCANClusterer{params: Params{Eps: eps, MinPts: minPts}}
}

// NewDefaultDBSCANClusterer creates a DBSCAN clusterer with default parameters.
func NewDefaultDBSCANClusterer() *DBSCANClusterer {
	p := DefaultParams()
	return NewDBSCANClusterer(p.Eps, p.MinPts)
}

// Labels runs DBSCAN over the points.
func (c *DBSCANClusterer) Labels(points []CasePoint) []int {
	return DBSCAN(points, c.params)
}

// Cluster labels the points and returns per-cluster summaries, sorted by
// centroid for deterministic output.
func (c *DBSCANClusterer) Cluster(points []CasePoint) []ClusterSummary {
	return Summarize(points, c.Labels(points))
}

// GetParams returns the current clustering parameters.
func (c *DBSCANClusterer) GetParams() Params {
	return c.params
}

// SetParams updates the clustering parameters.
func (c *DBSCANClusterer) SetParams(params Params) {
	c.params = params
}

// Verify at compile time that *DBSCANClusterer implements Clusterer.
var _ Clusterer = (*DBSCANClusterer)(nil)
