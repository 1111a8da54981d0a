// Package outbreak implements density-based clustering of georeferenced
// infection case records. Clustering operates on planar (northing, easting)
// coordinates; cluster labels are carried back to their source rows by
// explicit row identity, never by slice position.
package outbreak

// NoiseLabel is the sentinel assigned to points that belong to no cluster.
const NoiseLabel = -1

// CaseRecord is one row of the ingested case table.
type CaseRecord struct {
	RowID    int64
	Northing float64
	Easting  float64
	Infected bool
	// Cluster is nil until a label has been assigned. Non-infected rows are
	// never clustered and keep a nil label.
	Cluster *int
}

// CasePoint is an infected case as seen by the clusterer: its planar
// coordinates plus the identity of the row it came from.
type CasePoint struct {
	RowID    int64
	Northing float64
	Easting  float64
}

// InfectedPoints filters records down to the infected subset, preserving
// input order and row identity.
func InfectedPoints(records []CaseRecord) []CasePoint {
	var points []CasePoint
	for _, r := range records {
		if !r.Infected {
			continue
		}
		points = append(points, CasePoint{
			RowID:    r.RowID,
			Northing: r.Northing,
			Easting:  r.Easting,
		})
	}
	return points
}
