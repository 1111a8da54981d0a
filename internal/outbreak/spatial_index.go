package outbreak

import "math"

// estimatedPointsPerCell sizes the initial grid allocation.
const estimatedPointsPerCell = 4

// spatialIndex provides neighbourhood queries over case points using a
// regular grid. Cell size should approximately match the DBSCAN eps so a
// radius query only needs the 3x3 block of cells around a point.
type spatialIndex struct {
	cellSize float64
	grid     map[int64][]int // cell ID -> point indices
}

func newSpatialIndex(cellSize float64) *spatialIndex {
	return &spatialIndex{
		cellSize: cellSize,
		grid:     make(map[int64][]int),
	}
}

// build populates the index from a set of case points.
func (si *spatialIndex) build(points []CasePoint) {
	si.grid = make(map[int64][]int, len(points)/estimatedPointsPerCell+1)
	for i, p := range points {
		id := cellID(si.cell(p.Northing), si.cell(p.Easting))
		si.grid[id] = append(si.grid[id], i)
	}
}

func (si *spatialIndex) cell(coord float64) int64 {
	return int64(math.Floor(coord / si.cellSize))
}

// cellID maps a signed cell coordinate pair to a unique non-negative key
// using zigzag encoding followed by Szudzik's pairing function.
func cellID(cn, ce int64) int64 {
	var a, b int64
	if cn >= 0 {
		a = 2 * cn
	} else {
		a = -2*cn - 1
	}
	if ce >= 0 {
		b = 2 * ce
	} else {
		b = -2*ce - 1
	}
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// regionQuery returns the indices of all points within eps of points[idx],
// including idx itself. Distances are planar Euclidean; squared distances
// avoid the sqrt.
func (si *spatialIndex) regionQuery(points []CasePoint, idx int, eps float64) []int {
	p := points[idx]
	eps2 := eps * eps
	cn := si.cell(p.Northing)
	ce := si.cell(p.Easting)

	var neighbors []int
	for dn := int64(-1); dn <= 1; dn++ {
		for de := int64(-1); de <= 1; de++ {
			for _, j := range si.grid[cellID(cn+dn, ce+de)] {
				q := points[j]
				ddn := q.Northing - p.Northing
				dde := q.Easting - p.Easting
				if ddn*ddn+dde*dde <= eps2 {
					neighbors = append(neighbors, j)
				}
			}
		}
	}
	return neighbors
}
