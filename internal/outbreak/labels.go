package outbreak

import (
	"errors"
	"fmt"
)

// ErrLabelMismatch reports a clusterer that returned the wrong number of
// labels for its input.
var ErrLabelMismatch = errors.New("label count does not match point count")

// Assignment maps a row ID to the cluster label of the point from that row.
// Carrying the row ID through clustering is what lets labels computed over
// the infected subset be written back to the full table without
// misattaching them to the wrong rows.
type Assignment map[int64]int

// BuildAssignment pairs clustered points with their labels by position.
// Points and labels must come from the same Labels call; a length mismatch
// is an internal error, not recoverable.
func BuildAssignment(points []CasePoint, labels []int) (Assignment, error) {
	if len(points) != len(labels) {
		return nil, fmt.Errorf("%w: %d points, %d labels", ErrLabelMismatch, len(points), len(labels))
	}
	a := make(Assignment, len(points))
	for i, p := range points {
		a[p.RowID] = labels[i]
	}
	return a, nil
}

// ApplyLabels writes cluster labels onto records, joining on row ID.
// Records without an assignment (non-infected rows) keep a nil Cluster.
func ApplyLabels(records []CaseRecord, a Assignment) {
	for i := range records {
		if label, ok := a[records[i].RowID]; ok {
			l := label
			records[i].Cluster = &l
		} else {
			records[i].Cluster = nil
		}
	}
}

// DistinctClusters counts the distinct labels in the sequence. With
// includeNoise false the noise sentinel never counts; with includeNoise true
// the count reproduces a naive unique-count over the raw labels, where noise
// shows up as one extra "cluster" whenever it is present.
func DistinctClusters(labels []int, includeNoise bool) int {
	seen := make(map[int]struct{}, len(labels))
	for _, label := range labels {
		if label == NoiseLabel && !includeNoise {
			continue
		}
		seen[label] = struct{}{}
	}
	return len(seen)
}

// NoiseCount returns the number of noise-labeled points.
func NoiseCount(labels []int) int {
	n := 0
	for _, label := range labels {
		if label == NoiseLabel {
			n++
		}
	}
	return n
}
