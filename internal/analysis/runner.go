// Package analysis orchestrates one clustering run: filter infected points,
// cluster them, join labels back to their rows, persist, and report.
package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/epifield-data/outbreak.report/internal/db"
	"github.com/epifield-data/outbreak.report/internal/monitoring"
	"github.com/epifield-data/outbreak.report/internal/outbreak"
	"github.com/epifield-data/outbreak.report/internal/timeutil"
)

// Runner executes clustering runs over case records.
type Runner struct {
	// DB is optional; when nil the run is not persisted.
	DB        *db.DB
	Clusterer outbreak.Clusterer
	Clock     timeutil.Clock
	// IncludeNoise selects the legacy distinct-count convention that treats
	// the noise label as one more cluster.
	IncludeNoise bool
}

// NewRunner creates a Runner with a real clock.
func NewRunner(database *db.DB, clusterer outbreak.Clusterer, includeNoise bool) *Runner {
	return &Runner{
		DB:           database,
		Clusterer:    clusterer,
		Clock:        timeutil.RealClock{},
		IncludeNoise: includeNoise,
	}
}

// Run clusters the infected subset of records, writes labels back onto the
// records by row ID, persists everything when a DB is configured, and
// returns the run report. The records slice is labeled in place.
//
// An empty infected subset is a degenerate success: no labels, zero
// clusters, and the report still renders.
func (r *Runner) Run(records []outbreak.CaseRecord) (*Report, error) {
	points := outbreak.InfectedPoints(records)
	labels := r.Clusterer.Labels(points)

	assignment, err := outbreak.BuildAssignment(points, labels)
	if err != nil {
		return nil, fmt.Errorf("clustering produced inconsistent labels: %w", err)
	}
	outbreak.ApplyLabels(records, assignment)

	params := r.Clusterer.GetParams()
	report := &Report{
		RunID:        uuid.NewString(),
		Params:       params,
		IncludeNoise: r.IncludeNoise,
		PointsCount:  len(points),
		ClusterCount: outbreak.DistinctClusters(labels, r.IncludeNoise),
		NoiseCount:   outbreak.NoiseCount(labels),
		Summaries:    outbreak.Summarize(points, labels),
		Records:      records,
		CreatedAt:    r.Clock.Now(),
	}

	monitoring.Logf("run %s: clustered %d infected points into %d clusters (%d noise)",
		report.RunID, report.PointsCount, report.ClusterCount, report.NoiseCount)

	if r.DB != nil {
		if err := r.persist(report, assignment); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (r *Runner) persist(report *Report, assignment outbreak.Assignment) error {
	if err := r.DB.InsertRecords(report.Records); err != nil {
		return fmt.Errorf("failed to store case records: %w", err)
	}
	if err := r.DB.UpdateClusterLabels(assignment); err != nil {
		return fmt.Errorf("failed to store cluster labels: %w", err)
	}
	if err := r.DB.RecordAnalysisRun(db.AnalysisRun{
		RunID:        report.RunID,
		Eps:          report.Params.Eps,
		MinPts:       report.Params.MinPts,
		IncludeNoise: report.IncludeNoise,
		PointsCount:  report.PointsCount,
		ClusterCount: report.ClusterCount,
		NoiseCount:   report.NoiseCount,
		CreatedAt:    report.CreatedAt,
	}); err != nil {
		return fmt.Errorf("failed to record analysis run: %w", err)
	}
	return nil
}
