package analysis

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epifield-data/outbreak.report/internal/db"
	"github.com/epifield-data/outbreak.report/internal/monitoring"
	"github.com/epifield-data/outbreak.report/internal/outbreak"
	"github.com/epifield-data/outbreak.report/internal/timeutil"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

func testRecords() []outbreak.CaseRecord {
	// Two infected groups, one isolated infected case, and non-infected
	// rows interleaved between them.
	return []outbreak.CaseRecord{
		{RowID: 1, Northing: 0, Easting: 0, Infected: true},
		{RowID: 2, Northing: 0, Easting: 1, Infected: true},
		{RowID: 3, Northing: 1, Easting: 0, Infected: true},
		{RowID: 4, Northing: 0.5, Easting: 0.5, Infected: false},
		{RowID: 5, Northing: 100, Easting: 100, Infected: true},
		{RowID: 6, Northing: 100, Easting: 101, Infected: true},
		{RowID: 7, Northing: 101, Easting: 100, Infected: true},
		{RowID: 8, Northing: 50, Easting: 50, Infected: true},
		{RowID: 9, Northing: 51, Easting: 51, Infected: false},
	}
}

func newTestRunner(t *testing.T, database *db.DB, includeNoise bool) *Runner {
	t.Helper()
	r := NewRunner(database, outbreak.NewDBSCANClusterer(1.5, 2), includeNoise)
	r.Clock = timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return r
}

func TestRunner_Run(t *testing.T) {
	records := testRecords()
	report, err := newTestRunner(t, nil, false).Run(records)
	require.NoError(t, err)

	require.Equal(t, 7, report.PointsCount)
	require.Equal(t, 2, report.ClusterCount)
	require.Equal(t, 1, report.NoiseCount)
	require.Len(t, report.Summaries, 2)
	require.NotEmpty(t, report.RunID)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), report.CreatedAt)

	// Labels joined back by row ID: non-infected rows stay unlabeled.
	require.Nil(t, records[3].Cluster)
	require.Nil(t, records[8].Cluster)
	require.NotNil(t, records[0].Cluster)
	require.NotNil(t, records[7].Cluster)
	require.Equal(t, outbreak.NoiseLabel, *records[7].Cluster)
}

func TestRunner_Run_IncludeNoise(t *testing.T) {
	report, err := newTestRunner(t, nil, true).Run(testRecords())
	require.NoError(t, err)

	// Legacy unique-count: two clusters plus the noise label.
	require.Equal(t, 3, report.ClusterCount)
}

func TestRunner_Run_EmptyInfectedSet(t *testing.T) {
	records := []outbreak.CaseRecord{
		{RowID: 1, Northing: 0, Easting: 0, Infected: false},
		{RowID: 2, Northing: 1, Easting: 1, Infected: false},
	}
	report, err := newTestRunner(t, nil, false).Run(records)
	require.NoError(t, err)

	require.Equal(t, 0, report.PointsCount)
	require.Equal(t, 0, report.ClusterCount)
	require.Equal(t, "0 distinct clusters of infected found", report.String())
}

func TestRunner_Run_Persists(t *testing.T) {
	database, err := db.NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.MigrateUp("../../db/migrations"))

	report, err := newTestRunner(t, database, false).Run(testRecords())
	require.NoError(t, err)

	stored, err := database.Records()
	require.NoError(t, err)
	require.Len(t, stored, 9)
	for _, rec := range stored {
		if rec.Infected {
			require.NotNil(t, rec.Cluster, "infected row %d must be labeled", rec.RowID)
		} else {
			require.Nil(t, rec.Cluster, "non-infected row %d must stay unlabeled", rec.RowID)
		}
	}

	runs, err := database.AnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, report.RunID, runs[0].RunID)
	require.Equal(t, report.ClusterCount, runs[0].ClusterCount)

	sizes, err := database.ClusterSizes()
	require.NoError(t, err)
	require.Len(t, sizes, 2)
}

func TestReport_String(t *testing.T) {
	r := &Report{ClusterCount: 12}
	require.Equal(t, "12 distinct clusters of infected found", r.String())
}

func TestReport_Describe(t *testing.T) {
	report, err := newTestRunner(t, nil, false).Run(testRecords())
	require.NoError(t, err)

	text := report.Describe("m")
	require.True(t, strings.HasPrefix(text, "2 distinct clusters of infected found"))
	require.Contains(t, text, "eps=1.5m")
	require.Contains(t, text, "cluster ")
}
