package analysis

import (
	"fmt"
	"time"

	"github.com/epifield-data/outbreak.report/internal/outbreak"
	"github.com/epifield-data/outbreak.report/internal/units"
)

// Report is the result of one clustering run.
type Report struct {
	RunID        string                    `json:"run_id"`
	Params       outbreak.Params           `json:"params"`
	IncludeNoise bool                      `json:"include_noise"`
	PointsCount  int                       `json:"points_count"`
	ClusterCount int                       `json:"cluster_count"`
	NoiseCount   int                       `json:"noise_count"`
	Summaries    []outbreak.ClusterSummary `json:"summaries"`
	Records      []outbreak.CaseRecord     `json:"-"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// String renders the one-line result the analysis prints on success.
func (r *Report) String() string {
	return fmt.Sprintf("%d distinct clusters of infected found", r.ClusterCount)
}

// Describe renders a multi-line human-readable summary of the run, with
// distances converted to the given display units.
func (r *Report) Describe(displayUnits string) string {
	out := fmt.Sprintf("%s\n", r.String())
	out += fmt.Sprintf("  eps=%.1f%s minPts=%d points=%d noise=%d\n",
		units.ConvertDistance(r.Params.Eps, displayUnits), displayUnits,
		r.Params.MinPts, r.PointsCount, r.NoiseCount)
	for _, s := range r.Summaries {
		out += fmt.Sprintf("  cluster %d: %d cases at (%.1f, %.1f), spread %.1f%s\n",
			s.ID, s.Size, s.CentroidNorthing, s.CentroidEasting,
			units.ConvertDistance(s.RadiusP95, displayUnits), displayUnits)
	}
	return out
}
