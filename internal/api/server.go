// Package api exposes the analysis results over HTTP.
package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/epifield-data/outbreak.report/internal/chart"
	"github.com/epifield-data/outbreak.report/internal/config"
	"github.com/epifield-data/outbreak.report/internal/db"
	"github.com/epifield-data/outbreak.report/internal/httputil"
	"github.com/epifield-data/outbreak.report/internal/outbreak"
	"github.com/epifield-data/outbreak.report/internal/version"
)

// ANSI escape codes used by the request logging middleware
const colorReset = "\033[0m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"
const colorYellow = "\033[33m"

// Server serves stored case records, cluster summaries and analysis runs.
type Server struct {
	db     *db.DB
	tuning *config.TuningConfig
}

// NewServer creates an API server over the given database.
func NewServer(database *db.DB, tuning *config.TuningConfig) *Server {
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	return &Server{db: database, tuning: tuning}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.logged(s.handleHealth))
	mux.HandleFunc("/runs", s.logged(s.handleRuns))
	mux.HandleFunc("/records", s.logged(s.handleRecords))
	mux.HandleFunc("/clusters", s.logged(s.handleClusters))
	mux.HandleFunc("/chart", s.logged(s.handleChart))
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

func (s *Server) logged(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		h(lrw, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, statusCodeColor(lrw.statusCode))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	runs, err := s.db.AnalysisRuns()
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if runs == nil {
		runs = []db.AnalysisRun{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	records, err := s.db.Records()
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if records == nil {
		records = []outbreak.CaseRecord{}
	}
	httputil.WriteJSONOK(w, records)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	records, err := s.db.Records()
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	summaries := summarizeStored(records)
	httputil.WriteJSONOK(w, summaries)
}

// summarizeStored rebuilds cluster summaries from stored labeled records.
func summarizeStored(records []outbreak.CaseRecord) []outbreak.ClusterSummary {
	var points []outbreak.CasePoint
	var labels []int
	for _, r := range records {
		if r.Cluster == nil {
			continue
		}
		points = append(points, outbreak.CasePoint{
			RowID:    r.RowID,
			Northing: r.Northing,
			Easting:  r.Easting,
		})
		labels = append(labels, *r.Cluster)
	}

	summaries := outbreak.Summarize(points, labels)
	if summaries == nil {
		summaries = []outbreak.ClusterSummary{}
	}
	return summaries
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	maxPoints := s.tuning.GetChartMaxPoints()
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		v, err := strconv.Atoi(mp)
		if err != nil || v < 100 || v > 50000 {
			httputil.BadRequest(w, "max_points must be an integer between 100 and 50000")
			return
		}
		maxPoints = v
	}

	records, err := s.db.Records()
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.RenderScatterHTML(w, records, maxPoints); err != nil {
		log.Printf("failed to render chart: %v", err)
	}
}
