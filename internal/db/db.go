// Package db persists case records, cluster labels and analysis runs in
// SQLite.
package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/epifield-data/outbreak.report/internal/outbreak"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the SQLite database at path. The
// schema is managed by migrations; call MigrateUp before first use.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serialise access through one connection
	// so concurrent API reads never race the analysis write path.
	db.SetMaxOpenConns(1)

	return &DB{db}, nil
}

// InsertRecords stores case records, replacing any previous row with the
// same row ID. Labels are written separately by UpdateClusterLabels.
func (db *DB) InsertRecords(records []outbreak.CaseRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO case_records
		(row_id, northing, easting, infected, cluster) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var cluster interface{}
		if r.Cluster != nil {
			cluster = *r.Cluster
		}
		if _, err := stmt.Exec(r.RowID, r.Northing, r.Easting, r.Infected, cluster); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r.RowID, err)
		}
	}

	return tx.Commit()
}

// UpdateClusterLabels writes cluster labels onto stored records, joining on
// row ID. Rows absent from the assignment are reset to NULL so a re-run
// never leaves labels from a previous clustering behind.
func (db *DB) UpdateClusterLabels(a outbreak.Assignment) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE case_records SET cluster = NULL`); err != nil {
		return fmt.Errorf("failed to clear labels: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE case_records SET cluster = ? WHERE row_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	for rowID, label := range a {
		if _, err := stmt.Exec(label, rowID); err != nil {
			return fmt.Errorf("failed to label row %d: %w", rowID, err)
		}
	}

	return tx.Commit()
}

// Records returns all stored case records in row-ID order.
func (db *DB) Records() ([]outbreak.CaseRecord, error) {
	rows, err := db.Query(`SELECT row_id, northing, easting, infected, cluster
		FROM case_records ORDER BY row_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []outbreak.CaseRecord
	for rows.Next() {
		var r outbreak.CaseRecord
		var cluster sql.NullInt64
		if err := rows.Scan(&r.RowID, &r.Northing, &r.Easting, &r.Infected, &cluster); err != nil {
			return nil, err
		}
		if cluster.Valid {
			label := int(cluster.Int64)
			r.Cluster = &label
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// AnalysisRun is one recorded clustering run.
type AnalysisRun struct {
	RunID        string    `json:"run_id"`
	Eps          float64   `json:"eps"`
	MinPts       int       `json:"min_pts"`
	IncludeNoise bool      `json:"include_noise"`
	PointsCount  int       `json:"points_count"`
	ClusterCount int       `json:"cluster_count"`
	NoiseCount   int       `json:"noise_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *AnalysisRun) String() string {
	return fmt.Sprintf("RunID: %s, Eps: %f, MinPts: %d, Points: %d, Clusters: %d, Noise: %d",
		r.RunID, r.Eps, r.MinPts, r.PointsCount, r.ClusterCount, r.NoiseCount)
}

// RecordAnalysisRun stores the parameters and results of a clustering run.
func (db *DB) RecordAnalysisRun(run AnalysisRun) error {
	_, err := db.Exec(
		`INSERT INTO analysis_runs (
			run_id, eps, min_pts, include_noise, points_count,
			cluster_count, noise_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Eps, run.MinPts, run.IncludeNoise, run.PointsCount,
		run.ClusterCount, run.NoiseCount, run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record analysis run: %w", err)
	}
	return nil
}

// AnalysisRuns returns recorded runs, most recent first.
func (db *DB) AnalysisRuns() ([]AnalysisRun, error) {
	rows, err := db.Query(`SELECT run_id, eps, min_pts, include_noise, points_count,
		cluster_count, noise_count, created_at
		FROM analysis_runs ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		var createdAt string
		if err := rows.Scan(
			&run.RunID, &run.Eps, &run.MinPts, &run.IncludeNoise, &run.PointsCount,
			&run.ClusterCount, &run.NoiseCount, &createdAt,
		); err != nil {
			return nil, err
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// ClusterSizes returns the number of labeled rows per cluster, excluding
// noise and unlabeled rows.
func (db *DB) ClusterSizes() (map[int]int, error) {
	rows, err := db.Query(`SELECT cluster, COUNT(*) FROM case_records
		WHERE cluster IS NOT NULL AND cluster != ?
		GROUP BY cluster`, outbreak.NoiseLabel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sizes := make(map[int]int)
	for rows.Next() {
		var cluster, count int
		if err := rows.Scan(&cluster, &count); err != nil {
			return nil, err
		}
		sizes[cluster] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sizes, nil
}

// AttachAdminRoutes mounts debugging routes: a tailsql live SQL console and
// an on-demand gzip backup download.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://outbreak.db", db.DB, &tailsql.DBOptions{
		Label: "Outbreak DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := fmt.Sprintf("backup-%d.db", time.Now().Unix())
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			log.Printf("Failed to write backup file: %v", err)
		}
	}))
}
