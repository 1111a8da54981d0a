package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/epifield-data/outbreak.report/internal/analysis"
	"github.com/epifield-data/outbreak.report/internal/api"
	"github.com/epifield-data/outbreak.report/internal/chart"
	"github.com/epifield-data/outbreak.report/internal/config"
	"github.com/epifield-data/outbreak.report/internal/db"
	"github.com/epifield-data/outbreak.report/internal/ingest"
	"github.com/epifield-data/outbreak.report/internal/outbreak"
	"github.com/epifield-data/outbreak.report/internal/units"
	"github.com/epifield-data/outbreak.report/internal/version"
)

var (
	inputPath     = flag.String("input", "", "CSV file of case records to analyse")
	dbPath        = flag.String("db", "outbreak.db", "SQLite database path (empty disables persistence)")
	migrationsDir = flag.String("migrations", "db/migrations", "Directory containing SQL migrations")
	configPath    = flag.String("config", "", "Tuning config JSON file (defaults apply when omitted)")
	epsFlag       = flag.Float64("eps", 0, "DBSCAN neighbourhood radius in metres (overrides config)")
	minPtsFlag    = flag.Int("minpts", 0, "DBSCAN minimum points per cluster (overrides config)")
	includeNoise  = flag.Bool("include-noise", false, "Count the noise label in the distinct-cluster total (legacy behaviour)")
	displayUnits  = flag.String("units", "", "Display units for distances: m, km or ft (overrides config)")
	plotPath      = flag.String("plot", "", "Write a PNG cluster map to this path after analysis")
	listen        = flag.String("listen", "", "Serve the HTTP API on this address (e.g. :8080)")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

// tuningOverrides carries the CLI flags that take precedence over the
// tuning config file. Nil fields fall through to the config.
type tuningOverrides struct {
	eps          *float64
	minPts       *int
	includeNoise *bool
	units        *string
}

// effectiveTuning resolves clustering parameters: CLI flag first, then
// config file, then built-in default.
func effectiveTuning(cfg *config.TuningConfig, o tuningOverrides) (params outbreak.Params, withNoise bool, display string) {
	params = outbreak.Params{Eps: cfg.GetEps(), MinPts: cfg.GetMinPts()}
	withNoise = cfg.GetIncludeNoise()
	display = cfg.GetUnits()

	if o.eps != nil {
		params.Eps = *o.eps
	}
	if o.minPts != nil {
		params.MinPts = *o.minPts
	}
	if o.includeNoise != nil {
		withNoise = *o.includeNoise
	}
	if o.units != nil {
		display = *o.units
	}

	return params, withNoise, display
}

// flagOverrides collects the tuning flags that were explicitly set.
func flagOverrides() tuningOverrides {
	var o tuningOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "eps":
			o.eps = epsFlag
		case "minpts":
			o.minPts = minPtsFlag
		case "include-noise":
			o.includeNoise = includeNoise
		case "units":
			o.units = displayUnits
		}
	})
	return o
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *inputPath == "" && *listen == "" {
		log.Fatal("nothing to do: pass -input to analyse a CSV and/or -listen to serve the API")
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	params, withNoise, display := effectiveTuning(cfg, flagOverrides())
	if params.Eps <= 0 {
		log.Fatalf("eps must be positive, got %f", params.Eps)
	}
	if params.MinPts < 1 {
		log.Fatalf("minpts must be at least 1, got %d", params.MinPts)
	}
	if !units.IsValid(display) {
		log.Fatalf("invalid units %q, must be one of: %s", display, units.GetValidUnitsString())
	}

	var database *db.DB
	if *dbPath != "" {
		var err error
		database, err = db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer database.Close()

		if err := database.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	if *inputPath != "" {
		records, err := ingest.LoadCSV(*inputPath)
		if err != nil {
			log.Fatalf("failed to load input: %v", err)
		}

		runner := analysis.NewRunner(database, outbreak.NewDBSCANClusterer(params.Eps, params.MinPts), withNoise)
		report, err := runner.Run(records)
		if err != nil {
			log.Fatalf("analysis failed: %v", err)
		}

		fmt.Println(report.String())
		log.Print(report.Describe(display))

		if *plotPath != "" {
			if err := chart.SavePNG(*plotPath, report.Records); err != nil {
				log.Fatalf("failed to write plot: %v", err)
			}
			log.Printf("wrote cluster map to %s", *plotPath)
		}
	}

	if *listen == "" {
		return
	}
	if database == nil {
		log.Fatal("-listen requires a database; set -db")
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// admin debugging routes (tailsql console, on-demand backup)
		database.AttachAdminRoutes(mux)

		apiMux := api.NewServer(database, cfg).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		go func() {
			log.Printf("serving on %s (version %s)", *listen, version.String())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
