// Package ingest loads case records from CSV files.
//
// The expected input has a header row with at least the columns northing,
// easting and infected (any casing). An optional row_id column supplies
// stable row identities; without it rows are numbered 1..n in file order.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/epifield-data/outbreak.report/internal/outbreak"
)

// Required column names, matched case-insensitively.
const (
	ColumnNorthing = "northing"
	ColumnEasting  = "easting"
	ColumnInfected = "infected"
	ColumnRowID    = "row_id"
)

// LoadCSV reads case records from the CSV file at path.
func LoadCSV(path string) ([]outbreak.CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecords parses case records from CSV data. Any malformed row aborts
// the read; there are no partial results.
func ReadRecords(r io.Reader) ([]outbreak.CaseRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []outbreak.CaseRecord
	row := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row+1, err)
		}
		row++

		rec, err := parseRecord(fields, cols, int64(row))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// columnMap holds the resolved index of each column; -1 means absent.
type columnMap struct {
	northing int
	easting  int
	infected int
	rowID    int
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{northing: -1, easting: -1, infected: -1, rowID: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ColumnNorthing:
			cols.northing = i
		case ColumnEasting:
			cols.easting = i
		case ColumnInfected:
			cols.infected = i
		case ColumnRowID:
			cols.rowID = i
		}
	}

	var missing []string
	if cols.northing < 0 {
		missing = append(missing, ColumnNorthing)
	}
	if cols.easting < 0 {
		missing = append(missing, ColumnEasting)
	}
	if cols.infected < 0 {
		missing = append(missing, ColumnInfected)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return cols, nil
}

func parseRecord(fields []string, cols columnMap, defaultRowID int64) (outbreak.CaseRecord, error) {
	rec := outbreak.CaseRecord{RowID: defaultRowID}

	var err error
	if rec.Northing, err = parseCoordinate(fields, cols.northing, ColumnNorthing); err != nil {
		return rec, err
	}
	if rec.Easting, err = parseCoordinate(fields, cols.easting, ColumnEasting); err != nil {
		return rec, err
	}

	if cols.infected >= len(fields) {
		return rec, fmt.Errorf("missing %s value", ColumnInfected)
	}
	rec.Infected, err = strconv.ParseBool(strings.TrimSpace(fields[cols.infected]))
	if err != nil {
		return rec, fmt.Errorf("invalid %s value %q", ColumnInfected, fields[cols.infected])
	}

	if cols.rowID >= 0 {
		if cols.rowID >= len(fields) {
			return rec, fmt.Errorf("missing %s value", ColumnRowID)
		}
		rec.RowID, err = strconv.ParseInt(strings.TrimSpace(fields[cols.rowID]), 10, 64)
		if err != nil {
			return rec, fmt.Errorf("invalid %s value %q", ColumnRowID, fields[cols.rowID])
		}
	}

	return rec, nil
}

func parseCoordinate(fields []string, idx int, name string) (float64, error) {
	if idx >= len(fields) {
		return 0, fmt.Errorf("missing %s value", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", name, fields[idx])
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s value %q", name, fields[idx])
	}
	return v, nil
}
