package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadRecords(t *testing.T) {
	input := `northing,easting,infected
100.5,200.25,1
101.0,201.0,0
102.5,202.5,true
`
	records, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if records[0].RowID != 1 || records[2].RowID != 3 {
		t.Errorf("expected positional row IDs 1..3, got %d..%d", records[0].RowID, records[2].RowID)
	}
	if records[0].Northing != 100.5 || records[0].Easting != 200.25 {
		t.Errorf("unexpected coordinates for row 1: %+v", records[0])
	}
	if !records[0].Infected || records[1].Infected || !records[2].Infected {
		t.Errorf("infected flags wrong: %+v", records)
	}
	for i, r := range records {
		if r.Cluster != nil {
			t.Errorf("row %d: expected nil cluster before assignment", i+1)
		}
	}
}

func TestReadRecords_HeaderCaseInsensitive(t *testing.T) {
	input := "Northing,EASTING,Infected\n1.0,2.0,1\n"
	records, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestReadRecords_ExplicitRowID(t *testing.T) {
	input := "row_id,northing,easting,infected\n42,1.0,2.0,1\n7,3.0,4.0,0\n"
	records, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].RowID != 42 || records[1].RowID != 7 {
		t.Errorf("expected explicit row IDs 42, 7; got %d, %d", records[0].RowID, records[1].RowID)
	}
}

func TestReadRecords_MissingColumn(t *testing.T) {
	input := "northing,infected\n1.0,1\n"
	_, err := ReadRecords(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for missing easting column")
	}
	if !strings.Contains(err.Error(), "easting") {
		t.Errorf("error should name the missing column, got: %v", err)
	}
}

func TestReadRecords_NonNumericCoordinate(t *testing.T) {
	input := "northing,easting,infected\nabc,2.0,1\n"
	_, err := ReadRecords(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for non-numeric northing")
	}
	if !strings.Contains(err.Error(), "row 1") {
		t.Errorf("error should carry the row number, got: %v", err)
	}
}

func TestReadRecords_NonFiniteCoordinate(t *testing.T) {
	input := "northing,easting,infected\nNaN,2.0,1\n"
	if _, err := ReadRecords(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for NaN coordinate")
	}
}

func TestReadRecords_BadInfectedFlag(t *testing.T) {
	input := "northing,easting,infected\n1.0,2.0,maybe\n"
	if _, err := ReadRecords(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for invalid infected flag")
	}
}

func TestReadRecords_Empty(t *testing.T) {
	if _, err := ReadRecords(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("northing,easting,infected\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	content := "northing,easting,infected\n1.0,2.0,1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	records, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
