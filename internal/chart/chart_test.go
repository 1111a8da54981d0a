package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/epifield-data/outbreak.report/internal/outbreak"
)

func labeledRecords() []outbreak.CaseRecord {
	one, two, noise := 1, 2, outbreak.NoiseLabel
	return []outbreak.CaseRecord{
		{RowID: 1, Northing: 0, Easting: 0, Infected: true, Cluster: &one},
		{RowID: 2, Northing: 0, Easting: 1, Infected: true, Cluster: &one},
		{RowID: 3, Northing: 100, Easting: 100, Infected: true, Cluster: &two},
		{RowID: 4, Northing: 50, Easting: 50, Infected: true, Cluster: &noise},
		{RowID: 5, Northing: 25, Easting: 25, Infected: false},
	}
}

func TestRenderScatterHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderScatterHTML(&buf, labeledRecords(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"cluster 1", "cluster 2", "noise", "uninfected"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart HTML missing series %q", want)
		}
	}
}

func TestRenderScatterHTML_Downsamples(t *testing.T) {
	one := 1
	records := make([]outbreak.CaseRecord, 1000)
	for i := range records {
		records[i] = outbreak.CaseRecord{
			RowID:    int64(i + 1),
			Northing: float64(i),
			Easting:  float64(i),
			Infected: true,
			Cluster:  &one,
		}
	}

	var buf bytes.Buffer
	if err := RenderScatterHTML(&buf, records, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "stride=10") {
		t.Error("expected stride=10 in chart subtitle")
	}
}

func TestRenderScatterHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderScatterHTML(&buf, nil, 0); err != nil {
		t.Fatalf("unexpected error for empty records: %v", err)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.png")
	if err := SavePNG(path, labeledRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot file not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}
