package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/puneet-chandna/water-brakes/internal/model"
	"github.com/puneet-chandna/water-brakes/internal/terrain"
)

func TestParseCSV_ProjectedSchema(t *testing.T) {
	in := strings.Join([]string{
		"Easting,Northing,Elevation,Distance (m)",
		"355000,3120000,10.5,0",
		"355100,3120050,12.25,25.0",
	}, "\n")

	coll, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if coll.Len() != 2 {
		t.Fatalf("len=%d want 2", coll.Len())
	}
	if coll.ID == "" {
		t.Fatalf("missing dataset id")
	}
	p := coll.Points[0]
	if p.Kind != model.CoordProjected {
		t.Fatalf("kind=%v want projected", p.Kind)
	}
	if p.Easting != 355000 || p.Northing != 3120000 || p.Elevation != 10.5 {
		t.Fatalf("bad first point: %+v", p)
	}
	// zero distance is clamped, never zero
	if p.Distance != 1e-6 {
		t.Fatalf("distance=%g want clamp to 1e-6", p.Distance)
	}
	if coll.Points[1].Distance != 25 {
		t.Fatalf("distance=%g want 25", coll.Points[1].Distance)
	}
}

func TestParseCSV_GeographicSchema(t *testing.T) {
	in := "Latitude,Longitude,Elevation\n28.1,79.5,102\n28.2,79.6,98\n"
	coll, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	p := coll.Points[0]
	if p.Kind != model.CoordGeographic {
		t.Fatalf("kind=%v want geographic", p.Kind)
	}
	if p.Lat != 28.1 || p.Lon != 79.5 {
		t.Fatalf("lat/lon swapped or wrong: %+v", p)
	}
}

func TestDetectSchema_UTMPriorityOverWeakAliases(t *testing.T) {
	// x/y alone read as geographic, but explicit easting/northing win
	s, err := DetectSchema([]string{"easting", "northing", "elevation"})
	if err != nil {
		t.Fatalf("DetectSchema: %v", err)
	}
	if s.Kind != model.CoordProjected {
		t.Fatalf("kind=%v want projected", s.Kind)
	}

	s, err = DetectSchema([]string{"X", "Y", "Elevation"})
	if err != nil {
		t.Fatalf("DetectSchema x/y: %v", err)
	}
	if s.Kind != model.CoordGeographic {
		t.Fatalf("x/y kind=%v want geographic", s.Kind)
	}
}

func TestDetectSchema_CaseInsensitive(t *testing.T) {
	s, err := DetectSchema([]string{"EASTING", "Northing", "ELEVATION"})
	if err != nil {
		t.Fatalf("DetectSchema: %v", err)
	}
	if s.Kind != model.CoordProjected || s.XName != "EASTING" {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

func TestDetectSchema_MixedSchemasRejected(t *testing.T) {
	_, err := DetectSchema([]string{"Easting", "Northing", "Latitude", "Longitude", "Elevation"})
	if !errors.Is(err, terrain.ErrMalformedInput) {
		t.Fatalf("err=%v want ErrMalformedInput", err)
	}
}

func TestDetectSchema_MissingElevation(t *testing.T) {
	_, err := DetectSchema([]string{"Easting", "Northing"})
	if !errors.Is(err, terrain.ErrMalformedInput) {
		t.Fatalf("err=%v want ErrMalformedInput", err)
	}
}

func TestDetectSchema_NoCoordinates(t *testing.T) {
	_, err := DetectSchema([]string{"Elevation", "Notes"})
	if !errors.Is(err, terrain.ErrMalformedInput) {
		t.Fatalf("err=%v want ErrMalformedInput", err)
	}
}

func TestParseCSV_BadValueReportsRow(t *testing.T) {
	in := "Latitude,Longitude,Elevation\n28.1,79.5,102\n28.2,oops,98\n"
	_, err := ParseCSV(strings.NewReader(in))
	if !errors.Is(err, terrain.ErrMalformedInput) {
		t.Fatalf("err=%v want ErrMalformedInput", err)
	}
	var re *terrain.RowError
	if !errors.As(err, &re) || re.Row != 1 {
		t.Fatalf("expected row 1 in error, got %v", err)
	}
}

func TestParseCSV_EmptyBody(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Latitude,Longitude,Elevation\n"))
	if !errors.Is(err, terrain.ErrInsufficientData) {
		t.Fatalf("err=%v want ErrInsufficientData", err)
	}
}

func TestParseCSV_NoBytesAtAll(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	if !errors.Is(err, terrain.ErrInsufficientData) {
		t.Fatalf("err=%v want ErrInsufficientData", err)
	}
}

func TestParseCSV_BrokenHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("\"latitude\"x,longitude,elevation\n28.1,79.5,102\n"))
	if !errors.Is(err, terrain.ErrMalformedInput) {
		t.Fatalf("err=%v want ErrMalformedInput", err)
	}
}
