package summary

import (
	"math"
	"testing"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

func classified(lat, lon, elev float64, class model.TerrainClass) model.Point {
	return model.Point{Kind: model.CoordGeographic, Lat: lat, Lon: lon, Elevation: elev, Class: class}
}

func TestCells_GroupsByProximity(t *testing.T) {
	// two tight pairs ~100km apart land in different coarse cells
	pts := []model.Point{
		classified(28.10, 79.50, 10, model.ClassSwale),
		classified(28.101, 79.501, 12, model.ClassTrench),
		classified(29.10, 80.50, 50, model.ClassTrench),
		classified(29.101, 80.501, 52, model.ClassTrench),
	}
	cells, err := Cells(pts, 5)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("len=%d want 2 cells", len(cells))
	}
	var totalSwale, totalTrench, totalN int
	for _, c := range cells {
		totalSwale += c.Swale
		totalTrench += c.Trench
		totalN += c.Swale + c.Trench
	}
	if totalSwale != 1 || totalTrench != 3 || totalN != 4 {
		t.Fatalf("counts swale=%d trench=%d n=%d want 1/3/4", totalSwale, totalTrench, totalN)
	}
}

func TestCells_MeanElevation(t *testing.T) {
	pts := []model.Point{
		classified(28.10, 79.50, 10, model.ClassSwale),
		classified(28.10, 79.50, 30, model.ClassTrench),
	}
	cells, err := Cells(pts, 8)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("len=%d want 1", len(cells))
	}
	if math.Abs(cells[0].MeanElevation-20) > 1e-9 {
		t.Fatalf("mean elevation=%g want 20", cells[0].MeanElevation)
	}
}

func TestCells_DeterministicOrder(t *testing.T) {
	pts := []model.Point{
		classified(10, 10, 1, model.ClassSwale),
		classified(-10, -10, 2, model.ClassTrench),
		classified(40, 40, 3, model.ClassSwale),
	}
	a, err := Cells(pts, 6)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	b, err := Cells([]model.Point{pts[2], pts[0], pts[1]}, 6)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Cell != b[i].Cell {
			t.Fatalf("order differs at %d: %s vs %s", i, a[i].Cell, b[i].Cell)
		}
	}
}

func TestCells_InvalidResolution(t *testing.T) {
	if _, err := Cells(nil, 16); err == nil {
		t.Fatalf("expected error for resolution 16")
	}
}
