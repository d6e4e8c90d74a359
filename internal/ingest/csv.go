// Package ingest parses tabular survey uploads into point collections.
//
// Column detection follows the upstream tool: header names are matched
// case-insensitively against known aliases, and Easting/Northing take
// priority over Latitude/Longitude when deciding the schema because
// lat/lon columns in field exports are the ones most often mislabeled.
// A dataset carrying complete columns for both schemas is rejected as
// mixed rather than silently picking one.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/puneet-chandna/water-brakes/internal/model"
	"github.com/puneet-chandna/water-brakes/internal/terrain"
)

var (
	latAliases      = []string{"latitude", "lat", "y"}
	lonAliases      = []string{"longitude", "lon", "long", "lng", "x"}
	eastingAliases  = []string{"easting", "east", "e"}
	northingAliases = []string{"northing", "north", "n"}
	elevAliases     = []string{"elevation", "elev", "altitude"}
	distAliases     = []string{"distance (m)", "distance"}
)

// zero distances break downstream gradient ratios; the upstream tool
// clamps them to this epsilon
const distanceEpsilon = 1e-6

// Schema describes which columns the parser resolved.
type Schema struct {
	Kind     model.CoordKind
	XCol     int // easting or longitude
	YCol     int // northing or latitude
	ElevCol  int
	DistCol  int // -1 when absent
	XName    string
	YName    string
	ElevName string
}

// ParseCSV reads a full survey table and returns the ordered point
// collection tagged with a fresh dataset id.
func ParseCSV(r io.Reader) (model.Collection, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		// nothing uploaded at all, same contract as a header-only table
		return model.Collection{}, terrain.Insufficientf("dataset has no data rows")
	}
	if err != nil {
		return model.Collection{}, terrain.Malformedf(-1, "read header: %v", err)
	}

	schema, err := DetectSchema(header)
	if err != nil {
		return model.Collection{}, err
	}

	coll := model.Collection{ID: uuid.NewString()}
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Collection{}, terrain.Malformedf(row, "read row: %v", err)
		}
		p, err := parseRow(rec, schema, row)
		if err != nil {
			return model.Collection{}, err
		}
		coll.Points = append(coll.Points, p)
		row++
	}
	if coll.Len() == 0 {
		return model.Collection{}, terrain.Insufficientf("dataset has no data rows")
	}
	return coll, nil
}

// DetectSchema resolves the coordinate and elevation columns from the
// header row.
func DetectSchema(header []string) (Schema, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	find := func(aliases []string) (int, string) {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				return i, header[i]
			}
		}
		return -1, ""
	}

	eCol, eName := find(eastingAliases)
	nCol, nName := find(northingAliases)
	latCol, latName := find(latAliases)
	lonCol, lonName := find(lonAliases)
	elevCol, elevName := find(elevAliases)
	distCol, _ := find(distAliases)

	if elevCol < 0 {
		return Schema{}, terrain.Malformedf(-1, "missing required elevation column (accepted: %s)", strings.Join(elevAliases, ", "))
	}

	hasUTM := eCol >= 0 && nCol >= 0
	hasGeo := latCol >= 0 && lonCol >= 0

	// weak single-letter aliases (x/y) double as lat/lon patterns; a
	// genuine double schema is two full, distinct column pairs
	if hasUTM && hasGeo && latCol != nCol && lonCol != eCol {
		return Schema{}, terrain.Malformedf(-1,
			"rows mix coordinate schemas: both %s/%s and %s/%s present", eName, nName, latName, lonName)
	}

	switch {
	case hasUTM:
		return Schema{Kind: model.CoordProjected, XCol: eCol, YCol: nCol, ElevCol: elevCol, DistCol: distCol,
			XName: eName, YName: nName, ElevName: elevName}, nil
	case hasGeo:
		return Schema{Kind: model.CoordGeographic, XCol: lonCol, YCol: latCol, ElevCol: elevCol, DistCol: distCol,
			XName: lonName, YName: latName, ElevName: elevName}, nil
	default:
		return Schema{}, terrain.Malformedf(-1, "no coordinate columns found (need easting/northing or latitude/longitude)")
	}
}

func parseRow(rec []string, s Schema, row int) (model.Point, error) {
	get := func(col int, name string) (float64, error) {
		if col >= len(rec) {
			return 0, terrain.Malformedf(row, "missing value for column %q", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil {
			return 0, terrain.Malformedf(row, "column %q: %v", name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, terrain.Malformedf(row, "column %q: non-finite value", name)
		}
		return v, nil
	}

	x, err := get(s.XCol, s.XName)
	if err != nil {
		return model.Point{}, err
	}
	y, err := get(s.YCol, s.YName)
	if err != nil {
		return model.Point{}, err
	}
	elev, err := get(s.ElevCol, s.ElevName)
	if err != nil {
		return model.Point{}, err
	}

	p := model.Point{Kind: s.Kind, Elevation: elev}
	if s.Kind == model.CoordProjected {
		p.Easting, p.Northing = x, y
	} else {
		p.Lon, p.Lat = x, y
	}

	if s.DistCol >= 0 && s.DistCol < len(rec) {
		raw := strings.TrimSpace(rec[s.DistCol])
		if raw != "" {
			d, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return model.Point{}, terrain.Malformedf(row, "distance column: %v", err)
			}
			if d == 0 {
				d = distanceEpsilon
			}
			p.Distance = d
		}
	}
	return p, nil
}

// String renders the schema for logs.
func (s Schema) String() string {
	return fmt.Sprintf("%s (%s/%s, elevation=%s)", s.Kind, s.XName, s.YName, s.ElevName)
}
