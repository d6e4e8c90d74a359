// Package model defines the terrain survey data types shared across the pipeline.
package model

import "fmt"

// CoordKind says which coordinate form a point carried on input.
type CoordKind int

const (
	CoordUnknown CoordKind = iota
	CoordProjected
	CoordGeographic
)

func (k CoordKind) String() string {
	switch k {
	case CoordProjected:
		return "projected"
	case CoordGeographic:
		return "geographic"
	default:
		return "unknown"
	}
}

// TerrainClass is the two-way classification of a survey point.
type TerrainClass string

const (
	ClassUnset  TerrainClass = ""
	ClassSwale  TerrainClass = "Swale"
	ClassTrench TerrainClass = "Trench"
)

// Point is one terrain measurement. Easting/Northing are set for
// projected input, Lat/Lon for geographic input; after normalization
// every point carries Lat/Lon. Slope, Aspect and Class are filled in
// by the pipeline stages.
type Point struct {
	Kind      CoordKind `json:"-"`
	Easting   float64   `json:"easting,omitempty"`
	Northing  float64   `json:"northing,omitempty"`
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Elevation float64   `json:"elevation"`
	Distance  float64   `json:"distance,omitempty"`

	Slope  float64      `json:"slope"`
	Aspect float64      `json:"aspect,omitempty"`
	Class  TerrainClass `json:"terrain_class,omitempty"`
}

// X returns the planar x coordinate used for neighborhoods and gridding:
// easting when the point was projected, longitude otherwise.
func (p Point) X() float64 {
	if p.Kind == CoordProjected {
		return p.Easting
	}
	return p.Lon
}

// Y is the planar counterpart of X.
func (p Point) Y() float64 {
	if p.Kind == CoordProjected {
		return p.Northing
	}
	return p.Lat
}

// Collection is the ordered point set from one uploaded dataset.
// Insertion order is input row order and is preserved 1:1 through
// every stage.
type Collection struct {
	ID     string  `json:"dataset_id,omitempty"`
	Points []Point `json:"points"`
}

func (c Collection) Len() int { return len(c.Points) }

// Grid is a regular elevation raster. Z is row-major with
// len(Z) == len(YCoords) and len(Z[i]) == len(XCoords); NaN cells
// mean "no data".
type Grid struct {
	XCoords []float64   `json:"x_coords"`
	YCoords []float64   `json:"y_coords"`
	Z       [][]float64 `json:"z_values"`
}

// InterpMethod selects the scattered-data interpolation used by the
// grid builder.
type InterpMethod string

const (
	InterpIDW     InterpMethod = "idw"
	InterpNearest InterpMethod = "nearest"
)

// Options is the read-only configuration for one pipeline run.
type Options struct {
	GridSize       int
	Interp         InterpMethod
	IDWPower       float64
	SlopeNeighbors int
	ClusterSeed    int64
	ClusterMaxIter int
	UTMZone        int // 0 = infer from data
	UTMSouth       bool
}

// DefaultOptions mirrors the upstream tool's defaults (100x100 grid,
// two-cluster seed 42).
func DefaultOptions() Options {
	return Options{
		GridSize:       100,
		Interp:         InterpIDW,
		IDWPower:       2,
		SlopeNeighbors: 6,
		ClusterSeed:    42,
		ClusterMaxIter: 100,
	}
}

// Validate normalizes zero values to defaults and rejects nonsense.
func (o *Options) Validate() error {
	d := DefaultOptions()
	if o.GridSize == 0 {
		o.GridSize = d.GridSize
	}
	if o.GridSize < 2 || o.GridSize > 2000 {
		return fmt.Errorf("grid size %d out of range [2,2000]", o.GridSize)
	}
	if o.Interp == "" {
		o.Interp = d.Interp
	}
	if o.Interp != InterpIDW && o.Interp != InterpNearest {
		return fmt.Errorf("unknown interpolation method %q", o.Interp)
	}
	if o.IDWPower <= 0 {
		o.IDWPower = d.IDWPower
	}
	if o.SlopeNeighbors <= 0 {
		o.SlopeNeighbors = d.SlopeNeighbors
	}
	if o.ClusterMaxIter <= 0 {
		o.ClusterMaxIter = d.ClusterMaxIter
	}
	if o.UTMZone < 0 || o.UTMZone > 60 {
		return fmt.Errorf("utm zone %d out of range [1,60]", o.UTMZone)
	}
	return nil
}

// Summary holds the dataset statistics returned with every result.
type Summary struct {
	PointCount    int     `json:"point_count"`
	SwaleCount    int     `json:"swale_count"`
	TrenchCount   int     `json:"trench_count"`
	MinElevation  float64 `json:"min_elevation"`
	MaxElevation  float64 `json:"max_elevation"`
	MeanElevation float64 `json:"mean_elevation"`
	MeanSlope     float64 `json:"mean_slope"`
}

// Result is the full output of one pipeline run.
type Result struct {
	DatasetID string     `json:"dataset_id,omitempty"`
	Points    []Point    `json:"points"`
	Grid      Grid       `json:"grid"`
	Summary   Summary    `json:"summary"`
	Cells     []CellStat `json:"cells,omitempty"`
}

// CellStat aggregates classified points that fall in one H3 cell.
type CellStat struct {
	Cell          string  `json:"cell"`
	Swale         int     `json:"swale"`
	Trench        int     `json:"trench"`
	MeanElevation float64 `json:"mean_elevation"`
}
