package terrain

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

// Run executes the full pipeline on one dataset: coordinate
// normalization, slope extraction, two-class clustering and contour
// grid construction. It is a pure function of (collection, options)
// with no shared state; the input collection is not modified.
func Run(c model.Collection, opts model.Options) (model.Result, error) {
	if err := opts.Validate(); err != nil {
		return model.Result{}, Malformedf(-1, "options: %v", err)
	}
	if c.Len() == 0 {
		return model.Result{}, Insufficientf("empty dataset")
	}

	work := model.Collection{
		ID:     c.ID,
		Points: append([]model.Point(nil), c.Points...),
	}

	if _, err := Normalize(&work, opts); err != nil {
		return model.Result{}, err
	}

	ComputeSlopes(&work, opts.SlopeNeighbors)

	if err := Classify(&work, opts); err != nil {
		return model.Result{}, err
	}

	grid, err := BuildGrid(work, opts)
	if err != nil {
		return model.Result{}, err
	}

	return model.Result{
		DatasetID: work.ID,
		Points:    work.Points,
		Grid:      grid,
		Summary:   Summarize(work.Points),
	}, nil
}

// Summarize computes the dataset statistics shipped with every result.
func Summarize(pts []model.Point) model.Summary {
	s := model.Summary{PointCount: len(pts)}
	if len(pts) == 0 {
		return s
	}
	elev := make([]float64, len(pts))
	slope := make([]float64, len(pts))
	for i, p := range pts {
		elev[i] = p.Elevation
		slope[i] = p.Slope
		switch p.Class {
		case model.ClassSwale:
			s.SwaleCount++
		case model.ClassTrench:
			s.TrenchCount++
		}
	}
	s.MinElevation = floats.Min(elev)
	s.MaxElevation = floats.Max(elev)
	s.MeanElevation = stat.Mean(elev, nil)
	s.MeanSlope = stat.Mean(slope, nil)
	return s
}
