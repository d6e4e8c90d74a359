package terrain

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

// idwCutoffFactor scales the mean nearest-sample spacing into the
// radius beyond which a grid cell is considered outside the data and
// left as NaN.
const idwCutoffFactor = 1.5

// BuildGrid interpolates the scattered elevation samples onto a regular
// GridSize x GridSize raster spanning the planar bounding box of the
// collection. Classification is ignored. Cells farther from every
// sample than the IDW cutoff are NaN ("no data") so the contour
// renderer never shows extrapolated values.
//
// Degenerate input is the documented constant fallback: fewer than 3
// non-collinear points, or a zero-extent axis, produces a grid filled
// with the mean elevation (the collapsed axis shrinks to a single
// coordinate). An empty collection is ErrInsufficientData.
func BuildGrid(c model.Collection, opts model.Options) (model.Grid, error) {
	n := c.Len()
	if n == 0 {
		return model.Grid{}, Insufficientf("no points to grid")
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i, p := range c.Points {
		xs[i] = p.X()
		ys[i] = p.Y()
		zs[i] = p.Elevation
	}

	xMin, xMax := floats.Min(xs), floats.Max(xs)
	yMin, yMax := floats.Min(ys), floats.Max(ys)

	xc := axisCoords(xMin, xMax, opts.GridSize)
	yc := axisCoords(yMin, yMax, opts.GridSize)

	if n < 3 || collinear(xs, ys) || xMax == xMin || yMax == yMin {
		mean := stat.Mean(zs, nil)
		return constantGrid(xc, yc, mean), nil
	}

	cutoff := idwCutoffFactor * meanNearestSpacing(xs, ys)

	g := model.Grid{XCoords: xc, YCoords: yc, Z: make([][]float64, len(yc))}
	for r, gy := range yc {
		row := make([]float64, len(xc))
		for col, gx := range xc {
			switch opts.Interp {
			case model.InterpNearest:
				row[col] = nearestValue(xs, ys, zs, gx, gy)
			default:
				row[col] = idwValue(xs, ys, zs, gx, gy, opts.IDWPower, cutoff)
			}
		}
		g.Z[r] = row
	}
	return g, nil
}

// axisCoords is a strictly increasing linear span, collapsing to a
// single coordinate when the axis has no extent.
func axisCoords(min, max float64, n int) []float64 {
	if max <= min {
		return []float64{min}
	}
	return floats.Span(make([]float64, n), min, max)
}

func constantGrid(xc, yc []float64, v float64) model.Grid {
	z := make([][]float64, len(yc))
	for r := range z {
		row := make([]float64, len(xc))
		for c := range row {
			row[c] = v
		}
		z[r] = row
	}
	return model.Grid{XCoords: xc, YCoords: yc, Z: z}
}

// collinear reports whether every point sits on one line (within a
// tolerance scaled to the data extent).
func collinear(xs, ys []float64) bool {
	n := len(xs)
	// find two distinct anchor points
	ax, ay := xs[0], ys[0]
	bi := -1
	for i := 1; i < n; i++ {
		if xs[i] != ax || ys[i] != ay {
			bi = i
			break
		}
	}
	if bi < 0 {
		return true // all coincident
	}
	ux, uy := xs[bi]-ax, ys[bi]-ay
	scale := math.Hypot(ux, uy)
	tol := 1e-9 * scale * scale
	for i := 1; i < n; i++ {
		cross := ux*(ys[i]-ay) - uy*(xs[i]-ax)
		if math.Abs(cross) > tol {
			return false
		}
	}
	return true
}

// meanNearestSpacing is the mean distance from each sample to its
// closest other sample, the characteristic spacing of the survey.
func meanNearestSpacing(xs, ys []float64) float64 {
	n := len(xs)
	var sum float64
	for i := 0; i < n; i++ {
		best := math.Inf(1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := math.Hypot(xs[j]-xs[i], ys[j]-ys[i])
			if d > 0 && d < best {
				best = d
			}
		}
		if math.IsInf(best, 1) {
			best = 0
		}
		sum += best
	}
	return sum / float64(n)
}

// idwValue is inverse-distance weighting with an exact-hit shortcut and
// a cutoff radius outside which the cell is NaN.
func idwValue(xs, ys, zs []float64, gx, gy, power, cutoff float64) float64 {
	var wsum, vsum float64
	inRange := false
	for i := range xs {
		d := math.Hypot(xs[i]-gx, ys[i]-gy)
		if d < 1e-12 {
			return zs[i]
		}
		if d <= cutoff {
			inRange = true
		}
		w := 1 / math.Pow(d, power)
		wsum += w
		vsum += w * zs[i]
	}
	if !inRange || wsum == 0 {
		return math.NaN()
	}
	return vsum / wsum
}

func nearestValue(xs, ys, zs []float64, gx, gy float64) float64 {
	best := math.Inf(1)
	v := math.NaN()
	for i := range xs {
		d := math.Hypot(xs[i]-gx, ys[i]-gy)
		if d < best {
			best = d
			v = zs[i]
		}
	}
	return v
}
