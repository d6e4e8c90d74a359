package terrain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

// gradEpsilon separates a real surface gradient from least-squares
// rounding noise; flat neighborhoods produce gradients around 1e-16.
const gradEpsilon = 1e-9

// ComputeSlopes attaches a local slope (degrees) and aspect (degrees,
// downslope direction clockwise from north) to every point. The local
// surface is a least-squares plane over the point and its k nearest
// neighbors in planar distance. Neighborhoods too small or too
// degenerate to fit a plane yield slope 0, never an error, so minimal
// datasets still classify.
func ComputeSlopes(c *model.Collection, k int) {
	pts := c.Points
	for i := range pts {
		nb := nearestNeighbors(pts, i, k)
		slope, aspect := fitPlaneSlope(pts, nb)
		pts[i].Slope = slope
		pts[i].Aspect = aspect
	}
}

// nearestNeighbors returns the indices of the k points closest to pts[i]
// plus i itself, ordered by distance.
func nearestNeighbors(pts []model.Point, i, k int) []int {
	type cand struct {
		idx int
		d2  float64
	}
	cands := make([]cand, 0, len(pts)-1)
	xi, yi := pts[i].X(), pts[i].Y()
	for j := range pts {
		if j == i {
			continue
		}
		dx := pts[j].X() - xi
		dy := pts[j].Y() - yi
		cands = append(cands, cand{idx: j, d2: dx*dx + dy*dy})
	}
	sort.Slice(cands, func(a, b int) bool {
		if cands[a].d2 != cands[b].d2 {
			return cands[a].d2 < cands[b].d2
		}
		return cands[a].idx < cands[b].idx
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	out := make([]int, 0, len(cands)+1)
	out = append(out, i)
	for _, cd := range cands {
		out = append(out, cd.idx)
	}
	return out
}

// fitPlaneSlope fits z = c0 + c1*x + c2*y over the neighborhood and
// derives slope magnitude and aspect from the gradient (c1, c2).
// Coordinates are shifted to the first point to keep the system well
// conditioned for large UTM values.
func fitPlaneSlope(pts []model.Point, nb []int) (slopeDeg, aspectDeg float64) {
	if len(nb) < 3 {
		return lineSlope(pts, nb)
	}
	nx := make([]float64, len(nb))
	ny := make([]float64, len(nb))
	for i, idx := range nb {
		nx[i] = pts[idx].X()
		ny[i] = pts[idx].Y()
	}
	if collinear(nx, ny) {
		// transect-style samples still have a usable along-track gradient
		return lineSlope(pts, nb)
	}
	x0, y0 := pts[nb[0]].X(), pts[nb[0]].Y()

	rows := len(nb)
	A := mat.NewDense(rows, 3, nil)
	b := mat.NewVecDense(rows, nil)
	for r, idx := range nb {
		A.Set(r, 0, 1)
		A.Set(r, 1, pts[idx].X()-x0)
		A.Set(r, 2, pts[idx].Y()-y0)
		b.SetVec(r, pts[idx].Elevation)
	}

	var coef mat.VecDense
	if err := coef.SolveVec(A, b); err != nil {
		return lineSlope(pts, nb)
	}
	gx, gy := coef.AtVec(1), coef.AtVec(2)
	if math.IsNaN(gx) || math.IsNaN(gy) {
		return 0, 0
	}

	grad := math.Hypot(gx, gy)
	if grad < gradEpsilon {
		// solver noise on flat terrain, not a real gradient
		return 0, 0
	}
	slopeDeg = math.Atan(grad) * 180 / math.Pi
	// downslope bearing, clockwise from north
	aspectDeg = math.Mod(math.Atan2(-gx, -gy)*180/math.Pi+360, 360)
	return slopeDeg, aspectDeg
}

// lineSlope regresses elevation against distance along the dominant
// direction of the neighborhood. All-coincident neighborhoods give 0.
func lineSlope(pts []model.Point, nb []int) (slopeDeg, aspectDeg float64) {
	x0, y0 := pts[nb[0]].X(), pts[nb[0]].Y()

	// direction to the farthest neighbor defines the track
	var dx, dy, far float64
	for _, idx := range nb[1:] {
		ddx := pts[idx].X() - x0
		ddy := pts[idx].Y() - y0
		if d2 := ddx*ddx + ddy*ddy; d2 > far {
			far, dx, dy = d2, ddx, ddy
		}
	}
	if far == 0 {
		return 0, 0
	}
	norm := math.Sqrt(far)
	ux, uy := dx/norm, dy/norm

	ds := make([]float64, len(nb))
	zs := make([]float64, len(nb))
	for i, idx := range nb {
		ds[i] = (pts[idx].X()-x0)*ux + (pts[idx].Y()-y0)*uy
		zs[i] = pts[idx].Elevation
	}
	_, g := stat.LinearRegression(ds, zs, nil, false)
	if math.IsNaN(g) || math.Abs(g) < gradEpsilon {
		return 0, 0
	}
	slopeDeg = math.Atan(math.Abs(g)) * 180 / math.Pi
	// downslope points opposite the elevation increase
	bx, by := ux, uy
	if g > 0 {
		bx, by = -ux, -uy
	}
	aspectDeg = math.Mod(math.Atan2(bx, by)*180/math.Pi+360, 360)
	return slopeDeg, aspectDeg
}
