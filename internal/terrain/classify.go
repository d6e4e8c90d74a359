package terrain

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

// Classify partitions the collection into Swale and Trench by running
// two-centroid k-means over z-score scaled (elevation, slope) feature
// vectors. Initialization is seeded so identical input and options give
// identical labels. After convergence the cluster with the lower mean
// elevation becomes Swale; the raw cluster index never leaks into
// output.
//
// Collections the clustering cannot separate (all feature vectors
// identical, or fewer than 2 points) fall back to a deterministic
// elevation-median split: elevation at or below the median is Swale.
func Classify(c *model.Collection, opts model.Options) error {
	n := c.Len()
	if n == 0 {
		return Insufficientf("no points to classify")
	}

	feats := scaledFeatures(c.Points)

	assign, ok := twoMeans(feats, opts.ClusterSeed, opts.ClusterMaxIter)
	if !ok {
		medianSplit(c.Points)
		return nil
	}

	// relabel by relative elevation
	var sum [2]float64
	var cnt [2]int
	for i, a := range assign {
		sum[a] += c.Points[i].Elevation
		cnt[a]++
	}
	if cnt[0] == 0 || cnt[1] == 0 {
		medianSplit(c.Points)
		return nil
	}
	swale := 0
	if sum[1]/float64(cnt[1]) < sum[0]/float64(cnt[0]) {
		swale = 1
	}
	for i, a := range assign {
		if a == swale {
			c.Points[i].Class = model.ClassSwale
		} else {
			c.Points[i].Class = model.ClassTrench
		}
	}
	return nil
}

// scaledFeatures builds z-score scaled (elevation, slope) vectors so
// elevation magnitude does not drown out slope in the distance metric.
func scaledFeatures(pts []model.Point) [][2]float64 {
	elev := make([]float64, len(pts))
	slope := make([]float64, len(pts))
	for i, p := range pts {
		elev[i] = p.Elevation
		slope[i] = p.Slope
	}
	em, es := stat.MeanStdDev(elev, nil)
	sm, ss := stat.MeanStdDev(slope, nil)

	out := make([][2]float64, len(pts))
	for i := range pts {
		out[i][0] = zscore(elev[i], em, es)
		out[i][1] = zscore(slope[i], sm, ss)
	}
	return out
}

func zscore(v, mean, std float64) float64 {
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return (v - mean) / std
}

// twoMeans runs seeded 2-means and returns per-point cluster indices.
// ok is false when no two distinct feature vectors exist to seed
// centroids from.
func twoMeans(feats [][2]float64, seed int64, maxIter int) (assign []int, ok bool) {
	n := len(feats)
	if n < 2 {
		return nil, false
	}

	rng := rand.New(rand.NewSource(seed))

	// first centroid random, second the first vector distinct from it
	c0 := feats[rng.Intn(n)]
	c1 := c0
	found := false
	start := rng.Intn(n)
	for off := 0; off < n; off++ {
		v := feats[(start+off)%n]
		if v != c0 {
			c1 = v
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	cent := [2][2]float64{c0, c1}
	assign = make([]int, n)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, f := range feats {
			a := 0
			if dist2(f, cent[1]) < dist2(f, cent[0]) {
				a = 1
			}
			if assign[i] != a {
				assign[i] = a
				changed = true
			}
		}

		var sum [2][2]float64
		var cnt [2]int
		for i, f := range feats {
			a := assign[i]
			sum[a][0] += f[0]
			sum[a][1] += f[1]
			cnt[a]++
		}
		if cnt[0] == 0 || cnt[1] == 0 {
			return nil, false
		}
		for k := range cent {
			cent[k][0] = sum[k][0] / float64(cnt[k])
			cent[k][1] = sum[k][1] / float64(cnt[k])
		}
		if !changed && iter > 0 {
			break
		}
	}
	return assign, true
}

func dist2(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}

// medianSplit is the documented fallback: points at or below the median
// elevation become Swale, the rest Trench.
func medianSplit(pts []model.Point) {
	elev := make([]float64, len(pts))
	for i, p := range pts {
		elev[i] = p.Elevation
	}
	sorted := append([]float64(nil), elev...)
	sort.Float64s(sorted)
	med := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	for i := range pts {
		if elev[i] <= med {
			pts[i].Class = model.ClassSwale
		} else {
			pts[i].Class = model.ClassTrench
		}
	}
}
