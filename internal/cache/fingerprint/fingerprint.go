// Package fingerprint derives content-addressed cache keys for
// processed datasets. Two uploads with identical rows and identical
// options map to the same key, so cached results never go stale and
// need no invalidation.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

// Key hashes the collection's rows and the pipeline options into a
// cache key. The dataset id is deliberately excluded: it is per-upload
// noise, not content.
func Key(c model.Collection, opts model.Options) string {
	d := xxhash.New()

	var buf [8]byte
	writeF := func(v float64) {
		if v == 0 {
			v = 0 // fold -0 into 0
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	writeI := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = d.Write(buf[:])
	}

	for _, p := range c.Points {
		writeI(int64(p.Kind))
		writeF(p.Easting)
		writeF(p.Northing)
		writeF(p.Lat)
		writeF(p.Lon)
		writeF(p.Elevation)
		writeF(p.Distance)
	}

	writeI(int64(opts.GridSize))
	_, _ = d.WriteString(string(opts.Interp))
	writeF(opts.IDWPower)
	writeI(int64(opts.SlopeNeighbors))
	writeI(opts.ClusterSeed)
	writeI(int64(opts.ClusterMaxIter))
	writeI(int64(opts.UTMZone))
	if opts.UTMSouth {
		writeI(1)
	} else {
		writeI(0)
	}

	return fmt.Sprintf("terrain:%d:%016x", c.Len(), d.Sum64())
}
