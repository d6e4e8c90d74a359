// Package summary buckets classified points into H3 cells for map
// overlays.
package summary

import (
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

// Cells aggregates the classified collection at the given H3
// resolution: per-cell Swale/Trench counts and mean elevation. Output
// is sorted by cell id so identical input gives identical output.
func Cells(pts []model.Point, res int) ([]model.CellStat, error) {
	if res < 0 || res > 15 {
		return nil, fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}

	type agg struct {
		swale, trench int
		elevSum       float64
		n             int
	}
	byCell := make(map[string]*agg)

	for i, p := range pts {
		cell, err := h3.LatLngToCell(h3.LatLng{Lat: p.Lat, Lng: p.Lon}, res)
		if err != nil {
			return nil, fmt.Errorf("point %d: h3 index: %w", i, err)
		}
		id := cell.String()
		a := byCell[id]
		if a == nil {
			a = &agg{}
			byCell[id] = a
		}
		switch p.Class {
		case model.ClassSwale:
			a.swale++
		case model.ClassTrench:
			a.trench++
		}
		a.elevSum += p.Elevation
		a.n++
	}

	out := make([]model.CellStat, 0, len(byCell))
	for id, a := range byCell {
		out = append(out, model.CellStat{
			Cell:          id,
			Swale:         a.swale,
			Trench:        a.trench,
			MeanElevation: a.elevSum / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out, nil
}
