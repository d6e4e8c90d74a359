package terrain

import (
	"github.com/puneet-chandna/water-brakes/internal/geo"
	"github.com/puneet-chandna/water-brakes/internal/model"
)

// Normalize enriches every point with WGS84 latitude/longitude.
// Geographic input passes through after range validation; projected
// input goes through the UTM transform using the configured zone, or
// the inferred one when Options.UTMZone is zero. The collection is
// modified in place and the zone actually used is returned.
func Normalize(c *model.Collection, opts model.Options) (geo.Zone, error) {
	var zone geo.Zone
	if opts.UTMZone > 0 {
		zone = geo.Zone{Number: opts.UTMZone, South: opts.UTMSouth}
	} else {
		var sum float64
		var projected int
		for _, p := range c.Points {
			if p.Kind == model.CoordProjected {
				sum += p.Northing
				projected++
			}
		}
		if projected > 0 {
			zone = geo.GuessZone(sum / float64(projected))
		}
	}

	for i := range c.Points {
		p := &c.Points[i]
		switch p.Kind {
		case model.CoordGeographic:
			if !geo.ValidLatLon(p.Lat, p.Lon) {
				return zone, InvalidCoordinatef(i, "lat=%g lon=%g outside [-90,90]/[-180,180]", p.Lat, p.Lon)
			}
		case model.CoordProjected:
			lat, lon := geo.ToLatLon(p.Easting, p.Northing, zone)
			if !geo.ValidLatLon(lat, lon) {
				return zone, InvalidCoordinatef(i, "easting=%g northing=%g does not project into zone %s", p.Easting, p.Northing, zone)
			}
			p.Lat, p.Lon = lat, lon
		default:
			return zone, Malformedf(i, "point carries neither projected nor geographic coordinates")
		}
	}
	return zone, nil
}
