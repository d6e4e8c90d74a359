// Package geo converts between UTM and WGS84 geographic coordinates.
//
// The transform is the Krüger flattening series carried to n^3, which
// keeps the forward/inverse round trip well under a millimeter inside a
// zone. Survey tools upstream of this service default to UTM zone 44N
// when the uploader does not say otherwise, so DefaultZone mirrors that.
package geo

import (
	"fmt"
	"math"
)

// WGS84 ellipsoid and UTM projection constants.
const (
	a  = 6378137.0
	f  = 1 / 298.257223563
	k0 = 0.9996

	falseEasting  = 500000.0
	falseNorthing = 10000000.0 // southern hemisphere only

	// DefaultZone is applied when no zone is configured and none can be
	// inferred from the data.
	DefaultZone = 44
)

var (
	n  = f / (2 - f)
	n2 = n * n
	n3 = n2 * n

	// rectifying radius
	bigA = a / (1 + n) * (1 + n2/4 + n2*n2/64)

	alpha = [3]float64{
		n/2 - 2*n2/3 + 5*n3/16,
		13*n2/48 - 3*n3/5,
		61 * n3 / 240,
	}
	beta = [3]float64{
		n/2 - 2*n2/3 + 37*n3/96,
		n2/48 + n3/15,
		17 * n3 / 480,
	}
	delta = [3]float64{
		2*n - 2*n2/3 - 2*n3,
		7*n2/3 - 8*n3/5,
		56 * n3 / 15,
	}
)

// Zone identifies a UTM zone and hemisphere.
type Zone struct {
	Number int
	South  bool
}

func (z Zone) String() string {
	h := "N"
	if z.South {
		h = "S"
	}
	return fmt.Sprintf("%d%s", z.Number, h)
}

// EPSG returns the WGS84/UTM EPSG code for the zone (326xx north,
// 327xx south).
func (z Zone) EPSG() int {
	if z.South {
		return 32700 + z.Number
	}
	return 32600 + z.Number
}

func (z Zone) centralMeridian() float64 {
	return float64((z.Number-1)*6-180) + 3
}

// ZoneForLongitude returns the UTM zone containing the longitude.
func ZoneForLongitude(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// GuessZone applies the upstream heuristic for projected data with no
// declared CRS: the zone cannot be recovered from easting/northing, so
// it falls back to DefaultZone; a mean northing past the false-northing
// bound suggests the southern hemisphere.
func GuessZone(meanNorthing float64) Zone {
	return Zone{Number: DefaultZone, South: meanNorthing > falseNorthing}
}

// ToLatLon converts UTM easting/northing in the given zone to
// geographic latitude/longitude in degrees.
func ToLatLon(easting, northing float64, zone Zone) (lat, lon float64) {
	y := northing
	if zone.South {
		y -= falseNorthing
	}
	xi := y / (k0 * bigA)
	eta := (easting - falseEasting) / (k0 * bigA)

	xiP, etaP := xi, eta
	for j := range beta {
		m := float64(2 * (j + 1))
		xiP -= beta[j] * math.Sin(m*xi) * math.Cosh(m*eta)
		etaP -= beta[j] * math.Cos(m*xi) * math.Sinh(m*eta)
	}

	chi := math.Asin(math.Sin(xiP) / math.Cosh(etaP))
	phi := chi
	for j := range delta {
		m := float64(2 * (j + 1))
		phi += delta[j] * math.Sin(m*chi)
	}

	lat = phi * 180 / math.Pi
	lon = zone.centralMeridian() + math.Atan2(math.Sinh(etaP), math.Cos(xiP))*180/math.Pi
	return lat, lon
}

// FromLatLon converts geographic latitude/longitude in degrees to UTM
// easting/northing in the given zone.
func FromLatLon(lat, lon float64, zone Zone) (easting, northing float64) {
	phi := lat * math.Pi / 180
	lam := (lon - zone.centralMeridian()) * math.Pi / 180

	sn := 2 * math.Sqrt(n) / (1 + n)
	t := math.Sinh(math.Atanh(math.Sin(phi)) - sn*math.Atanh(sn*math.Sin(phi)))

	xiP := math.Atan2(t, math.Cos(lam))
	etaP := math.Atanh(math.Sin(lam) / math.Sqrt(1+t*t))

	xi, eta := xiP, etaP
	for j := range alpha {
		m := float64(2 * (j + 1))
		xi += alpha[j] * math.Sin(m*xiP) * math.Cosh(m*etaP)
		eta += alpha[j] * math.Cos(m*xiP) * math.Sinh(m*etaP)
	}

	easting = falseEasting + k0*bigA*eta
	northing = k0 * bigA * xi
	if zone.South {
		northing += falseNorthing
	}
	return easting, northing
}

// ValidLatLon reports whether the pair is inside geographic range.
func ValidLatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
