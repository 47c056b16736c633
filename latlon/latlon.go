package latlon

import "math"

const π = math.Pi

// R is the mean earth radius in meters.
const R = 6371e3

type LatLonInterface interface {
	DistanceTo(from, to LatLon) float64
	BearingTo(from, to LatLon) float64
	DistanceAndBearingTo(from, to LatLon) (float64, float64)
	Destination(from LatLon, bearing float64, distance float64) LatLon
	Intermediate(from, to LatLon, fraction float64) LatLon
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Normalized returns the point with its longitude wrapped into [-180, 180).
func (p LatLon) Normalized() LatLon {
	return LatLon{Lat: p.Lat, Lon: NormalizeLon(p.Lon)}
}

// EqualsWithin compares two points component-wise. Points are never compared
// exactly.
func (p LatLon) EqualsWithin(q LatLon, eps float64) bool {
	return math.Abs(p.Lat-q.Lat) <= eps && math.Abs(NormalizeLon(p.Lon)-NormalizeLon(q.Lon)) <= eps
}

// NormalizeLon wraps a longitude into [-180, 180).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180.0, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon - 180.0
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d1 := d + 360.0
	d2 := d1 - float64(int(d1/360.0)*360)
	return d2
}

// Wrap360 wraps a bearing into [0, 360).
func Wrap360(d float64) float64 {
	return wrap360(d)
}
