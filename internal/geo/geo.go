// Package geo provides the great-circle math used by signal resolution.
package geo

import "math"

const (
	earthRadiusM = 6371000
	metersToNM   = 0.000539957
)

func rad(deg float64) float64 { return deg * math.Pi / 180 }
func deg(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceNM returns the great-circle distance in nautical miles between two
// lat/long coordinates, using the haversine formulation.
// https://www.movable-type.co.uk/scripts/latlong.html
func DistanceNM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := rad(lat1), rad(lat2)
	dPhi := rad(lat2 - lat1)
	dLambda := rad(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c * metersToNM
}

// InitialBearing returns the initial great-circle bearing from the first
// coordinate to the second, measured clockwise from true north and
// normalized to [0, 360).
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := rad(lat1), rad(lat2)
	dLambda := rad(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	return NormalizeHeading(deg(math.Atan2(y, x)))
}

// NormalizeHeading wraps a heading in degrees into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
