// Package geo provides the small amount of geospatial math the search and
// approval paths need: great-circle distance in miles and coordinate
// validation.
package geo

import "math"

const earthRadiusMiles = 3958.8

// sentinelThreshold marks the "default/unset" coordinate pair: callers near
// (0,0) have not supplied a real location and distance filtering is skipped.
const sentinelThreshold = 0.1

// DistanceMiles returns the haversine great-circle distance between two
// points, in miles.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// ValidCoordinates reports whether a point is a usable show location:
// within range and not the (0,0) "unset" sentinel.
func ValidCoordinates(lat, lon float64) bool {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	if lat == 0 && lon == 0 {
		return false
	}
	return true
}

// IsSentinel reports whether a query origin should disable distance
// filtering entirely: both components under 0.1 in absolute value.
func IsSentinel(lat, lon float64) bool {
	return math.Abs(lat) < sentinelThreshold && math.Abs(lon) < sentinelThreshold
}
