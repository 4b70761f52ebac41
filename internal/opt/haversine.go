// Package opt holds the routing heuristics used to reorder a day's stops.
package opt

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates in
// kilometers, via the haversine formula. Symmetric up to floating-point
// rounding.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
