// Package geo provides great-circle distance on a spherical Earth.
package geo

import "math"

// EarthRadiusKM is the mean Earth radius used for all distances.
const EarthRadiusKM = 6371.0

// DistanceKM returns the haversine great-circle distance in kilometers between
// two points given in degrees. atan2 keeps it stable for equal and antipodal
// points.
func DistanceKM(latA, lonA, latB, lonB float64) float64 {
	phi1 := radians(latA)
	phi2 := radians(latB)
	dPhi := radians(latB - latA)
	dLambda := radians(lonB - lonA)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// Rounding can push a a hair outside [0,1] near the antipode.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
