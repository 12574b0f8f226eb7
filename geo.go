package racedash

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Distance returns the haversine distance between two points in kilometers.
func Distance(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// DistanceM returns the haversine distance between two points in meters.
func DistanceM(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// Bearing returns the initial bearing from a to b in degrees, normalized
// to 0-360 with North at 0 and East at 90.
func Bearing(a, b orb.Point) float64 {
	return math.Mod(geo.Bearing(a, b)+360, 360)
}
