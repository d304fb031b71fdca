package util

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// Offset returns the point reached by travelling distanceMeters from
// (lat, lng) along the given compass bearing in degrees.
func Offset(lat, lng, distanceMeters, bearingDegrees float64) [2]float64 {
	angularDist := distanceMeters / earthRadiusMeters
	bearing := bearingDegrees * math.Pi / 180.0

	lat1 := lat * math.Pi / 180.0
	lng1 := lng * math.Pi / 180.0

	sinLat2 := math.Sin(lat1)*math.Cos(angularDist) +
		math.Cos(lat1)*math.Sin(angularDist)*math.Cos(bearing)
	lat2 := math.Asin(sinLat2)

	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angularDist)*math.Cos(lat1),
		math.Cos(angularDist)-math.Sin(lat1)*sinLat2,
	)

	// Normalize longitude to [-180, 180]
	lng2Deg := math.Mod(lng2*180.0/math.Pi+540.0, 360.0) - 180.0

	return [2]float64{lat2 * 180.0 / math.Pi, lng2Deg}
}

// Heading returns the initial compass bearing in degrees from the first
// point to the second, in the range [-180, 180] (0 = north, 90 = east).
func Heading(fromLat, fromLng, toLat, toLng float64) float64 {
	lat1 := fromLat * math.Pi / 180.0
	lat2 := toLat * math.Pi / 180.0
	deltaLng := (toLng - fromLng) * math.Pi / 180.0

	y := math.Sin(deltaLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLng)

	return math.Atan2(y, x) * 180.0 / math.Pi
}

// DistanceMeters returns the great-circle distance in meters between two points
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert coordinates from degrees to S2 points
	point1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lng1))
	point2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lng2))

	// Calculate angle between points
	angle := s1.Angle(s2.ChordAngleBetweenPoints(point1, point2).Angle())

	return angle.Radians() * earthRadiusMeters
}
