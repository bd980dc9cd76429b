package matching

import (
	"fmt"
	"math"

	"go-matchmaking-backend/internal/domain"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// kmPerDegreeLat: one degree of latitude spans roughly 111 km everywhere.
const kmPerDegreeLat = 111.0

// minCosLat guards the longitude-delta divisor near the poles.
const minCosLat = 1e-6

// HaversineDistance returns the great-circle distance in kilometers between
// two points given in degrees. Symmetric, and zero for identical points.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ComputeBoundingBox builds a conservative superset of the circle of
// radiusKm around the center: it may admit points the exact distance check
// later rejects, but never excludes a point inside the circle.
func ComputeBoundingBox(lat, lon, radiusKm float64) (domain.BoundingBox, error) {
	if radiusKm < 0 {
		return domain.BoundingBox{}, fmt.Errorf("bounding box: negative radius %v", radiusKm)
	}

	latDelta := radiusKm / kmPerDegreeLat

	// One degree of longitude shrinks with cos(latitude); clamp the divisor
	// so the box degenerates to the full longitude range near the poles
	// instead of dividing by zero.
	cosLat := math.Abs(math.Cos(lat * math.Pi / 180))
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	lonDelta := radiusKm / (kmPerDegreeLat * cosLat)

	return domain.BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}, nil
}
