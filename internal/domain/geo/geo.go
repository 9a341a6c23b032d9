package geo

import "math"

// EarthRadiusMiles is the mean radius of Earth used for Haversine distance.
const EarthRadiusMiles = 3958.8

// Coordinate is a zip-centroid position in degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// DistanceMiles returns the great-circle distance in miles between two points.
func DistanceMiles(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// BoundingBox returns the lat/lon bounds of a square enclosing the circle of
// the given radius around the origin. Used as a cheap SQL prefilter before the
// exact Haversine check.
func BoundingBox(origin Coordinate, radiusMiles float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusMiles / 69.0 // ~69 miles per degree of latitude
	minLat = origin.Latitude - latDelta
	maxLat = origin.Latitude + latDelta

	// Longitude degrees shrink with latitude. Clamp near the poles where the
	// cosine collapses.
	cosLat := math.Cos(origin.Latitude * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := radiusMiles / (69.17 * cosLat)
	minLon = origin.Longitude - lonDelta
	maxLon = origin.Longitude + lonDelta
	return minLat, maxLat, minLon, maxLon
}

// ValidCoordinate checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidCoordinate(c Coordinate) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}
