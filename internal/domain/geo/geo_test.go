package geo

import (
	"math"
	"testing"
)

func TestDistanceMiles(t *testing.T) {
	boston := Coordinate{Latitude: 42.3601, Longitude: -71.0589}
	nyc := Coordinate{Latitude: 40.7128, Longitude: -74.0060}

	got := DistanceMiles(boston, nyc)
	// Great-circle Boston to New York is roughly 190 miles.
	if got < 185 || got > 195 {
		t.Errorf("DistanceMiles(boston, nyc) = %v, want ~190", got)
	}
}

func TestDistanceMilesZero(t *testing.T) {
	p := Coordinate{Latitude: 42.3601, Longitude: -71.0589}
	if d := DistanceMiles(p, p); d != 0 {
		t.Errorf("DistanceMiles(p, p) = %v, want 0", d)
	}
}

func TestDistanceMilesSymmetric(t *testing.T) {
	a := Coordinate{Latitude: 34.0522, Longitude: -118.2437}
	b := Coordinate{Latitude: 41.8781, Longitude: -87.6298}
	if d1, d2 := DistanceMiles(a, b), DistanceMiles(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestBoundingBoxEnclosesCircle(t *testing.T) {
	origin := Coordinate{Latitude: 42.3601, Longitude: -71.0589}
	const radius = 50.0

	minLat, maxLat, minLon, maxLon := BoundingBox(origin, radius)

	if minLat >= origin.Latitude || maxLat <= origin.Latitude {
		t.Errorf("latitude bounds [%v, %v] do not bracket origin %v", minLat, maxLat, origin.Latitude)
	}
	if minLon >= origin.Longitude || maxLon <= origin.Longitude {
		t.Errorf("longitude bounds [%v, %v] do not bracket origin %v", minLon, maxLon, origin.Longitude)
	}

	// Points on the circle along each axis must fall inside the box.
	north := Coordinate{Latitude: origin.Latitude + radius/69.0, Longitude: origin.Longitude}
	if north.Latitude > maxLat {
		t.Errorf("northern circle point %v outside box max lat %v", north.Latitude, maxLat)
	}
	if d := DistanceMiles(origin, Coordinate{Latitude: maxLat, Longitude: origin.Longitude}); d < radius-1 {
		t.Errorf("box edge only %v miles away, circle of %v not enclosed", d, radius)
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	origin := Coordinate{Latitude: 89.9, Longitude: 0}
	_, _, minLon, maxLon := BoundingBox(origin, 50)
	if math.IsInf(minLon, 0) || math.IsInf(maxLon, 0) || math.IsNaN(minLon) || math.IsNaN(maxLon) {
		t.Errorf("longitude bounds near the pole must stay finite, got [%v, %v]", minLon, maxLon)
	}
}

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want bool
	}{
		{Coordinate{42.36, -71.06}, true},
		{Coordinate{90, 180}, true},
		{Coordinate{-90, -180}, true},
		{Coordinate{91, 0}, false},
		{Coordinate{0, 181}, false},
		{Coordinate{-91, -181}, false},
	}
	for _, tt := range tests {
		if got := ValidCoordinate(tt.c); got != tt.want {
			t.Errorf("ValidCoordinate(%+v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}
