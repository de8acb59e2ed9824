package geo

import (
	"math"
	"testing"
)

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 40.7128, lon2: -74.0060,
			want: 0, tolerance: 0.001,
		},
		{
			name: "new york to philadelphia",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 39.9526, lon2: -75.1652,
			want: 80.6, tolerance: 1.0,
		},
		{
			name: "new york to los angeles",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 34.0522, lon2: -118.2437,
			want: 2445, tolerance: 10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceMiles(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Errorf("DistanceMiles = %v, want %v +/- %v", got, tc.want, tc.tolerance)
			}
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{name: "valid", lat: 40.7, lon: -74.0, want: true},
		{name: "lat too high", lat: 90.1, lon: 0, want: false},
		{name: "lat too low", lat: -90.1, lon: 0, want: false},
		{name: "lon too high", lat: 0, lon: 180.1, want: false},
		{name: "lon too low", lat: 0, lon: -180.1, want: false},
		{name: "null island rejected", lat: 0, lon: 0, want: false},
		{name: "boundary ok", lat: 90, lon: -180, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidCoordinates(tc.lat, tc.lon); got != tc.want {
				t.Errorf("ValidCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}

func TestIsSentinel(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{name: "exact zero", lat: 0, lon: 0, want: true},
		{name: "near zero", lat: 0.05, lon: -0.09, want: true},
		{name: "one component large", lat: 0.05, lon: 1.0, want: false},
		{name: "real location", lat: 40.7, lon: -74.0, want: false},
		{name: "threshold itself is not sentinel", lat: 0.1, lon: 0.1, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSentinel(tc.lat, tc.lon); got != tc.want {
				t.Errorf("IsSentinel(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}
