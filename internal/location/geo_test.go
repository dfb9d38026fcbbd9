package location

import (
    "math"
    "testing"
)

func TestHaversineOneDegreeAtEquator(t *testing.T) {
    got := HaversineKm(0, 0, 0, 1)
    if math.Abs(got-111.19) > 0.5 {
        t.Fatalf("0,0 -> 0,1: got %.2f km, want ~111.19", got)
    }
}

func TestHaversineZeroDistance(t *testing.T) {
    if got := HaversineKm(4.6097, -74.0817, 4.6097, -74.0817); got != 0 {
        t.Fatalf("same point: got %v, want 0", got)
    }
}

func TestHaversineSymmetric(t *testing.T) {
    a := HaversineKm(40.7128, -74.0060, 51.5074, -0.1278)
    b := HaversineKm(51.5074, -0.1278, 40.7128, -74.0060)
    if math.Abs(a-b) > 1e-9 {
        t.Fatalf("not symmetric: %v vs %v", a, b)
    }
    // NYC -> London is about 5570 km
    if a < 5500 || a > 5640 {
        t.Fatalf("NYC->London: got %.1f km", a)
    }
}
