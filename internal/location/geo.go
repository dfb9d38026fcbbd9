package location

import "math"

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance in kilometers between two
// points given as latitude/longitude degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
    dLat := toRad(lat2 - lat1)
    dLng := toRad(lng2 - lng1)
    rLat1 := toRad(lat1)
    rLat2 := toRad(lat2)

    a := math.Sin(dLat/2)*math.Sin(dLat/2) +
        math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(rLat1)*math.Cos(rLat2)
    c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

    return earthRadiusKm * c
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
