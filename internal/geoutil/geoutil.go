// Package geoutil provides the approximate "land visible within radius"
// sampler used for celestial-navigation reporting decisions.
package geoutil

import (
	"math"

	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

const (
	minRadius               = 30.0
	maxRadius               = 31000.0
	maxSamplePointsOnCircle = 32

	approxMetresInGeoDeg = 60.0 * 1852.0
)

// IsApproximatelyNearVisibleLand reports whether land is likely visible
// within the given radius (metres) of the position. The position itself
// being on land short-circuits to true; otherwise concentric sample
// circles of doubling radius are probed out to the visibility limit.
func IsApproximatelyNearVisibleLand(gi env.GeoInfo, pos geo.Pos, visibility float64) bool {
	if !gi.IsWater(pos) {
		return true
	}

	n := 4
	for r := minRadius; r <= visibility && r <= maxRadius; r *= 2.0 {
		if isLandFoundOnCircle(gi, pos, r, n) {
			return true
		}

		if n < maxSamplePointsOnCircle {
			n *= 2
		}
	}

	if visibility > minRadius {
		// Check one last circle at the outer limit of visibility.
		if isLandFoundOnCircle(gi, pos, visibility, n) {
			return true
		}
	}

	return false
}

// isLandFoundOnCircle looks around at n points on an approximate circle of
// radius r metres. An equirectangular approximation is close enough here
// and runs much faster than proper geodesics.
func isLandFoundOnCircle(gi env.GeoInfo, pos geo.Pos, r float64, n int) bool {
	cosLat := math.Cos(pos.Lat * math.Pi / 180.0)
	rGeoDeg := r / approxMetresInGeoDeg
	rGeoDegCosLat := r / (approxMetresInGeoDeg * cosLat)
	radsPerPoint := 2.0 * math.Pi / float64(n)

	for i := 0; i < n; i++ {
		lat := pos.Lat + rGeoDeg*math.Cos(float64(i)*radsPerPoint)
		lon := pos.Lon + rGeoDegCosLat*math.Sin(float64(i)*radsPerPoint)

		if lat > 90.0 {
			lat = 90.0
		} else if lat < -90.0 {
			lat = -90.0
		}

		lonModified := false
		if lon >= 180.0 {
			lon -= 360.0
			lonModified = true
		} else if lon < -180.0 {
			lon += 360.0
			lonModified = true
		}

		// Very near a pole the computed longitude can be wildly out of
		// range even after one wrap. Settle for a coarse answer there:
		// open water around the north pole, land around the south.
		if lonModified && (lon < -180.0 || lon >= 180.0) {
			return pos.Lat < 0
		}

		if !gi.IsWater(geo.Pos{Lat: lat, Lon: lon}) {
			return true
		}
	}

	return false
}
