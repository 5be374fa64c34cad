package clean

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// direction returns the heading from a to b in radians, counter-clockwise
// from the x axis.
func direction(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// angleDiff returns the absolute smallest difference of two headings, in [0, π].
func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// relativeAngle returns the signed turn from heading from to heading to, in [-π, π).
func relativeAngle(from, to float64) float64 {
	r := math.Mod(to-from+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

func distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}
