// pkg/physics/heading.go
package physics

import "math"

// Headings use the compass convention: degrees in [0, 360), 0 = north (+Y),
// increasing clockwise. The trigonometric convention (0 = east/+X, increasing
// counter-clockwise) relates to it by theta = 90 - heading.

// NormalizeHeading wraps an angle in degrees into the half-open range [0, 360).
func NormalizeHeading(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// FromHeading returns the displacement of moving the given distance along a
// compass heading. For heading 0 the displacement is (0, magnitude); for
// heading 90 it is (magnitude, 0).
func FromHeading(headingDeg, magnitude float64) Vector2D {
	rad := headingDeg * math.Pi / 180
	return Vector2D{
		X: magnitude * math.Sin(rad),
		Y: magnitude * math.Cos(rad),
	}
}

// Bearing returns the compass bearing in [0, 360) from one point toward
// another, computed with a four-quadrant arctangent and remapped from the
// trigonometric convention. A target due north of the origin bears 0, due
// east bears 90. The bearing is undefined when the points coincide; atan2
// then yields 0, which maps to a bearing of 90.
func Bearing(from, to Vector2D) float64 {
	theta := math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi
	return NormalizeHeading(90 - theta)
}

// AngleDiff returns the signed shortest rotation, in degrees, that carries
// the heading from onto the heading to, normalized to (-180, 180]. A positive
// result means clockwise.
func AngleDiff(from, to float64) float64 {
	diff := math.Mod(to-from, 360)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}
