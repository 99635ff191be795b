package pose

import "math"

// Heading is an angle in degrees, stored in the range (-180, 180].
// Positive is anticlockwise, i.e. a left turn.
type Heading struct {
	deg float64
}

func (h Heading) Turn(delta float64) Heading {
	return HeadingFromDegrees(h.deg + delta)
}

// Since returns the signed turn that takes other to h, in (-180, 180].
func (h Heading) Since(other Heading) float64 {
	return HeadingFromDegrees(h.deg - other.deg).deg
}

func (h Heading) Degrees() float64 {
	return h.deg
}

func (h Heading) Radians() float64 {
	return h.deg * math.Pi / 180
}

// HeadingFromDegrees folds an angle of any magnitude into range.
func HeadingFromDegrees(f float64) Heading {
	d := math.Mod(f, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return Heading{d}
}
