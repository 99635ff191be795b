// Package pose tracks where a differential-drive robot has got to from the
// distance each wheel has rolled.
package pose

import (
	"fmt"
	"math"
)

type Pose struct {
	XMM, YMM float64
	Heading  Heading
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.0fmm, %.0fmm) %.1f°", p.XMM, p.YMM, p.Heading.Degrees())
}

// Advance moves the pose by the given wheel travel.  Negative travel is
// backwards.  trackMM is the distance between the wheel contact points.
func (p Pose) Advance(leftMM, rightMM, trackMM float64) Pose {
	dist := (leftMM + rightMM) / 2
	dTheta := (rightMM - leftMM) / trackMM
	mid := p.Heading.Radians() + dTheta/2
	return Pose{
		XMM:     p.XMM + dist*math.Cos(mid),
		YMM:     p.YMM + dist*math.Sin(mid),
		Heading: p.Heading.Turn(dTheta * 180 / math.Pi),
	}
}
