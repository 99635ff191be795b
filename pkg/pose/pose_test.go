package pose

import (
	"math"
	"testing"
)

func TestHeadingFromDegrees(t *testing.T) {
	expectHeading(t, 0, 0)
	expectHeading(t, 179, 179)
	expectHeading(t, 180, 180)
	expectHeading(t, -180, 180)
	expectHeading(t, 181, -179)
	expectHeading(t, 360, 0)
	expectHeading(t, -450, -90)
	expectHeading(t, 720+90, 90)
}

func expectHeading(t *testing.T, in, expected float64) {
	t.Helper()
	if h := HeadingFromDegrees(in).Degrees(); h != expected {
		t.Errorf("HeadingFromDegrees(%f) = %f, expected %f", in, h, expected)
	}
}

func TestSince(t *testing.T) {
	a := HeadingFromDegrees(170)
	b := a.Turn(20)
	if b.Degrees() != -170 {
		t.Fatalf("Expected wrap to -170, got %f", b.Degrees())
	}
	if d := b.Since(a); math.Abs(d-20) > 1e-9 {
		t.Fatalf("Expected 20 degree turn, got %f", d)
	}
}

func TestAdvanceStraight(t *testing.T) {
	p := Pose{}.Advance(100, 100, 150)
	if math.Abs(p.XMM-100) > 1e-9 || math.Abs(p.YMM) > 1e-9 || p.Heading.Degrees() != 0 {
		t.Fatalf("Unexpected pose %v", p)
	}
}

func TestAdvanceSpinInPlace(t *testing.T) {
	const track = 150.0
	// A quarter of the circle the wheels trace while spinning.
	arc := math.Pi * track / 4
	p := Pose{}.Advance(arc, -arc, track)
	if math.Abs(p.Heading.Degrees()+90) > 1e-9 {
		t.Fatalf("Expected a 90 degree right turn, got %v", p)
	}
	if math.Abs(p.XMM) > 1e-9 || math.Abs(p.YMM) > 1e-9 {
		t.Fatalf("Spinning in place should not move, got %v", p)
	}
}
