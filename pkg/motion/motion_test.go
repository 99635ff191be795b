package motion

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tigerbot-team/patrolbot/pkg/encoder"
)

type latch struct {
	value  uint8
	writes []uint8
}

func (l *latch) Read() uint8 { return l.value }

func (l *latch) Write(v uint8) error {
	l.value = v
	l.writes = append(l.writes, v)
	return nil
}

// fakeClock advances on Sleep and lets the test generate encoder pulses.
type fakeClock struct {
	now     time.Time
	onSleep func()
	sleeps  int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.sleeps++
	if c.onSleep != nil {
		c.onSleep()
	}
}

func newTestDriver(cal Calibration) (*Driver, *latch, *encoder.Pair, *fakeClock) {
	l := &latch{value: 0xA0}
	enc := encoder.NewPair()
	clock := &fakeClock{now: time.Unix(0, 0)}
	return NewDriver(l, enc, clock, cal), l, enc, clock
}

func TestDirectionCodes(t *testing.T) {
	for _, tc := range []struct {
		dir         Direction
		code        uint8
		left, right int
	}{
		{Forward, 0x06, 1, 1},
		{Back, 0x09, -1, -1},
		{Left, 0x05, -1, 1},
		{Right, 0x0A, 1, -1},
		{SoftLeft, 0x04, 0, 1},
		{SoftRight, 0x02, 1, 0},
		{ReverseSoftLeft, 0x01, -1, 0},
		{ReverseSoftRight, 0x08, 0, -1},
		{Stop, 0x00, 0, 0},
	} {
		if uint8(tc.dir) != tc.code {
			t.Errorf("%v has code 0x%02x, expected 0x%02x", tc.dir, uint8(tc.dir), tc.code)
		}
		l, r := tc.dir.Wheels()
		if l != tc.left || r != tc.right {
			t.Errorf("%v drives wheels %v, %v, expected %v, %v", tc.dir, l, r, tc.left, tc.right)
		}
	}
}

func TestSetDirectionPreservesUpperNibble(t *testing.T) {
	l := &latch{value: 0xA5}
	if err := SetDirection(l, Forward); err != nil {
		t.Fatal(err)
	}
	if l.value != 0xA6 {
		t.Fatalf("Expected 0xA6, got 0x%02x", l.value)
	}
	if err := SetDirection(l, Stop); err != nil {
		t.Fatal(err)
	}
	if l.value != 0xA0 {
		t.Fatalf("Expected 0xA0, got 0x%02x", l.value)
	}
}

func TestThresholds(t *testing.T) {
	cal := DefaultCalibration()
	if th := cal.AngleThreshold(90, false); th != 22 {
		t.Errorf("In-place 90 degrees should be 22 pulses, got %v", th)
	}
	if th := cal.AngleThreshold(90, true); th != 44 {
		t.Errorf("Soft 90 degrees should be 44 pulses, got %v", th)
	}
	if th := cal.AngleThreshold(360, false); th != 88 {
		t.Errorf("In-place 360 degrees should be 88 pulses, got %v", th)
	}
	if th := cal.DistanceThreshold(1000); th != 187 {
		t.Errorf("1000mm should be 187 pulses, got %v", th)
	}
	if th := cal.DistanceThreshold(5); th != 0 {
		t.Errorf("5mm should be 0 pulses, got %v", th)
	}
}

func TestRotateStopsAtEitherThreshold(t *testing.T) {
	d, l, enc, clock := newTestDriver(DefaultCalibration())
	// Stale counts from an earlier move must not count.
	enc.Left.Increment()
	enc.Right.Increment()
	clock.onSleep = func() {
		enc.Left.Increment()
	}

	if err := d.RightDegrees(90); err != nil {
		t.Fatal(err)
	}
	if enc.Left.Read() != 22 || enc.Right.Read() != 0 {
		t.Fatalf("Unexpected counts %v, %v", enc.Left.Read(), enc.Right.Read())
	}
	if l.writes[0] != 0xAA {
		t.Fatalf("Expected right turn 0xAA first, got 0x%02x", l.writes[0])
	}
	if l.value != 0xA0 {
		t.Fatalf("Expected stop at end, got 0x%02x", l.value)
	}
	if clock.sleeps != 22 {
		t.Fatalf("Expected 22 polls to sleep, got %v", clock.sleeps)
	}
}

func TestSoftTurnDoublesThreshold(t *testing.T) {
	d, l, enc, clock := newTestDriver(DefaultCalibration())
	clock.onSleep = func() {
		enc.Right.Increment()
	}
	if err := d.SoftLeftDegrees(90); err != nil {
		t.Fatal(err)
	}
	if enc.Right.Read() != 44 {
		t.Fatalf("Expected 44 pulses, got %v", enc.Right.Read())
	}
	if l.writes[0] != 0xA4 {
		t.Fatalf("Expected soft left 0xA4 first, got 0x%02x", l.writes[0])
	}
}

func TestTravelNeedsRightToExceedThreshold(t *testing.T) {
	d, l, enc, clock := newTestDriver(DefaultCalibration())
	clock.onSleep = func() {
		enc.Right.Increment()
	}
	if err := d.ForwardMM(1000); err != nil {
		t.Fatal(err)
	}
	if enc.Right.Read() != 188 {
		t.Fatalf("Expected 188 pulses, got %v", enc.Right.Read())
	}
	if l.writes[0] != 0xA6 || l.value != 0xA0 {
		t.Fatalf("Unexpected latch writes %x", l.writes)
	}
}

func TestLeftWheelDoesNotGateTravel(t *testing.T) {
	d, _, enc, clock := newTestDriver(DefaultCalibration())
	clock.onSleep = func() {
		if clock.sleeps < 100 {
			enc.Left.Increment()
			return
		}
		enc.Right.Increment()
	}
	if err := d.BackMM(20); err != nil {
		t.Fatal(err)
	}
	if enc.Right.Read() != 4 {
		t.Fatalf("Expected right count 4, got %v", enc.Right.Read())
	}
}

func TestCountersZeroAfterBegin(t *testing.T) {
	enc := encoder.NewPair()
	enc.Left.Increment()
	enc.Right.Increment()
	m := BeginDistance(enc, 10, 0, time.Unix(0, 0))
	if l, r := enc.Read(); l != 0 || r != 0 {
		t.Fatalf("Expected zero counts, got %v, %v", l, r)
	}
	if m.Poll(time.Unix(0, 0)) != Running {
		t.Fatal("Fresh move should be running")
	}

	enc.Left.Increment()
	BeginRotate(enc, 10, 0, time.Unix(0, 0))
	if l, r := enc.Read(); l != 0 || r != 0 {
		t.Fatalf("Expected zero counts, got %v, %v", l, r)
	}
}

func TestStallTimeout(t *testing.T) {
	cal := DefaultCalibration()
	cal.StallTimeout = 50 * time.Millisecond
	d, l, enc, clock := newTestDriver(cal)
	clock.onSleep = func() {
		// A couple of pulses, then the wheel jams.
		if clock.sleeps <= 2 {
			enc.Right.Increment()
		}
	}
	err := d.LeftDegrees(90)
	if !errors.Is(err, ErrStalled) {
		t.Fatalf("Expected stall error, got %v", err)
	}
	if l.value != 0xA0 {
		t.Fatalf("Expected wheels stopped after stall, got 0x%02x", l.value)
	}
	// Stalled after 50ms without progress following the last pulse.
	if clock.sleeps != 52 {
		t.Fatalf("Expected 52 polls, got %v", clock.sleeps)
	}
}

func TestTravelStallsOnJammedRightWheel(t *testing.T) {
	cal := DefaultCalibration()
	cal.StallTimeout = 50 * time.Millisecond
	d, l, enc, clock := newTestDriver(cal)
	clock.onSleep = func() {
		// The left wheel spins freely but cannot finish the move.
		enc.Left.Increment()
		if clock.sleeps > 1000 {
			t.Fatalf("Still polling after %v sleeps", clock.sleeps)
		}
	}
	err := d.ForwardMM(100)
	if !errors.Is(err, ErrStalled) {
		t.Fatalf("Expected stall error, got %v", err)
	}
	if l.value != 0xA0 {
		t.Fatalf("Expected wheels stopped after stall, got 0x%02x", l.value)
	}
	if clock.sleeps != 50 {
		t.Fatalf("Expected 50 polls, got %v", clock.sleeps)
	}
	if enc.Right.Read() != 0 {
		t.Fatalf("Expected no right pulses, got %v", enc.Right.Read())
	}
}

func TestRotateCountsEitherWheelAsProgress(t *testing.T) {
	cal := DefaultCalibration()
	cal.StallTimeout = 5 * time.Millisecond
	d, _, enc, clock := newTestDriver(cal)
	clock.onSleep = func() {
		enc.Left.Increment()
	}
	if err := d.RightDegrees(90); err != nil {
		t.Fatalf("Turn on the left wheel alone should finish, got %v", err)
	}
	if enc.Left.Read() != 22 {
		t.Fatalf("Expected 22 left pulses, got %v", enc.Left.Read())
	}
}

func TestTravelZeroFinishesAfterFirstPulse(t *testing.T) {
	d, l, enc, clock := newTestDriver(DefaultCalibration())
	clock.onSleep = func() {
		enc.Right.Increment()
	}
	if err := d.Travel(Forward, 0); err != nil {
		t.Fatal(err)
	}
	if enc.Right.Read() != 1 {
		t.Fatalf("Expected exactly one right pulse, got %v", enc.Right.Read())
	}
	if clock.sleeps != 1 {
		t.Fatalf("Expected one poll to sleep, got %v", clock.sleeps)
	}
	if len(l.writes) != 2 || l.writes[0] != 0xA6 || l.value != 0xA0 {
		t.Fatalf("Expected forward then stop, got %x", l.writes)
	}
}

func TestNoStallTimeoutKeepsWaiting(t *testing.T) {
	enc := encoder.NewPair()
	start := time.Unix(0, 0)
	m := BeginRotate(enc, 5, 0, start)
	if s := m.Poll(start.Add(time.Hour)); s != Running {
		t.Fatalf("Expected still running, got %v", s)
	}
}

func TestRejectsWrongDirections(t *testing.T) {
	d, _, _, _ := newTestDriver(DefaultCalibration())
	if err := d.Rotate(Forward, 90); !errors.Is(err, ErrNotATurn) {
		t.Errorf("Expected ErrNotATurn, got %v", err)
	}
	if err := d.Travel(Left, 90); !errors.Is(err, ErrNotStraight) {
		t.Errorf("Expected ErrNotStraight, got %v", err)
	}
}

func TestDirectionYAML(t *testing.T) {
	type steps struct {
		Dirs []Direction `yaml:"dirs"`
	}
	var s steps
	err := yaml.Unmarshal([]byte("dirs: [forward, Soft-Left, reverse-soft-right]"), &s)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Dirs) != 3 || s.Dirs[0] != Forward || s.Dirs[1] != SoftLeft || s.Dirs[2] != ReverseSoftRight {
		t.Fatalf("Unexpected directions %v", s.Dirs)
	}
	if err := yaml.Unmarshal([]byte("dirs: [sideways]"), &s); !errors.Is(err, ErrUnknownDirection) {
		t.Fatalf("Expected unknown direction error, got %v", err)
	}
}
