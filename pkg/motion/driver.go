package motion

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/patrolbot/pkg/encoder"
)

var (
	ErrStalled     = errors.New("motion stalled")
	ErrNotATurn    = errors.New("direction does not turn the robot")
	ErrNotStraight = errors.New("direction does not move the robot straight")
)

const defaultPollDelay = time.Millisecond

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Driver runs the blocking motion primitives.  None of them can be cancelled
// once started.
type Driver struct {
	port     Port
	encoders *encoder.Pair
	clock    Clock
	cal      Calibration
}

func NewDriver(port Port, encoders *encoder.Pair, clock Clock, cal Calibration) *Driver {
	return &Driver{
		port:     port,
		encoders: encoders,
		clock:    clock,
		cal:      cal,
	}
}

func (d *Driver) Calibration() Calibration {
	return d.cal
}

// Go sets the wheel directions and returns immediately.
func (d *Driver) Go(dir Direction) error {
	return SetDirection(d.port, dir)
}

func (d *Driver) Stop() error {
	return SetDirection(d.port, Stop)
}

// Rotate turns by the given angle in one of the turning directions.
func (d *Driver) Rotate(dir Direction, degrees uint) error {
	if !dir.IsTurn() {
		return errors.Wrapf(ErrNotATurn, "%v", dir)
	}
	m := BeginRotate(d.encoders, d.cal.AngleThreshold(degrees, dir.IsSoft()), d.cal.StallTimeout, d.clock.Now())
	if err := d.Go(dir); err != nil {
		return err
	}
	return d.Run(m)
}

// Travel moves forward or back by the given distance.
func (d *Driver) Travel(dir Direction, mm uint) error {
	if dir != Forward && dir != Back {
		return errors.Wrapf(ErrNotStraight, "%v", dir)
	}
	m := BeginDistance(d.encoders, d.cal.DistanceThreshold(mm), d.cal.StallTimeout, d.clock.Now())
	if err := d.Go(dir); err != nil {
		return err
	}
	return d.Run(m)
}

// Run polls the move until it finishes, then stops the wheels.
func (d *Driver) Run(m *Move) error {
	interval := d.cal.PollInterval
	if interval <= 0 {
		interval = defaultPollDelay
	}
	for {
		switch m.Poll(d.clock.Now()) {
		case Done:
			return d.Stop()
		case Stalled:
			l, r := d.encoders.Read()
			fmt.Printf("Motion: stalled at left=%d right=%d, wanted %d\n", l, r, m.Threshold())
			if err := d.Stop(); err != nil {
				return err
			}
			return errors.Wrapf(ErrStalled, "threshold %d, counts left=%d right=%d", m.Threshold(), l, r)
		}
		d.clock.Sleep(interval)
	}
}

func (d *Driver) ForwardMM(mm uint) error {
	return d.Travel(Forward, mm)
}

func (d *Driver) BackMM(mm uint) error {
	return d.Travel(Back, mm)
}

func (d *Driver) LeftDegrees(degrees uint) error {
	return d.Rotate(Left, degrees)
}

func (d *Driver) RightDegrees(degrees uint) error {
	return d.Rotate(Right, degrees)
}

func (d *Driver) SoftLeftDegrees(degrees uint) error {
	return d.Rotate(SoftLeft, degrees)
}

func (d *Driver) SoftRightDegrees(degrees uint) error {
	return d.Rotate(SoftRight, degrees)
}

func (d *Driver) ReverseSoftLeftDegrees(degrees uint) error {
	return d.Rotate(ReverseSoftLeft, degrees)
}

func (d *Driver) ReverseSoftRightDegrees(degrees uint) error {
	return d.Rotate(ReverseSoftRight, degrees)
}
