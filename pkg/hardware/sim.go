package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/patrolbot/pkg/adc"
	"github.com/tigerbot-team/patrolbot/pkg/chassis"
	"github.com/tigerbot-team/patrolbot/pkg/encoder"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
	"github.com/tigerbot-team/patrolbot/pkg/pose"
	"github.com/tigerbot-team/patrolbot/pkg/screen"
	"github.com/tigerbot-team/patrolbot/pkg/velocity"
)

// RangeFunc returns the raw range sensor code the robot would see at a pose
// and time since start.
type RangeFunc func(p pose.Pose, elapsed time.Duration) uint8

// Sim is a deterministic stand-in for the robot.  Time only moves when Sleep
// is called; wheels roll and encoders pulse according to the direction latch
// and PWM duties in force during the sleep.
type Sim struct {
	lock sync.Mutex

	start time.Time
	now   time.Time

	latch    uint8
	encoders *encoder.Pair
	duty     velocity.Setting
	pose     pose.Pose

	// Distance rolled since the last pulse, per wheel.
	leftRolled, rightRolled float64
	leftJammed, rightJammed bool

	rangeFunc RangeFunc
	text      *screen.Text
	buzzer    bool
	buzzes    int

	Verbose bool
}

func NewSim() *Sim {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Sim{
		start:    start,
		now:      start,
		encoders: encoder.NewPair(),
		text:     screen.NewText(2, 16),
	}
}

var _ Interface = (*Sim)(nil)

func (s *Sim) Start(ctx context.Context) error {
	fmt.Println("Sim: Start")
	return nil
}

// SetRange installs the range model.  With none the sensor sees nothing.
func (s *Sim) SetRange(f RangeFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.rangeFunc = f
}

// Jam stops a wheel turning whatever it is told to do.
func (s *Sim) Jam(left, right bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.leftJammed, s.rightJammed = left, right
}

func (s *Sim) DirectionPort() motion.Port {
	return (*simPort)(s)
}

type simPort Sim

func (p *simPort) Read() uint8 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.latch
}

func (p *simPort) Write(v uint8) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.Verbose && v&0x0F != p.latch&0x0F {
		fmt.Printf("Sim: %v at %v\n", motion.Direction(v&0x0F), p.pose)
	}
	p.latch = v
	return nil
}

func (s *Sim) Encoders() *encoder.Pair {
	return s.encoders
}

func (s *Sim) ReadAnalog(channel int) (uint8, error) {
	if channel < 0 || channel >= adc.NumChannels {
		return 0, errors.Wrapf(adc.ErrChannel, "channel %d", channel)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.rangeFunc == nil {
		return 0, nil
	}
	return s.rangeFunc(s.pose, s.now.Sub(s.start)), nil
}

func (s *Sim) SetVelocity(left, right uint8) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Verbose {
		fmt.Printf("Sim: velocity L%d R%d\n", left, right)
	}
	s.duty = velocity.Setting{Left: left, Right: right}
	return nil
}

func (s *Sim) Velocity() velocity.Setting {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.duty
}

func (s *Sim) Print(row, col, value, width int) {
	s.text.Print(row, col, value, width)
}

func (s *Sim) Lines() []string {
	return s.text.Lines()
}

func (s *Sim) SetBuzzer(on bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if on && !s.buzzer {
		s.buzzes++
	}
	s.buzzer = on
}

// Buzzer reports whether the buzzer is on and how many times it has been
// switched on.
func (s *Sim) Buzzer() (on bool, count int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.buzzer, s.buzzes
}

func (s *Sim) Pose() pose.Pose {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pose
}

func (s *Sim) Now() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.now
}

func (s *Sim) Elapsed() time.Duration {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.now.Sub(s.start)
}

// Sleep advances the simulated clock, rolling the wheels as it goes.
func (s *Sim) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	l, r := motion.Direction(s.latch & 0x0F).Wheels()
	secs := d.Seconds()
	leftMM := float64(l) * wheelSpeed(s.duty.Left) * chassis.LeftMotorGain * secs
	rightMM := float64(r) * wheelSpeed(s.duty.Right) * secs
	if s.leftJammed {
		leftMM = 0
	}
	if s.rightJammed {
		rightMM = 0
	}

	s.pose = s.pose.Advance(leftMM, rightMM, chassis.WheelTrackMM)
	s.leftRolled = pulse(&s.encoders.Left, s.leftRolled+abs(leftMM))
	s.rightRolled = pulse(&s.encoders.Right, s.rightRolled+abs(rightMM))
	s.now = s.now.Add(d)
}

func (s *Sim) Shutdown() {
	fmt.Println("Sim: Shutdown at", s.Pose())
	_ = motion.SetDirection(s.DirectionPort(), motion.Stop)
	_ = s.SetVelocity(0, 0)
	s.SetBuzzer(false)
}

func wheelSpeed(duty uint8) float64 {
	return chassis.MaxWheelSpeedMMPerS * float64(duty) / 255
}

// pulse emits one encoder pulse per slot rolled past and returns the leftover.
func pulse(c *encoder.Counter, rolled float64) float64 {
	for rolled >= chassis.MMPerPulse {
		c.Increment()
		rolled -= chassis.MMPerPulse
	}
	return rolled
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
