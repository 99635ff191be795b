// Package reroute runs the fixed, timed escape sequence that takes the robot
// round an obstacle that will not move.
package reroute

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/patrolbot/pkg/motion"
)

type Step struct {
	Direction motion.Direction `yaml:"direction"`
	Duration  time.Duration    `yaml:"duration"`
}

type Config struct {
	Steps []Step `yaml:"steps"`
}

// DefaultConfig sidesteps to the right of the obstacle, passes it and returns
// to the original line.
func DefaultConfig() Config {
	return Config{
		Steps: []Step{
			{motion.Right, 600 * time.Millisecond},
			{motion.Forward, 1000 * time.Millisecond},
			{motion.Left, 600 * time.Millisecond},
			{motion.Forward, 2000 * time.Millisecond},
			{motion.Left, 600 * time.Millisecond},
			{motion.Forward, 1000 * time.Millisecond},
			{motion.Right, 600 * time.Millisecond},
		},
	}
}

var ErrBadStep = errors.New("bad reroute step")

func (c Config) Validate() error {
	if len(c.Steps) == 0 {
		return errors.Wrap(ErrBadStep, "no steps")
	}
	for i, s := range c.Steps {
		if s.Duration <= 0 {
			return errors.Wrapf(ErrBadStep, "step %d has duration %v", i, s.Duration)
		}
		if s.Direction == motion.Stop {
			return errors.Wrapf(ErrBadStep, "step %d does not move", i)
		}
	}
	return nil
}

type Driver interface {
	Go(dir motion.Direction) error
}

type Sleeper interface {
	Sleep(d time.Duration)
}

// Maneuver is open loop: nothing is measured and nothing is retried.  The last
// step's direction is still applied when Run returns.
type Maneuver struct {
	cfg     Config
	driver  Driver
	sleeper Sleeper

	// Refresh is called before each step, typically to update the
	// distance display.
	Refresh func()
}

func New(cfg Config, driver Driver, sleeper Sleeper) *Maneuver {
	return &Maneuver{
		cfg:     cfg,
		driver:  driver,
		sleeper: sleeper,
	}
}

// Run executes every step.  It cannot be cancelled part way through.
func (m *Maneuver) Run() error {
	fmt.Println("Reroute: starting", len(m.cfg.Steps), "steps")
	for _, s := range m.cfg.Steps {
		if m.Refresh != nil {
			m.Refresh()
		}
		if err := m.driver.Go(s.Direction); err != nil {
			return errors.Wrapf(err, "reroute step %v", s.Direction)
		}
		m.sleeper.Sleep(s.Duration)
	}
	fmt.Println("Reroute: done")
	return nil
}
