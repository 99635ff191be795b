package patrol

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/patrolbot/pkg/gp2d12"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
	"github.com/tigerbot-team/patrolbot/pkg/velocity"
)

// Leg is one side of the patrol circuit: drive forward for Ticks ticks, then
// turn on the spot.
type Leg struct {
	Ticks       int              `yaml:"ticks"`
	Turn        motion.Direction `yaml:"turn"`
	TurnDegrees uint             `yaml:"turn_degrees"`
}

type DisplayField struct {
	Row   int `yaml:"row"`
	Col   int `yaml:"col"`
	Width int `yaml:"width"`
}

type Config struct {
	Legs []Leg `yaml:"legs"`

	TickInterval time.Duration `yaml:"tick_interval"`

	// Anything this close or closer blocks the path.
	ObstacleMM int `yaml:"obstacle_mm"`
	// Reroute once the path has stayed blocked for more than this many
	// ticks.
	WaitTicks int `yaml:"wait_ticks"`
	// Ticks taken off the current leg to pay for a reroute.
	ReroutePenaltyTicks int `yaml:"reroute_penalty_ticks"`

	Cruise        velocity.Setting `yaml:"cruise"`
	SensorChannel int              `yaml:"sensor_channel"`
	Display       DisplayField     `yaml:"display"`
}

func DefaultConfig() Config {
	return Config{
		Legs: []Leg{
			{Ticks: 32, Turn: motion.Right, TurnDegrees: 90},
			{Ticks: 16, Turn: motion.Right, TurnDegrees: 90},
		},
		TickInterval:        250 * time.Millisecond,
		ObstacleMM:          200,
		WaitTicks:           16,
		ReroutePenaltyTicks: 16,
		Cruise:              velocity.Setting{Left: 248, Right: 255},
		SensorChannel:       gp2d12.DefaultChannel,
		Display:             DisplayField{Row: 1, Col: 6, Width: 3},
	}
}

var ErrBadConfig = errors.New("bad patrol config")

func (c Config) Validate() error {
	if len(c.Legs) == 0 {
		return errors.Wrap(ErrBadConfig, "no legs")
	}
	for i, l := range c.Legs {
		if l.Ticks <= 0 {
			return errors.Wrapf(ErrBadConfig, "leg %d has %d ticks", i, l.Ticks)
		}
		if !l.Turn.IsTurn() {
			return errors.Wrapf(ErrBadConfig, "leg %d ends with %v, which is not a turn", i, l.Turn)
		}
	}
	if c.TickInterval <= 0 {
		return errors.Wrapf(ErrBadConfig, "tick interval %v", c.TickInterval)
	}
	if c.ObstacleMM < 0 || c.ObstacleMM >= gp2d12.MaxDistanceMM {
		return errors.Wrapf(ErrBadConfig, "obstacle distance %dmm", c.ObstacleMM)
	}
	if c.WaitTicks < 0 || c.ReroutePenaltyTicks < 0 {
		return errors.Wrapf(ErrBadConfig, "wait %d / penalty %d ticks", c.WaitTicks, c.ReroutePenaltyTicks)
	}
	if c.SensorChannel < 0 || c.SensorChannel > 15 {
		return errors.Wrapf(ErrBadConfig, "sensor channel %d", c.SensorChannel)
	}
	if c.Display.Width <= 0 {
		return errors.Wrapf(ErrBadConfig, "display width %d", c.Display.Width)
	}
	return nil
}
