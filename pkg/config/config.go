// Package config loads the robot's settings from YAML over compiled-in
// defaults.
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tigerbot-team/patrolbot/pkg/hardware"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
	"github.com/tigerbot-team/patrolbot/pkg/patrol"
	"github.com/tigerbot-team/patrolbot/pkg/reroute"
)

const (
	DefaultPath = "/cfg/patrolbot.yaml"
	InUsePath   = "/cfg/patrolbot-in-use.yaml"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Hardware hardware.Config    `yaml:"hardware"`
	Motion   motion.Calibration `yaml:"motion"`
	Patrol   patrol.Config      `yaml:"patrol"`
	Reroute  reroute.Config     `yaml:"reroute"`
}

func Default() Config {
	return Config{
		Hardware: hardware.DefaultConfig(),
		Motion:   motion.DefaultCalibration(),
		Patrol:   patrol.DefaultConfig(),
		Reroute:  reroute.DefaultConfig(),
	}
}

// Parse overlays the YAML document on the defaults.  Unknown keys are an
// error.  Lists in the document replace the default lists.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, errors.Wrap(err, "parsing config")
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if err := c.Hardware.Validate(); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if c.Motion.DegreesPerPulse <= 0 || c.Motion.MMPerPulse <= 0 {
		return errors.Wrapf(ErrInvalid, "calibration %v deg/pulse, %v mm/pulse",
			c.Motion.DegreesPerPulse, c.Motion.MMPerPulse)
	}
	if c.Motion.PollInterval <= 0 || c.Motion.StallTimeout < 0 {
		return errors.Wrapf(ErrInvalid, "poll interval %v, stall timeout %v",
			c.Motion.PollInterval, c.Motion.StallTimeout)
	}
	if err := c.Patrol.Validate(); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if err := c.Reroute.Validate(); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	return nil
}

// Load reads the file at path.  A missing file gives the defaults.
func Load(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Println("No config at", path, "using defaults")
		return Default(), nil
	} else if err != nil {
		return Config{}, errors.Wrapf(err, "reading %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return c, errors.Wrapf(err, "loading %s", path)
	}
	return c, nil
}

// WriteInUse records the config actually being used, so it can be copied and
// edited.
func WriteInUse(c Config, path string) error {
	fmt.Printf("Using config: %#v\n", c)
	cfgBytes, err := yaml.Marshal(&c)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	return errors.Wrapf(ioutil.WriteFile(path, cfgBytes, 0666), "writing %s", path)
}
