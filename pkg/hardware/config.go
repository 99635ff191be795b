package hardware

import (
	"github.com/pkg/errors"

	"github.com/tigerbot-team/patrolbot/pkg/pca9685"
	"github.com/tigerbot-team/patrolbot/pkg/serlcd"
)

const (
	DisplayNone        = "none"
	DisplayFramebuffer = "framebuffer"
	DisplaySerial      = "serial"
)

type Config struct {
	// GPIO names for direction bits 0-3: left back, left forward, right
	// forward, right back.
	DirectionPins   []string `yaml:"direction_pins"`
	LeftEncoderPin  string   `yaml:"left_encoder_pin"`
	RightEncoderPin string   `yaml:"right_encoder_pin"`

	// spidev devices for ADC channels 0-7 and 8-15.
	ADCDevices []string `yaml:"adc_devices"`

	I2CDevice      string  `yaml:"i2c_device"`
	PWMAddr        int     `yaml:"pwm_addr"`
	PWMFrequencyHz float64 `yaml:"pwm_frequency_hz"`
	LeftPWMPort    int     `yaml:"left_pwm_port"`
	RightPWMPort   int     `yaml:"right_pwm_port"`

	Display DisplayConfig `yaml:"display"`
	Buzzer  BuzzerConfig  `yaml:"buzzer"`
}

type DisplayConfig struct {
	Kind   string `yaml:"kind"`
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Rows   int    `yaml:"rows"`
	Cols   int    `yaml:"cols"`
}

type BuzzerConfig struct {
	Enabled bool    `yaml:"enabled"`
	ToneHz  float64 `yaml:"tone_hz"`
}

func DefaultConfig() Config {
	return Config{
		DirectionPins:   []string{"GPIO5", "GPIO6", "GPIO13", "GPIO19"},
		LeftEncoderPin:  "GPIO20",
		RightEncoderPin: "GPIO21",
		ADCDevices:      []string{"/dev/spidev0.0", "/dev/spidev0.1"},
		I2CDevice:       "/dev/i2c-1",
		PWMAddr:         pca9685.DefaultAddr,
		PWMFrequencyHz:  225,
		LeftPWMPort:     0,
		RightPWMPort:    1,
		Display: DisplayConfig{
			Kind:   DisplayFramebuffer,
			Device: "/dev/fb1",
			Baud:   serlcd.DefaultBaud,
			Rows:   2,
			Cols:   16,
		},
		Buzzer: BuzzerConfig{
			Enabled: false,
			ToneHz:  2000,
		},
	}
}

var ErrBadConfig = errors.New("bad hardware config")

func (c Config) Validate() error {
	switch c.Display.Kind {
	case DisplayNone, DisplayFramebuffer, DisplaySerial:
	default:
		return errors.Wrapf(ErrBadConfig, "unknown display kind %q", c.Display.Kind)
	}
	if c.Display.Rows <= 0 || c.Display.Cols <= 0 {
		return errors.Wrapf(ErrBadConfig, "display size %dx%d", c.Display.Rows, c.Display.Cols)
	}
	for _, p := range []int{c.LeftPWMPort, c.RightPWMPort} {
		if p < 0 || p > 15 {
			return errors.Wrapf(ErrBadConfig, "PWM port %d", p)
		}
	}
	if c.LeftPWMPort == c.RightPWMPort {
		return errors.Wrap(ErrBadConfig, "left and right PWM share a port")
	}
	if c.PWMFrequencyHz <= 0 {
		return errors.Wrapf(ErrBadConfig, "PWM frequency %v", c.PWMFrequencyHz)
	}
	if len(c.DirectionPins) != 4 {
		return errors.Wrapf(ErrBadConfig, "need 4 direction pins, have %d", len(c.DirectionPins))
	}
	if len(c.ADCDevices) == 0 || len(c.ADCDevices) > 2 {
		return errors.Wrapf(ErrBadConfig, "need 1 or 2 ADC devices, have %d", len(c.ADCDevices))
	}
	return nil
}
