// Package gp2d12 converts readings from a Sharp GP2D12 analog IR range sensor
// into millimetres.
package gp2d12

import "math"

const (
	// MaxDistanceMM is the furthest distance we report; the sensor's
	// output is meaningless beyond it.
	MaxDistanceMM = 800

	// DefaultChannel is the ADC channel of the front-facing sensor.
	DefaultChannel = 11

	curveScale    = 10 * 2799.6
	curveExponent = 1.1546
)

// DistanceMM maps a raw 8-bit ADC code to a distance.  Larger codes mean
// closer objects.  Code 0 is outside the sensor's curve and reads as max range.
func DistanceMM(code uint8) int {
	if code == 0 {
		return MaxDistanceMM
	}
	d := int(curveScale / math.Pow(float64(code), curveExponent))
	if d > MaxDistanceMM {
		return MaxDistanceMM
	}
	return d
}

// CodeFor returns the smallest code that reads as mm or closer.
func CodeFor(mm int) uint8 {
	for c := 1; c < 255; c++ {
		if DistanceMM(uint8(c)) <= mm {
			return uint8(c)
		}
	}
	return 255
}

type AnalogReader interface {
	ReadAnalog(channel int) (uint8, error)
}

// Sensor reads a GP2D12 on one ADC channel.  Readings are never cached.
type Sensor struct {
	adc     AnalogReader
	channel int
}

func NewSensor(adc AnalogReader, channel int) *Sensor {
	return &Sensor{adc: adc, channel: channel}
}

func (s *Sensor) Read() (code uint8, mm int, err error) {
	code, err = s.adc.ReadAnalog(s.channel)
	if err != nil {
		return 0, 0, err
	}
	return code, DistanceMM(code), nil
}

func (s *Sensor) DistanceMM() (int, error) {
	_, mm, err := s.Read()
	return mm, err
}
