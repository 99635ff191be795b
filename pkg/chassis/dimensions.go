package chassis

import "math"

const (
	WheelDiameterMM float64 = 51
	WheelCircumMM           = WheelDiameterMM * math.Pi

	// Slots in each encoder disc; one pulse per slot.
	EncoderSlots = 30

	// Distance between the wheel contact patches.
	WheelTrackMM float64 = 149.5

	// Top speed of the right wheel at full PWM duty.
	MaxWheelSpeedMMPerS float64 = 220

	// The left motor runs fast; driving it at 248 against the right's 255
	// makes the robot track straight.
	LeftMotorGain float64 = 255.0 / 248
)

var (
	MMPerPulse = WheelCircumMM / EncoderSlots

	// Turning on the spot, both wheels run round a circle of diameter
	// WheelTrackMM.  Pivoting on one wheel, the other runs round a
	// circle twice that size.
	SpinCircumMM        = WheelTrackMM * math.Pi
	SpinDegreesPerPulse = 360 * MMPerPulse / SpinCircumMM
)
