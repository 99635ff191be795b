package pca9685

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.
	RegTestMode = 0xff

	OscillatorHz = 25000000

	PWMMax = 4095

	MinPreScale = 0x03
	MaxPreScale = 0xff
)

type Interface interface {
	Configure(frequencyHz float64) error
	SetDuty(port int, duty uint8) error
	Close() error
}

type PCA9685 struct {
	dev *i2c.Device
}

func New(deviceFile string, addr int) (Interface, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, addr)
	if err != nil {
		return nil, err
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

// PreScale returns the prescaler register value for a PWM frequency.
func PreScale(frequencyHz float64) byte {
	p := math.Round(OscillatorHz/(4096*frequencyHz)) - 1
	if p < MinPreScale {
		p = MinPreScale
	} else if p > MaxPreScale {
		p = MaxPreScale
	}
	return byte(p)
}

// OnTime scales an 8-bit duty cycle to the chip's 12-bit range.
func OnTime(duty uint8) uint16 {
	return uint16(uint32(duty) * PWMMax / 255)
}

func (p *PCA9685) Configure(frequencyHz float64) (err error) {
	// Put device to sleep.
	err = p.dev.WriteReg(RegMode1, []byte{0x11})
	if err != nil {
		return
	}
	err = p.dev.WriteReg(RegPreScale, []byte{PreScale(frequencyHz)})
	if err != nil {
		return
	}
	// Trigger a reset
	err = p.dev.WriteReg(RegMode1, []byte{0x01})
	if err != nil {
		return
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	err = p.dev.WriteReg(RegMode1, []byte{0x81})
	return
}

func (p *PCA9685) SetDuty(port int, duty uint8) error {
	if port < 0 || port > 15 {
		fmt.Println("PWM port out of range: ", port)
		return nil
	}
	v := OnTime(duty)
	addr := RegLEDBase + port*4
	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(v & 0xff), byte(v >> 8)})
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

func Dummy() Interface {
	return &dummyPWM{}
}

type dummyPWM struct {
}

func (*dummyPWM) Configure(frequencyHz float64) error {
	return nil
}

func (*dummyPWM) SetDuty(port int, duty uint8) error {
	return nil
}

func (*dummyPWM) Close() error {
	return nil
}
