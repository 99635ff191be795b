package motion

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Direction is the H-bridge control nibble for both wheels.
//
// Bit 0 drives the left wheel backwards, bit 1 the left wheel forwards, bit 2
// the right wheel forwards and bit 3 the right wheel backwards.
type Direction uint8

const (
	Stop             Direction = 0x00
	ReverseSoftLeft  Direction = 0x01
	SoftRight        Direction = 0x02
	SoftLeft         Direction = 0x04
	Left             Direction = 0x05
	Forward          Direction = 0x06
	ReverseSoftRight Direction = 0x08
	Back             Direction = 0x09
	Right            Direction = 0x0A
)

const (
	leftBack     = 0x01
	leftForward  = 0x02
	rightForward = 0x04
	rightBack    = 0x08
)

var directionNames = map[Direction]string{
	Stop:             "stop",
	ReverseSoftLeft:  "reverse-soft-left",
	SoftRight:        "soft-right",
	SoftLeft:         "soft-left",
	Left:             "left",
	Forward:          "forward",
	ReverseSoftRight: "reverse-soft-right",
	Back:             "back",
	Right:            "right",
}

func (d Direction) String() string {
	if n, ok := directionNames[d]; ok {
		return n
	}
	return fmt.Sprintf("direction(0x%02x)", uint8(d))
}

// Wheels returns -1, 0 or +1 for each wheel.
func (d Direction) Wheels() (left, right int) {
	if d&leftForward != 0 {
		left++
	}
	if d&leftBack != 0 {
		left--
	}
	if d&rightForward != 0 {
		right++
	}
	if d&rightBack != 0 {
		right--
	}
	return
}

// IsSoft is true for turns that pivot on one stationary wheel.
func (d Direction) IsSoft() bool {
	switch d {
	case SoftLeft, SoftRight, ReverseSoftLeft, ReverseSoftRight:
		return true
	}
	return false
}

// IsTurn is true for every direction that changes heading.
func (d Direction) IsTurn() bool {
	return d == Left || d == Right || d.IsSoft()
}

var ErrUnknownDirection = errors.New("unknown direction")

func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, n := range directionNames {
		if n == s {
			return d, nil
		}
	}
	return Stop, errors.Wrapf(ErrUnknownDirection, "%q", s)
}

func (d Direction) MarshalYAML() (interface{}, error) {
	if _, ok := directionNames[d]; !ok {
		return nil, errors.Wrapf(ErrUnknownDirection, "0x%02x", uint8(d))
	}
	return d.String(), nil
}

func (d *Direction) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Port is the 8-bit output latch whose low nibble drives the H-bridge.  The
// upper nibble belongs to other peripherals.
type Port interface {
	Read() uint8
	Write(v uint8) error
}

// SetDirection replaces the low nibble of the port, keeping the upper nibble.
func SetDirection(p Port, d Direction) error {
	v := p.Read()&0xF0 | uint8(d)&0x0F
	return p.Write(v)
}
