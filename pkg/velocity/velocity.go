// Package velocity drives the left and right wheel enable lines with
// independent PWM duties.
package velocity

import (
	"fmt"
	"sync"
)

type PWM interface {
	SetDuty(port int, duty uint8) error
}

type Setting struct {
	Left  uint8 `yaml:"left"`
	Right uint8 `yaml:"right"`
}

func (s Setting) String() string {
	return fmt.Sprintf("L%d/R%d", s.Left, s.Right)
}

// Output applies settings immediately, with no ramping.
type Output struct {
	pwm       PWM
	leftPort  int
	rightPort int

	lock    sync.Mutex
	current Setting
}

func New(pwm PWM, leftPort, rightPort int) *Output {
	return &Output{
		pwm:       pwm,
		leftPort:  leftPort,
		rightPort: rightPort,
	}
}

func (o *Output) Set(left, right uint8) error {
	o.lock.Lock()
	defer o.lock.Unlock()
	if err := o.pwm.SetDuty(o.leftPort, left); err != nil {
		return err
	}
	o.current.Left = left
	if err := o.pwm.SetDuty(o.rightPort, right); err != nil {
		return err
	}
	o.current.Right = right
	return nil
}

// Current returns the last applied pair.
func (o *Output) Current() Setting {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.current
}
