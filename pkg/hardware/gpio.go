package hardware

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

// gpioPort presents four GPIO lines as the low nibble of an 8-bit latch.  The
// upper nibble is remembered but not wired to anything.
type gpioPort struct {
	lock  sync.Mutex
	pins  [4]gpio.PinOut
	value uint8
}

func openGPIOPort(names []string) (*gpioPort, error) {
	if len(names) != 4 {
		return nil, errors.Errorf("need 4 direction pins, have %d", len(names))
	}
	p := &gpioPort{}
	for i, name := range names {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, errors.Errorf("no such GPIO %q for direction bit %d", name, i)
		}
		if err := pin.Out(gpio.Low); err != nil {
			return nil, errors.Wrapf(err, "setting direction bit %d (%s) to output", i, name)
		}
		p.pins[i] = pin
	}
	return p, nil
}

func (p *gpioPort) Read() uint8 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.value
}

func (p *gpioPort) Write(v uint8) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	for i, pin := range p.pins {
		l := gpio.Low
		if v&(1<<uint(i)) != 0 {
			l = gpio.High
		}
		if err := pin.Out(l); err != nil {
			return errors.Wrapf(err, "writing direction bit %d", i)
		}
	}
	p.value = v
	return nil
}

func openEncoderPin(name string) (gpio.PinIn, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.Errorf("no such GPIO %q for encoder", name)
	}
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, errors.Wrapf(err, "configuring encoder input %s", name)
	}
	return pin, nil
}
