package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/host"

	"github.com/tigerbot-team/patrolbot/pkg/adc"
	"github.com/tigerbot-team/patrolbot/pkg/encoder"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
	"github.com/tigerbot-team/patrolbot/pkg/pca9685"
	"github.com/tigerbot-team/patrolbot/pkg/screen"
	"github.com/tigerbot-team/patrolbot/pkg/serlcd"
	"github.com/tigerbot-team/patrolbot/pkg/velocity"
)

type Display interface {
	Print(row, col, value, width int)
}

type Alarm interface {
	Set(on bool)
}

type Hardware struct {
	cfg Config

	direction *gpioPort
	encoders  *encoder.Pair
	leftPin   gpio.PinIn
	rightPin  gpio.PinIn

	adc      adc.Interface
	pwm      pca9685.Interface
	velocity *velocity.Output

	display Display
	text    *screen.Text
	lcd     *serlcd.LCD
	alarm   Alarm

	cancel  context.CancelFunc
	running sync.WaitGroup
}

// New opens every device named in the config.  alarm may be nil.
func New(cfg Config, alarm Alarm) (*Hardware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "initialising periph")
	}

	h := &Hardware{
		cfg:      cfg,
		encoders: encoder.NewPair(),
		alarm:    alarm,
	}

	var err error
	if h.direction, err = openGPIOPort(cfg.DirectionPins); err != nil {
		return nil, err
	}
	if h.leftPin, err = openEncoderPin(cfg.LeftEncoderPin); err != nil {
		return nil, err
	}
	if h.rightPin, err = openEncoderPin(cfg.RightEncoderPin); err != nil {
		return nil, err
	}

	if h.adc, err = adc.Open(cfg.ADCDevices); err != nil {
		return nil, err
	}

	if h.pwm, err = pca9685.New(cfg.I2CDevice, cfg.PWMAddr); err != nil {
		h.closeDevices()
		return nil, errors.Wrapf(err, "opening PWM controller on %s", cfg.I2CDevice)
	}
	if err = h.pwm.Configure(cfg.PWMFrequencyHz); err != nil {
		h.closeDevices()
		return nil, errors.Wrap(err, "configuring PWM controller")
	}
	h.velocity = velocity.New(h.pwm, cfg.LeftPWMPort, cfg.RightPWMPort)

	switch cfg.Display.Kind {
	case DisplayFramebuffer:
		h.text = screen.NewText(cfg.Display.Rows, cfg.Display.Cols)
		h.display = h.text
	case DisplaySerial:
		if h.lcd, err = serlcd.Open(cfg.Display.Device, cfg.Display.Baud, cfg.Display.Rows, cfg.Display.Cols); err != nil {
			h.closeDevices()
			return nil, err
		}
		h.display = h.lcd
	default:
		h.display = screen.NewText(cfg.Display.Rows, cfg.Display.Cols)
	}

	fmt.Println("HW: opened devices")
	return h, nil
}

var _ Interface = (*Hardware)(nil)

func (h *Hardware) Start(ctx context.Context) error {
	ctx, h.cancel = context.WithCancel(ctx)
	h.running.Add(2)
	go func() {
		defer h.running.Done()
		h.encoders.Left.Watch(ctx, h.leftPin)
	}()
	go func() {
		defer h.running.Done()
		h.encoders.Right.Watch(ctx, h.rightPin)
	}()
	if h.text != nil {
		h.running.Add(1)
		go func() {
			defer h.running.Done()
			screen.LoopUpdatingScreen(ctx, h.cfg.Display.Device, h.text)
		}()
	}
	fmt.Println("HW: started")
	return nil
}

func (h *Hardware) DirectionPort() motion.Port {
	return h.direction
}

func (h *Hardware) Encoders() *encoder.Pair {
	return h.encoders
}

func (h *Hardware) ReadAnalog(channel int) (uint8, error) {
	return h.adc.ReadAnalog(channel)
}

func (h *Hardware) SetVelocity(left, right uint8) error {
	return h.velocity.Set(left, right)
}

func (h *Hardware) Print(row, col, value, width int) {
	h.display.Print(row, col, value, width)
}

func (h *Hardware) SetBuzzer(on bool) {
	if h.alarm == nil || !h.cfg.Buzzer.Enabled {
		return
	}
	h.alarm.Set(on)
}

func (h *Hardware) Now() time.Time {
	return time.Now()
}

func (h *Hardware) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (h *Hardware) Shutdown() {
	fmt.Println("HW: Stopping motors")
	if err := motion.SetDirection(h.direction, motion.Stop); err != nil {
		fmt.Println("HW: failed to stop wheels:", err)
	}
	if err := h.velocity.Set(0, 0); err != nil {
		fmt.Println("HW: failed to zero PWM:", err)
	}
	h.SetBuzzer(false)
	if h.cancel != nil {
		h.cancel()
		h.running.Wait()
	}
	h.closeDevices()
	fmt.Println("HW: Shut down")
}

func (h *Hardware) closeDevices() {
	if h.adc != nil {
		_ = h.adc.Close()
	}
	if h.pwm != nil {
		_ = h.pwm.Close()
	}
	if h.lcd != nil {
		_ = h.lcd.Close()
	}
}
