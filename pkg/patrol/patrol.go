// Package patrol drives the robot round its circuit, waiting for obstacles to
// clear and going round them when they don't.
package patrol

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/patrolbot/pkg/hardware"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
	"github.com/tigerbot-team/patrolbot/pkg/reroute"
)

type State int

const (
	Cruising State = iota
	Blocked
	Waiting
	Rerouting
)

func (s State) String() string {
	switch s {
	case Cruising:
		return "cruising"
	case Blocked:
		return "blocked"
	case Waiting:
		return "waiting"
	case Rerouting:
		return "rerouting"
	}
	return "unknown"
}

type Ranger interface {
	DistanceMM() (int, error)
}

type Mover interface {
	Go(dir motion.Direction) error
	Stop() error
	Rotate(dir motion.Direction, degrees uint) error
}

type status struct {
	state     State
	leg       int
	remaining int
	waitCount int
	lastMM    int
}

type Controller struct {
	cfg      Config
	hw       hardware.Interface
	ranger   Ranger
	mover    Mover
	maneuver *reroute.Maneuver

	// Owned by the goroutine calling Tick.
	state      State
	legStarted bool
	leg        int
	remaining  int
	waitCount  int
	lastMM     int

	// Copied from the fields above under lock for the accessors.
	published status

	// OnTransition, if set, sees every state change, including the
	// pass through Blocked.
	OnTransition func(from, to State)

	cancel context.CancelFunc
	done   chan struct{}
	err    error
	lock   sync.Mutex
}

// New builds a controller starting on the first leg.  It takes over the
// maneuver's Refresh hook so the display keeps updating during a reroute.
func New(cfg Config, hw hardware.Interface, ranger Ranger, mover Mover, maneuver *reroute.Maneuver) *Controller {
	c := &Controller{
		cfg:      cfg,
		hw:       hw,
		ranger:   ranger,
		mover:    mover,
		maneuver: maneuver,
		state:    Cruising,
	}
	maneuver.Refresh = c.refreshDisplay
	return c
}

func (c *Controller) Name() string {
	return "PATROL"
}

// The accessors below may be called from any goroutine.  They see the
// controller as it was after the last completed tick or state change.

func (c *Controller) State() State {
	return c.snapshot().state
}

// Leg is the index of the current leg in the plan.
func (c *Controller) Leg() int {
	return c.snapshot().leg
}

// Remaining is the number of forward ticks left on the current leg.
func (c *Controller) Remaining() int {
	return c.snapshot().remaining
}

func (c *Controller) WaitCount() int {
	return c.snapshot().waitCount
}

func (c *Controller) LastDistanceMM() int {
	return c.snapshot().lastMM
}

func (c *Controller) snapshot() status {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.published
}

func (c *Controller) publish() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.published = status{
		state:     c.state,
		leg:       c.leg,
		remaining: c.remaining,
		waitCount: c.waitCount,
		lastMM:    c.lastMM,
	}
}

// Tick runs one iteration of the control loop.  Turns and reroutes block
// until they finish.
func (c *Controller) Tick() error {
	defer c.publish()
	if !c.legStarted {
		if err := c.startLeg(); err != nil {
			return c.fail(err)
		}
	}
	switch c.state {
	case Cruising:
		return c.cruise()
	case Waiting:
		return c.wait()
	case Rerouting:
		return c.reroute()
	}
	return c.fail(errors.Errorf("tick in unexpected state %v", c.state))
}

func (c *Controller) startLeg() error {
	leg := c.cfg.Legs[c.leg]
	c.remaining = leg.Ticks
	c.legStarted = true
	fmt.Printf("Patrol: leg %d, %d ticks then %v %d\n", c.leg, leg.Ticks, leg.Turn, leg.TurnDegrees)
	if err := c.hw.SetVelocity(c.cfg.Cruise.Left, c.cfg.Cruise.Right); err != nil {
		return errors.Wrap(err, "setting cruise velocity")
	}
	return c.mover.Go(motion.Forward)
}

func (c *Controller) endLeg() error {
	leg := c.cfg.Legs[c.leg]
	fmt.Printf("Patrol: end of leg %d, turning %v %d\n", c.leg, leg.Turn, leg.TurnDegrees)
	if err := c.mover.Rotate(leg.Turn, leg.TurnDegrees); err != nil {
		return c.fail(errors.Wrapf(err, "turning at end of leg %d", c.leg))
	}
	c.leg = (c.leg + 1) % len(c.cfg.Legs)
	if err := c.startLeg(); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Controller) cruise() error {
	mm, err := c.readDistance()
	if err != nil {
		return c.fail(err)
	}
	if c.blocked(mm) {
		c.setState(Blocked)
		if err := c.mover.Stop(); err != nil {
			return c.fail(err)
		}
		c.hw.SetBuzzer(true)
		c.waitCount = 0
		c.setState(Waiting)
		return nil
	}

	if err := c.mover.Go(motion.Forward); err != nil {
		return c.fail(err)
	}
	c.hw.Sleep(c.cfg.TickInterval)
	c.remaining--
	if c.remaining <= 0 {
		return c.endLeg()
	}
	return nil
}

func (c *Controller) wait() error {
	mm, err := c.readDistance()
	if err != nil {
		return c.fail(err)
	}
	if !c.blocked(mm) {
		c.waitCount = 0
		c.hw.SetBuzzer(false)
		if err := c.mover.Go(motion.Forward); err != nil {
			return c.fail(err)
		}
		c.setState(Cruising)
		c.hw.Sleep(c.cfg.TickInterval)
		return nil
	}

	c.waitCount++
	c.hw.Sleep(c.cfg.TickInterval)
	if c.waitCount > c.cfg.WaitTicks {
		c.setState(Rerouting)
	}
	return nil
}

func (c *Controller) reroute() error {
	c.hw.SetBuzzer(false)
	if err := c.maneuver.Run(); err != nil {
		return c.fail(err)
	}
	c.waitCount = 0
	c.remaining -= c.cfg.ReroutePenaltyTicks
	c.setState(Cruising)
	if c.remaining <= 0 {
		return c.endLeg()
	}
	return nil
}

func (c *Controller) blocked(mm int) bool {
	return mm <= c.cfg.ObstacleMM
}

func (c *Controller) readDistance() (int, error) {
	mm, err := c.ranger.DistanceMM()
	if err != nil {
		return 0, errors.Wrap(err, "reading range sensor")
	}
	c.lastMM = mm
	d := c.cfg.Display
	c.hw.Print(d.Row, d.Col, mm, d.Width)
	return mm, nil
}

func (c *Controller) refreshDisplay() {
	if _, err := c.readDistance(); err != nil {
		fmt.Println("Patrol: display refresh failed:", err)
	}
}

func (c *Controller) setState(to State) {
	from := c.state
	if from == to {
		return
	}
	fmt.Printf("Patrol: %v -> %v (leg %d, %d ticks left, %dmm)\n", from, to, c.leg, c.remaining, c.lastMM)
	c.state = to
	c.publish()
	if c.OnTransition != nil {
		c.OnTransition(from, to)
	}
}

// fail stops the wheels, as far as it can, and passes the error on.
func (c *Controller) fail(err error) error {
	if stopErr := c.mover.Stop(); stopErr != nil {
		fmt.Println("Patrol: failed to stop after error:", stopErr)
	}
	return err
}

// Run ticks until the context is done or a tick fails.  The context is only
// checked between ticks.
func (c *Controller) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := c.Tick(); err != nil {
			fmt.Println("Patrol: stopping:", err)
			return err
		}
	}
	fmt.Println("Patrol: context done, stopping")
	return c.mover.Stop()
}

// Start runs the controller in the background until Stop is called.
func (c *Controller) Start(ctx context.Context) {
	var loopCtx context.Context
	loopCtx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		err := c.Run(loopCtx)
		c.lock.Lock()
		c.err = err
		c.lock.Unlock()
	}()
}

// Done is closed once the background loop has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) Err() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.err
}

func (c *Controller) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}
