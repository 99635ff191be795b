package encoder

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// Counter counts falling edges from one wheel encoder.  Increment may be
// called from an edge-watching goroutine while Reset and Read are called from
// the control loop.
type Counter struct {
	Name  string
	count uint32
}

// Increment adds one pulse, saturating at math.MaxUint32.
func (c *Counter) Increment() {
	for {
		old := atomic.LoadUint32(&c.count)
		if old == math.MaxUint32 {
			return
		}
		if atomic.CompareAndSwapUint32(&c.count, old, old+1) {
			return
		}
	}
}

func (c *Counter) Reset() {
	atomic.StoreUint32(&c.count, 0)
}

func (c *Counter) Read() uint32 {
	return atomic.LoadUint32(&c.count)
}

// EdgeWaiter is the part of periph's gpio.PinIn that we need.
type EdgeWaiter interface {
	WaitForEdge(timeout time.Duration) bool
}

// How long WaitForEdge blocks before we re-check the context.
const edgePollTimeout = 100 * time.Millisecond

// Watch increments the counter for every edge reported by pin until the
// context is done.  The pin must already be configured for falling edges.
func (c *Counter) Watch(ctx context.Context, pin EdgeWaiter) {
	fmt.Println("Encoder: watching", c.Name)
	defer fmt.Println("Encoder: stopped watching", c.Name)
	for ctx.Err() == nil {
		if pin.WaitForEdge(edgePollTimeout) {
			c.Increment()
		}
	}
}

type Pair struct {
	Left  Counter
	Right Counter
}

func NewPair() *Pair {
	return &Pair{
		Left:  Counter{Name: "left"},
		Right: Counter{Name: "right"},
	}
}

func (p *Pair) Reset() {
	p.Left.Reset()
	p.Right.Reset()
}

func (p *Pair) Read() (left, right uint32) {
	return p.Left.Read(), p.Right.Read()
}
