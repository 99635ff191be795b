package motion

import (
	"time"

	"github.com/tigerbot-team/patrolbot/pkg/encoder"
)

type Calibration struct {
	// Robot rotation per encoder pulse during an in-place turn.  Soft turns
	// need twice as many pulses for the same angle.
	DegreesPerPulse float64 `yaml:"degrees_per_pulse"`
	// Travel per right-wheel encoder pulse.
	MMPerPulse float64 `yaml:"mm_per_pulse"`

	PollInterval time.Duration `yaml:"poll_interval"`
	// StallTimeout is how long a move may go without an encoder pulse that
	// could complete it before it is abandoned.  Straight moves only watch
	// the right wheel.  Zero waits forever.
	StallTimeout time.Duration `yaml:"stall_timeout"`
}

func DefaultCalibration() Calibration {
	return Calibration{
		DegreesPerPulse: 4.090,
		MMPerPulse:      5.338,
		PollInterval:    time.Millisecond,
		StallTimeout:    0,
	}
}

func (c Calibration) AngleThreshold(degrees uint, soft bool) uint32 {
	d := float64(degrees)
	if soft {
		d *= 2
	}
	return uint32(d / c.DegreesPerPulse)
}

func (c Calibration) DistanceThreshold(mm uint) uint32 {
	return uint32(float64(mm) / c.MMPerPulse)
}

type Status int

const (
	Running Status = iota
	Done
	Stalled
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Done:
		return "done"
	case Stalled:
		return "stalled"
	}
	return "unknown"
}

type gate int

const (
	// Turns finish when either wheel reaches the threshold.
	eitherReached gate = iota
	// Straight moves finish when the right wheel passes the threshold.
	rightExceeded
)

// Move is one encoder-gated motion in progress.  It never touches the motors;
// the caller polls it and decides what to do with the result.
type Move struct {
	encoders  *encoder.Pair
	threshold uint32
	gate      gate

	stallTimeout time.Duration
	lastProgress time.Time
	lastLeft     uint32
	lastRight    uint32
}

// BeginRotate resets both counters and returns a move that completes once
// either wheel has turned threshold pulses.
func BeginRotate(enc *encoder.Pair, threshold uint32, stallTimeout time.Duration, now time.Time) *Move {
	return begin(enc, threshold, eitherReached, stallTimeout, now)
}

// BeginDistance resets both counters and returns a move that completes once
// the right wheel has turned more than threshold pulses.
func BeginDistance(enc *encoder.Pair, threshold uint32, stallTimeout time.Duration, now time.Time) *Move {
	return begin(enc, threshold, rightExceeded, stallTimeout, now)
}

func begin(enc *encoder.Pair, threshold uint32, g gate, stallTimeout time.Duration, now time.Time) *Move {
	enc.Reset()
	return &Move{
		encoders:     enc,
		threshold:    threshold,
		gate:         g,
		stallTimeout: stallTimeout,
		lastProgress: now,
	}
}

func (m *Move) Threshold() uint32 {
	return m.threshold
}

func (m *Move) Poll(now time.Time) Status {
	l, r := m.encoders.Read()
	switch m.gate {
	case eitherReached:
		if l >= m.threshold || r >= m.threshold {
			return Done
		}
	case rightExceeded:
		if r > m.threshold {
			return Done
		}
	}

	if m.stallTimeout <= 0 {
		return Running
	}
	// Only the right wheel can finish a straight move, so only it counts
	// as progress.
	progressed := r != m.lastRight
	if m.gate == eitherReached {
		progressed = progressed || l != m.lastLeft
	}
	if progressed {
		m.lastLeft, m.lastRight = l, r
		m.lastProgress = now
		return Running
	}
	if now.Sub(m.lastProgress) >= m.stallTimeout {
		return Stalled
	}
	return Running
}
