package hardware

import (
	"context"
	"time"

	"github.com/tigerbot-team/patrolbot/pkg/encoder"
	"github.com/tigerbot-team/patrolbot/pkg/motion"
)

type Interface interface {
	// Start kicks off background work (encoder watchers, screen refresh).
	Start(ctx context.Context) error

	// DirectionPort is the H-bridge direction latch.
	DirectionPort() motion.Port
	Encoders() *encoder.Pair

	// ReadAnalog returns the top 8 bits of a conversion on channel 0-15.
	ReadAnalog(channel int) (uint8, error)
	SetVelocity(left, right uint8) error

	// Print writes value as a width-digit field at (row, col), 1-based.
	Print(row, col, value, width int)
	SetBuzzer(on bool)

	Now() time.Time
	Sleep(d time.Duration)

	// Shutdown stops the wheels and releases the devices.
	Shutdown()
}
