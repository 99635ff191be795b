// Package adc reads the robot's analog sensors through a pair of MCP3008
// 10-bit SPI converters.  Channels 0-7 are on the first chip, 8-15 on the
// second.
package adc

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
)

const (
	ChannelsPerBank = 8
	NumChannels     = 2 * ChannelsPerBank

	startBit    = 0x01
	singleEnded = 0x80
)

var (
	ErrChannel = errors.New("ADC channel out of range")
	ErrNoBank  = errors.New("ADC bank not connected")
)

type Interface interface {
	ReadAnalog(channel int) (uint8, error)
	Close() error
}

type bank struct {
	port spi.PortCloser
	conn spi.Conn
}

type MCP3008 struct {
	lock  sync.Mutex
	banks [2]*bank
}

// Open connects to the converters on the given spidev devices, at most one
// per bank.  An empty name leaves that bank unconnected.
func Open(devices []string) (*MCP3008, error) {
	if len(devices) > NumChannels/ChannelsPerBank {
		return nil, errors.Errorf("%d ADC devices, at most %d supported", len(devices), NumChannels/ChannelsPerBank)
	}
	m := &MCP3008{}
	for i, dev := range devices {
		if dev == "" {
			continue
		}
		p, err := spireg.Open(dev)
		if err != nil {
			_ = m.Close()
			return nil, errors.Wrapf(err, "opening ADC bank %d on %s", i, dev)
		}
		// The MCP3008 wants at most 1.35MHz at 2.7V.
		c, err := p.Connect(physic.KiloHertz*1000, spi.Mode0, 8)
		if err != nil {
			_ = p.Close()
			_ = m.Close()
			return nil, errors.Wrapf(err, "connecting to ADC bank %d on %s", i, dev)
		}
		m.banks[i] = &bank{port: p, conn: c}
	}
	return m, nil
}

// Request builds the 3-byte single-ended conversion request for a channel
// within its bank.
func Request(bankChannel int) []byte {
	return []byte{startBit, singleEnded | byte(bankChannel&0x07)<<4, 0x00}
}

// Result extracts the conversion from the reply and keeps its top 8 bits.
func Result(reply []byte) uint8 {
	v := uint16(reply[1]&0x03)<<8 | uint16(reply[2])
	return uint8(v >> 2)
}

// ReadAnalog blocks until the conversion is complete.
func (m *MCP3008) ReadAnalog(channel int) (uint8, error) {
	if channel < 0 || channel >= NumChannels {
		return 0, errors.Wrapf(ErrChannel, "channel %d", channel)
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	b := m.banks[channel/ChannelsPerBank]
	if b == nil {
		return 0, errors.Wrapf(ErrNoBank, "channel %d", channel)
	}
	write := Request(channel % ChannelsPerBank)
	read := make([]byte, len(write))
	if err := b.conn.Tx(write, read); err != nil {
		return 0, errors.Wrapf(err, "reading ADC channel %d", channel)
	}
	return Result(read), nil
}

func (m *MCP3008) Close() error {
	var firstErr error
	for i, b := range m.banks {
		if b == nil {
			continue
		}
		if err := b.port.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.banks[i] = nil
	}
	return firstErr
}

var _ Interface = (*MCP3008)(nil)
