// Package serlcd drives an HD44780 character LCD behind a serial backpack.
package serlcd

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/tigerbot-team/patrolbot/pkg/screen"
)

const (
	cmdPrefix    = 0xFE
	cmdClear     = 0x01
	cmdSetCursor = 0x80

	DefaultBaud = 9600
)

// DDRAM offsets of the start of each row.
var rowOffsets = []byte{0x00, 0x40, 0x14, 0x54}

type LCD struct {
	lock       sync.Mutex
	port       io.WriteCloser
	rows, cols int
}

func Open(device string, baud, rows, cols int) (*LCD, error) {
	mode := &serial.Mode{
		BaudRate: baud,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "opening LCD on %s", device)
	}
	l := New(p, rows, cols)
	if err := l.Clear(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return l, nil
}

func New(port io.WriteCloser, rows, cols int) *LCD {
	if rows > len(rowOffsets) {
		rows = len(rowOffsets)
	}
	return &LCD{port: port, rows: rows, cols: cols}
}

func (l *LCD) Clear() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, err := l.port.Write([]byte{cmdPrefix, cmdClear})
	return err
}

// Print positions the cursor (1-based) and writes value as a zero-padded
// field.  Write errors are logged; the display is best effort.
func (l *LCD) Print(row, col, value, width int) {
	if row < 1 || row > l.rows || col < 1 || col > l.cols || width <= 0 {
		return
	}
	s := screen.FormatValue(value, width)
	if room := l.cols - col + 1; len(s) > room {
		s = s[:room]
	}
	msg := append([]byte{cmdPrefix, cmdSetCursor | (rowOffsets[row-1] + byte(col-1))}, s...)

	l.lock.Lock()
	defer l.lock.Unlock()
	if _, err := l.port.Write(msg); err != nil {
		fmt.Println("LCD write failed:", err)
	}
}

func (l *LCD) Close() error {
	return l.port.Close()
}
