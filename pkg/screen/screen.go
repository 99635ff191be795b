package screen

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
)

const (
	S = 128

	lineHeight = 16
	leftMargin = 4
)

// Text is a character-cell display.  Rows and columns count from 1 like the
// LCD panels it stands in for.
type Text struct {
	lock  sync.Mutex
	cells [][]byte
}

func NewText(rows, cols int) *Text {
	t := &Text{cells: make([][]byte, rows)}
	for r := range t.cells {
		t.cells[r] = []byte(strings.Repeat(" ", cols))
	}
	return t
}

// FormatValue renders the last width digits of value, zero padded.
func FormatValue(value, width int) string {
	if value < 0 {
		value = -value
	}
	s := fmt.Sprintf("%0*d", width, value)
	return s[len(s)-width:]
}

// Print writes value as a width-digit field starting at (row, col).  Anything
// falling outside the display is dropped.
func (t *Text) Print(row, col, value, width int) {
	if width <= 0 {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if row < 1 || row > len(t.cells) {
		return
	}
	line := t.cells[row-1]
	for i, c := range []byte(FormatValue(value, width)) {
		x := col - 1 + i
		if x < 0 || x >= len(line) {
			continue
		}
		line[x] = c
	}
}

func (t *Text) Lines() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	lines := make([]string, len(t.cells))
	for i, l := range t.cells {
		lines[i] = string(l)
	}
	return lines
}

func (t *Text) Render() image.Image {
	dc := gg.NewContext(S, S)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGBA(1, 0.9, 0, 1)
	for i, l := range t.Lines() {
		dc.DrawString(l, leftMargin, float64((i+1)*lineHeight))
	}
	return dc.Image()
}

// EncodeRGB565 converts the image into the panel's rotated RGB565 layout.
func EncodeRGB565(img image.Image, buf []byte) {
	for y := 0; y < S; y++ {
		for x := 0; x < S; x++ {
			r, g, b, _ := img.At(x, y).RGBA() // 16-bit pre-multiplied

			rb := byte(r >> (16 - 5))
			gb := byte(g >> (16 - 6)) // Green has 6 bits
			bb := byte(b >> (16 - 5))

			buf[(S-1-y)*2+x*S*2+1] = (rb << 3) | (gb >> 3)
			buf[(S-1-y)*2+x*S*2] = bb | (gb << 5)
		}
	}
}

// LoopUpdatingScreen copies the text onto the framebuffer device until the
// context is done, then blanks it.
func LoopUpdatingScreen(ctx context.Context, device string, t *Text) {
	f, err := os.OpenFile(device, os.O_RDWR, 0666)
	if err != nil {
		fmt.Println("Failed to open screen, ignoring")
		return
	}
	defer f.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	var buf [S * S * 2]byte
	for {
		select {
		case <-ctx.Done():
			var blank [S * S * 2]byte
			_, _ = f.Seek(0, 0)
			_, _ = f.Write(blank[:])
			return
		case <-ticker.C:
		}

		EncodeRGB565(t.Render(), buf[:])
		_, err = f.Seek(0, 0)
		if err != nil {
			fmt.Println("Screen failure: ", err)
			return
		}
		for i := 0; i < S; i++ {
			_, err = f.Write(buf[i*S*2 : (i+1)*S*2])
			if err != nil {
				fmt.Println("Screen failure: ", err)
				return
			}
			time.Sleep(10 * time.Microsecond)
		}
	}
}
