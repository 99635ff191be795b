package screen

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestFormatValue(t *testing.T) {
	for _, tc := range []struct {
		value, width int
		expected     string
	}{
		{45, 3, "045"},
		{800, 3, "800"},
		{1234, 3, "234"},
		{7, 1, "7"},
		{0, 3, "000"},
	} {
		if s := FormatValue(tc.value, tc.width); s != tc.expected {
			t.Errorf("FormatValue(%v, %v) = %q, expected %q", tc.value, tc.width, s, tc.expected)
		}
	}
}

func TestPrint(t *testing.T) {
	txt := NewText(2, 16)
	txt.Print(1, 6, 149, 3)
	lines := txt.Lines()
	if lines[0] != "     149        " {
		t.Fatalf("Unexpected line %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("Second line should be blank, got %q", lines[1])
	}

	txt.Print(1, 6, 62, 3)
	if txt.Lines()[0] != "     062        " {
		t.Fatalf("Field not overwritten: %q", txt.Lines()[0])
	}

	// Clipped at the edges.
	txt.Print(2, 15, 123, 3)
	txt.Print(3, 1, 999, 3)
	if txt.Lines()[1] != "              12" {
		t.Fatalf("Unexpected clipping %q", txt.Lines()[1])
	}
}

func TestRenderDrawsSomething(t *testing.T) {
	txt := NewText(2, 16)
	txt.Print(1, 1, 800, 3)
	img := txt.Render()
	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("Expected some lit pixels")
	}
}

func TestEncodeRGB565(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, S, S))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	var buf [S * S * 2]byte
	EncodeRGB565(img, buf[:])
	// Pixel (0, 0) lands at the end of the first column.
	if buf[(S-1)*2] != 0xff || buf[(S-1)*2+1] != 0xff {
		t.Fatalf("Expected white pixel, got %x %x", buf[(S-1)*2], buf[(S-1)*2+1])
	}
	if buf[0] != 0 || buf[1] != 0 {
		t.Fatalf("Expected black pixel, got %x %x", buf[0], buf[1])
	}
}
