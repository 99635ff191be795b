package sound

import "testing"

func TestSquareWave(t *testing.T) {
	// 4 samples per period: two high, two low.
	s := SquareWave(8000, 2000)
	samples := make([][2]float64, 8)
	n, ok := s.Stream(samples)
	if n != 8 || !ok {
		t.Fatalf("Expected 8 samples, got %v %v", n, ok)
	}
	expected := []float64{amplitude, amplitude, -amplitude, -amplitude, amplitude, amplitude, -amplitude, -amplitude}
	for i, e := range expected {
		if samples[i][0] != e || samples[i][1] != e {
			t.Errorf("Sample %v = %v, expected %v", i, samples[i], e)
		}
	}
}
