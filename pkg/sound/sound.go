package sound

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	SampleRate = beep.SampleRate(44100)

	DefaultToneHz = 2000
	amplitude     = 0.3
)

// SquareWave generates an endless square wave at the given frequency.
func SquareWave(sr beep.SampleRate, freqHz float64) beep.Streamer {
	period := float64(sr) / freqHz
	var pos float64
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			v := amplitude
			if pos >= period/2 {
				v = -amplitude
			}
			samples[i][0] = v
			samples[i][1] = v
			pos++
			if pos >= period {
				pos -= period
			}
		}
		return len(samples), true
	})
}

// Buzzer is an audible obstacle alarm played through the speaker.
type Buzzer struct {
	lock sync.Mutex
	ctrl *beep.Ctrl
	on   bool
}

func NewBuzzer(freqHz float64) (*Buzzer, error) {
	err := speaker.Init(SampleRate, SampleRate.N(time.Second/10))
	if err != nil {
		fmt.Println("Failed to open speaker", err)
		return nil, err
	}
	b := &Buzzer{
		ctrl: &beep.Ctrl{Streamer: SquareWave(SampleRate, freqHz), Paused: true},
	}
	speaker.Play(b.ctrl)
	return b, nil
}

func (b *Buzzer) Set(on bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.on == on {
		return
	}
	b.on = on
	speaker.Lock()
	b.ctrl.Paused = !on
	speaker.Unlock()
}

func (b *Buzzer) On() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.on
}
