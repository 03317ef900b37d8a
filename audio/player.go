// Package audio is the default sim.SoundPlayer: synthesized tones keyed
// by the sound names scripts use in play_sound.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// Player maps script sound names to short synthesized cues and tracks
// live handles so stop_sound can cut a cue off.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	cues        map[string]cue
	live        map[int]*beep.Ctrl
	nextHandle  int
	initialized bool
}

type cue struct {
	freq     float64
	duration time.Duration
	loop     bool
}

func NewPlayer() *Player {
	return &Player{
		mixer: &beep.Mixer{},
		cues: map[string]cue{
			"chirp":  {freq: 880, duration: 120 * time.Millisecond},
			"growl":  {freq: 110, duration: 400 * time.Millisecond},
			"snap":   {freq: 520, duration: 80 * time.Millisecond},
			"rumble": {freq: 70, duration: time.Second, loop: true},
			"alarm":  {freq: 660, duration: 250 * time.Millisecond, loop: true},
		},
		live: map[int]*beep.Ctrl{},
	}
}

// Initialize opens the speaker. Without it, Play degrades to a no-op.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// AddCue registers or replaces a named cue.
func (p *Player) AddCue(name string, freq float64, duration time.Duration, loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues[name] = cue{freq: freq, duration: duration, loop: loop}
}

// Play starts a cue and returns a handle for Stop. Unknown names and an
// uninitialized speaker return 0.
func (p *Player) Play(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return 0
	}
	c, ok := p.cues[name]
	if !ok {
		return 0
	}
	t := newTone(c.freq, sampleRate.N(c.duration))
	t.loop = c.loop
	ctrl := &beep.Ctrl{Streamer: t}
	p.nextHandle++
	handle := p.nextHandle
	p.live[handle] = ctrl
	speaker.Lock()
	p.mixer.Add(ctrl)
	speaker.Unlock()
	return handle
}

// Stop silences a live handle. Unknown handles are ignored.
func (p *Player) Stop(handle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ctrl, ok := p.live[handle]
	if !ok {
		return
	}
	speaker.Lock()
	ctrl.Paused = true
	ctrl.Streamer = nil
	speaker.Unlock()
	delete(p.live, handle)
}

// Cleanup mutes everything.
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.live = map[int]*beep.Ctrl{}
	p.initialized = false
}

// tone is a sine oscillator with a short fade-out to avoid clicks.
type tone struct {
	freq     float64
	phase    float64
	duration int
	position int
	loop     bool
}

func newTone(freq float64, samples int) *tone {
	return &tone{freq: freq, duration: samples}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.duration {
			if !t.loop {
				return i, false
			}
			t.position = 0
		}
		val := math.Sin(2 * math.Pi * t.phase)
		if remaining := t.duration - t.position; !t.loop && remaining < 512 {
			val *= float64(remaining) / 512
		}
		samples[i][0] = val * 0.4
		samples[i][1] = val * 0.4
		t.phase += t.freq / float64(sampleRate)
		if t.phase >= 1 {
			t.phase--
		}
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
