package main

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const pulseLow = 0.55

// pulse animates the brightness of the selection highlight. A spring chases
// a target that flips between full brightness and pulseLow whenever the
// spring settles near it.
type pulse struct {
	spring harmonica.Spring
	level  float64
	vel    float64
	target float64
}

func newPulse(fps int) *pulse {
	p := &pulse{
		// Frequency 3.0 with damping 0.6 overshoots a little, which reads as a throb.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 3.0, 0.6),
	}
	p.Reset()
	return p
}

// Reset restarts the pulse at full brightness.
func (p *pulse) Reset() {
	p.level, p.vel, p.target = 1, 0, pulseLow
}

// Update advances one frame and returns the brightness in [0, 1].
func (p *pulse) Update() float64 {
	p.level, p.vel = p.spring.Update(p.level, p.vel, p.target)
	if math.Abs(p.level-p.target) < 0.02 && math.Abs(p.vel) < 0.1 {
		if p.target == 1 {
			p.target = pulseLow
		} else {
			p.target = 1
		}
	}
	return min(max(p.level, 0), 1)
}
