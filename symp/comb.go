package symp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// comb is one tuned resonant delay line. The buffer holds exactly one
// period of the string's fundamental; the store register is a one-pole
// lowpass in the feedback path that darkens recirculated energy.
type comb struct {
	store    float32
	buffer   []float32
	writePos int
}

func newComb(delaySamples int) *comb {
	return &comb{buffer: make([]float32, delaySamples)}
}

func (c *comb) delayLength() int {
	return len(c.buffer)
}

// advance pushes one input sample through the line and returns the tap
// written one full delay length ago. Order matters: tap first, then the
// store update, then the write. damp1 weights the previous store, damp2
// the fresh tap.
func (c *comb) advance(in, damp1, damp2, feedback float32) float32 {
	tapped := c.buffer[c.writePos]

	c.store = tapped*damp2 + c.store*damp1
	c.store = float32(dspcore.FlushDenormals(float64(c.store)))

	c.buffer[c.writePos] = in + c.store*feedback
	c.writePos++
	if c.writePos >= len(c.buffer) {
		c.writePos = 0
	}
	return tapped
}

func (c *comb) reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}
	c.writePos = 0
	c.store = 0
}
