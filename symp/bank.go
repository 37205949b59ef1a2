package symp

import "fmt"

// MaxStrings is the maximum number of sympathetic strings.
const MaxStrings = 11

// Bank owns the active comb filters of one activation cycle. Tunings at
// or below zero mark inactive string slots and are skipped; a bank with
// zero active filters is valid and produces silence.
type Bank struct {
	combs []*comb
}

// NewBank builds comb filters for every positive tuning frequency.
// Each filter's delay length is floor(sampleRate/tuning) samples. A
// tuning above the sample rate would yield a zero-length line and is
// rejected, as is a non-positive sample rate.
func NewBank(tunings []float32, sampleRate int) (*Bank, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("bank sample rate must be > 0: %d", sampleRate)
	}
	if len(tunings) > MaxStrings {
		return nil, fmt.Errorf("too many string tunings: %d (max %d)", len(tunings), MaxStrings)
	}

	b := &Bank{}
	for i, tuning := range tunings {
		if tuning <= 0 {
			continue
		}
		size := int(float64(sampleRate) / float64(tuning))
		if size < 1 {
			return nil, fmt.Errorf("string %d tuning %.2f Hz exceeds sample rate %d", i+1, tuning, sampleRate)
		}
		b.combs = append(b.combs, newComb(size))
	}
	return b, nil
}

// NumStrings returns the number of active comb filters.
func (b *Bank) NumStrings() int {
	return len(b.combs)
}

// DelayLengths returns the delay length of each active filter in
// insertion order.
func (b *Bank) DelayLengths() []int {
	out := make([]int, len(b.combs))
	for i, c := range b.combs {
		out[i] = c.delayLength()
	}
	return out
}

// advance feeds one input sample to every filter and sums their taps in
// insertion order.
func (b *Bank) advance(in, damp1, damp2, feedback float32) float32 {
	var out float32
	for _, c := range b.combs {
		out += c.advance(in, damp1, damp2, feedback)
	}
	return out
}

// Reset clears all filter state without releasing the buffers.
func (b *Bank) Reset() {
	for _, c := range b.combs {
		c.reset()
	}
}

// Release drops all filter buffers. Safe to call repeatedly and on an
// empty bank; a released bank behaves like one with zero active filters.
func (b *Bank) Release() {
	b.combs = nil
}
