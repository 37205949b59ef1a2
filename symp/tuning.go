package symp

import "github.com/cwbudde/algo-approx"

// NoteToHz converts a MIDI note number to a string tuning frequency.
func NoteToHz(note int) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	exponent := float32(note-a4Note) / 12.0
	return a4Freq * pow2Approx(exponent)
}

// CentsToRatio converts a detune in cents to a frequency ratio.
func CentsToRatio(cents float32) float32 {
	return pow2Approx(cents / 1200.0)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}
