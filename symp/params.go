package symp

// Raw feedback in [0,1] maps to a comb coefficient in [0.960, 0.999];
// raw damping in [0,1] maps to a one-pole coefficient in [0, 0.5].
const (
	feedbackOffset = 0.96
	feedbackRange  = 0.039
	dampingRange   = 0.5
)

// Params holds the raw control values of the effect. All values use the
// ranges of the plugin's port table; they are the storage the default
// control binding points at.
type Params struct {
	// Tunings are string frequencies in Hz. Values <= 0 disable a slot.
	Tunings [MaxStrings]float32

	Feedback  float32 // [0,1], scaled internally to [0.960, 0.999]
	Damping   float32 // [0,1], 0 = bright, 1 = dark
	InputGain float32 // >= 0
	WetLeft   float32 // [0,1]
	WetRight  float32 // [0,1]
}

// NewDefaultParams returns the port-table defaults: the first seven
// strings tuned to a C major scale (C4..B4), the rest inactive.
func NewDefaultParams() *Params {
	return &Params{
		Tunings:   [MaxStrings]float32{262, 294, 330, 349, 392, 440, 494},
		Feedback:  0.5,
		Damping:   0,
		InputGain: 0.015,
		WetLeft:   1,
		WetRight:  1,
	}
}

// ScaledFeedback maps a raw feedback control value to the comb feedback
// coefficient.
func ScaledFeedback(raw float32) float32 {
	return feedbackOffset + raw*feedbackRange
}

// DampingCoeffs maps a raw damping control value to the (damp1, damp2)
// one-pole pair used by the comb feedback path.
func DampingCoeffs(raw float32) (damp1, damp2 float32) {
	damp1 = raw * dampingRange
	return damp1, 1 - damp1
}
