package symp

import (
	"errors"
	"fmt"
)

// Errors returned by the effect lifecycle.
var (
	ErrNotActive = errors.New("symp: effect is not activated")
	ErrUnbound   = errors.New("symp: controls are not fully bound")
)

// Effect emulates up to eleven sympathetic strings using tuned feedback
// comb filters, turning a mono input into a metallic, resonance-like
// stereo reverb. Combine with a band-pass filter on the input to tame
// frequencies that would otherwise ring.
//
// Lifecycle: bind controls, Activate (builds the comb bank from the
// tuning controls as they read at that instant), then call Process or
// ProcessAdding once per audio block, and Deactivate to release the
// bank. Retuning a string control while active takes effect on the next
// activation cycle.
type Effect struct {
	sampleRate int
	controls   Controls
	bank       *Bank
	active     bool

	runAddingGain float32

	// Derived coefficients, recomputed only when the raw control moves.
	feedback       float32
	scaledFeedback float32
	damping        float32
	damp1          float32
	damp2          float32
}

// New creates an effect for a fixed sample rate with its controls bound
// to a private copy of the default parameters. Hosts that own control
// storage rebind via ConnectPort or BindControls.
func New(sampleRate int) (*Effect, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("symp sample rate must be > 0: %d", sampleRate)
	}
	return &Effect{
		sampleRate: sampleRate,
		controls:   ControlsFromParams(NewDefaultParams()),
	}, nil
}

// SampleRate returns the fixed sample rate in Hz.
func (e *Effect) SampleRate() int { return e.sampleRate }

// BindControls replaces the whole control binding at once.
func (e *Effect) BindControls(c Controls) {
	e.controls = c
}

// ConnectPort attaches one control port to host-owned storage.
func (e *Effect) ConnectPort(port int, value *float32) error {
	return e.controls.connect(port, value)
}

// SetRunAddingGain sets the gain applied on top of the wet mix in
// ProcessAdding. Hosts set this immediately before an adding block.
func (e *Effect) SetRunAddingGain(gain float32) {
	e.runAddingGain = gain
}

// Activate reads the tuning controls and builds the comb bank. It must
// be called off the audio thread; it allocates and may fail. On failure
// the effect stays inactive and Process keeps returning ErrNotActive.
func (e *Effect) Activate() error {
	if !e.controls.complete() {
		return ErrUnbound
	}

	tunings := make([]float32, MaxStrings)
	for i, t := range e.controls.Tunings {
		tunings[i] = *t
	}

	bank, err := NewBank(tunings, e.sampleRate)
	if err != nil {
		return err
	}

	if e.bank != nil {
		e.bank.Release()
	}
	e.bank = bank

	// Seed the derived coefficients from the current raw values so the
	// first block is correct even if the controls never move.
	e.feedback = *e.controls.Feedback
	e.scaledFeedback = ScaledFeedback(e.feedback)
	e.damping = *e.controls.Damping
	e.damp1, e.damp2 = DampingCoeffs(e.damping)

	e.active = true
	return nil
}

// Deactivate releases the comb bank. Idempotent.
func (e *Effect) Deactivate() {
	if e.bank != nil {
		e.bank.Release()
		e.bank = nil
	}
	e.active = false
}

// Active reports whether the effect is between Activate and Deactivate.
func (e *Effect) Active() bool { return e.active }

// NumStrings returns the number of active strings, 0 when inactive.
func (e *Effect) NumStrings() int {
	if e.bank == nil {
		return 0
	}
	return e.bank.NumStrings()
}

// Process runs one block in replace mode: outLeft and outRight are
// overwritten with the wet signal. All three slices must have equal
// length. The call is allocation-free and runs to completion.
func (e *Effect) Process(in, outLeft, outRight []float32) error {
	return e.processBlock(in, outLeft, outRight, false)
}

// ProcessAdding runs one block in adding mode: the wet signal, scaled
// by the run-adding gain, is accumulated into outLeft and outRight. A
// channel whose wet control reads zero is left completely untouched.
func (e *Effect) ProcessAdding(in, outLeft, outRight []float32) error {
	return e.processBlock(in, outLeft, outRight, true)
}

func (e *Effect) processBlock(in, outLeft, outRight []float32, adding bool) error {
	if !e.active {
		return ErrNotActive
	}
	if len(outLeft) != len(in) || len(outRight) != len(in) {
		return fmt.Errorf("block length mismatch: in=%d outLeft=%d outRight=%d",
			len(in), len(outLeft), len(outRight))
	}

	inputGain := *e.controls.InputGain
	wetLeft := clampUnit(*e.controls.WetLeft)
	wetRight := clampUnit(*e.controls.WetRight)
	e.refreshDerived(*e.controls.Feedback, *e.controls.Damping)

	bank := e.bank
	damp1, damp2 := e.damp1, e.damp2
	feedback := e.scaledFeedback
	addingGain := e.runAddingGain

	for i, x := range in {
		mixed := bank.advance(x*inputGain, damp1, damp2, feedback)

		if adding {
			if wetLeft > 0 {
				outLeft[i] += mixed * addingGain * wetLeft
			}
			if wetRight > 0 {
				outRight[i] += mixed * addingGain * wetRight
			}
		} else {
			outLeft[i] = mixed * wetLeft
			outRight[i] = mixed * wetRight
		}
	}
	return nil
}

// refreshDerived recomputes the scaled feedback and damping pair when
// the raw controls moved since the last block. Recomputing per sample
// would be behaviorally identical, just slower.
func (e *Effect) refreshDerived(rawFeedback, rawDamping float32) {
	if rawDamping != e.damping {
		e.damping = rawDamping
		e.damp1, e.damp2 = DampingCoeffs(rawDamping)
	}
	if rawFeedback != e.feedback {
		e.feedback = rawFeedback
		e.scaledFeedback = ScaledFeedback(rawFeedback)
	}
}
