package symp

import (
	"errors"
	"testing"
)

func newTestEffect(t *testing.T, params *Params, sampleRate int) *Effect {
	t.Helper()
	e, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.BindControls(ControlsFromParams(params))
	if err := e.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	return e
}

func singleStringParams(tuning float32) *Params {
	p := NewDefaultParams()
	p.Tunings = [MaxStrings]float32{tuning}
	p.InputGain = 1
	return p
}

func TestEffectSingleStringImpulseResponse(t *testing.T) {
	p := singleStringParams(440)
	p.Feedback = 0.5
	p.Damping = 0
	p.WetLeft = 1
	p.WetRight = 0

	e := newTestEffect(t, p, 48000)
	if got := e.NumStrings(); got != 1 {
		t.Fatalf("expected 1 string, got %d", got)
	}

	const n = 501
	const delay = 109 // floor(48000/440)
	in := make([]float32, n)
	in[0] = 1
	outL := make([]float32, n)
	outR := make([]float32, n)
	if err := e.Process(in, outL, outR); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if outL[0] != 0 {
		t.Errorf("sample 0: got %g, want 0 (tap of empty buffer)", outL[0])
	}
	if outL[delay] != 1 {
		t.Errorf("sample %d: got %g, want exactly 1", delay, outL[delay])
	}
	wantSecond := ScaledFeedback(0.5)
	if outL[2*delay] != wantSecond {
		t.Errorf("sample %d: got %g, want %g", 2*delay, outL[2*delay], wantSecond)
	}
	for i, v := range outR {
		if v != 0 {
			t.Fatalf("right channel sample %d: got %g, want silence", i, v)
		}
	}
}

func TestEffectReplaceOverwritesOutput(t *testing.T) {
	e := newTestEffect(t, singleStringParams(440), 48000)

	const n = 256
	in := make([]float32, n)
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := range outL {
		outL[i] = 123
		outR[i] = -123
	}
	if err := e.Process(in, outL, outR); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range outL {
		if outL[i] != 0 || outR[i] != 0 {
			t.Fatalf("sample %d: prior content leaked through: L=%g R=%g", i, outL[i], outR[i])
		}
	}
}

func TestEffectAddingLeavesZeroWetChannelUntouched(t *testing.T) {
	p := singleStringParams(440)
	p.WetLeft = 1
	p.WetRight = 0
	e := newTestEffect(t, p, 48000)
	e.SetRunAddingGain(0.5)

	const n = 300
	const delay = 109
	in := make([]float32, n)
	in[0] = 1
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := range outL {
		outL[i] = 1
		outR[i] = float32(i) * 0.25
	}
	want := make([]float32, n)
	copy(want, outR)

	if err := e.ProcessAdding(in, outL, outR); err != nil {
		t.Fatalf("ProcessAdding: %v", err)
	}

	for i := range outR {
		if outR[i] != want[i] {
			t.Fatalf("zero-wet right channel modified at %d: got %g, want %g", i, outR[i], want[i])
		}
	}
	if outL[delay] != 1+0.5 {
		t.Errorf("left channel not accumulated: got %g, want 1.5", outL[delay])
	}
	if outL[1] != 1 {
		t.Errorf("left channel off-impulse sample changed: got %g, want 1", outL[1])
	}
}

func TestEffectClampsWetControls(t *testing.T) {
	p := singleStringParams(440)
	p.WetLeft = 2.5
	p.WetRight = -4
	e := newTestEffect(t, p, 48000)

	const n = 220
	in := make([]float32, n)
	in[0] = 1
	outL := make([]float32, n)
	outR := make([]float32, n)
	if err := e.Process(in, outL, outR); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if outL[109] != 1 {
		t.Errorf("wet left should clamp to 1: got %g", outL[109])
	}
	for i, v := range outR {
		if v != 0 {
			t.Fatalf("wet right should clamp to 0, sample %d got %g", i, v)
		}
	}
}

func TestEffectLifecycleGuards(t *testing.T) {
	e, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf := make([]float32, 64)

	if err := e.Process(buf, buf, buf); !errors.Is(err, ErrNotActive) {
		t.Fatalf("Process before Activate: got %v, want ErrNotActive", err)
	}
	if err := e.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := e.Process(buf, make([]float32, 64), make([]float32, 64)); err != nil {
		t.Fatalf("Process while active: %v", err)
	}
	e.Deactivate()
	e.Deactivate()
	if err := e.ProcessAdding(buf, buf, buf); !errors.Is(err, ErrNotActive) {
		t.Fatalf("ProcessAdding after Deactivate: got %v, want ErrNotActive", err)
	}
}

func TestEffectActivationFailureStaysInactive(t *testing.T) {
	p := singleStringParams(96000) // above sample rate, degenerate delay
	e, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.BindControls(ControlsFromParams(p))

	if err := e.Activate(); err == nil {
		t.Fatal("expected activation error for degenerate tuning")
	}
	if e.Active() {
		t.Fatal("effect reports active after failed activation")
	}
	buf := make([]float32, 16)
	if err := e.Process(buf, buf, buf); !errors.Is(err, ErrNotActive) {
		t.Fatalf("Process after failed activation: got %v, want ErrNotActive", err)
	}
}

func TestEffectRetuningTakesEffectOnNextActivation(t *testing.T) {
	p := NewDefaultParams()
	e := newTestEffect(t, p, 48000)
	if e.NumStrings() != 7 {
		t.Fatalf("expected 7 default strings, got %d", e.NumStrings())
	}

	// Disabling strings while active changes nothing until reactivation.
	p.Tunings = [MaxStrings]float32{440}
	if e.NumStrings() != 7 {
		t.Fatalf("live retune rebuilt the bank: %d strings", e.NumStrings())
	}

	e.Deactivate()
	if err := e.Activate(); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if e.NumStrings() != 1 {
		t.Fatalf("expected 1 string after reactivation, got %d", e.NumStrings())
	}
}

func TestEffectBlockLengthMismatch(t *testing.T) {
	e := newTestEffect(t, NewDefaultParams(), 48000)
	if err := e.Process(make([]float32, 64), make([]float32, 32), make([]float32, 64)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestEffectUnboundControls(t *testing.T) {
	e, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.BindControls(Controls{})
	if err := e.Activate(); !errors.Is(err, ErrUnbound) {
		t.Fatalf("Activate with empty binding: got %v, want ErrUnbound", err)
	}
}

func TestEffectControlChangeBetweenBlocks(t *testing.T) {
	p1 := singleStringParams(440)
	p1.Feedback = 0
	p2 := singleStringParams(440)
	p2.Feedback = 0

	e1 := newTestEffect(t, p1, 48000)
	e2 := newTestEffect(t, p2, 48000)

	const n = 256
	in := make([]float32, n)
	in[0] = 1
	l1 := make([]float32, n)
	r1 := make([]float32, n)
	l2 := make([]float32, n)
	r2 := make([]float32, n)

	if err := e1.Process(in, l1, r1); err != nil {
		t.Fatalf("e1 block 1: %v", err)
	}
	if err := e2.Process(in, l2, r2); err != nil {
		t.Fatalf("e2 block 1: %v", err)
	}
	for i := range l1 {
		if l1[i] != l2[i] {
			t.Fatalf("identical settings diverged at %d: %g vs %g", i, l1[i], l2[i])
		}
	}

	// Raise e2's feedback control; the cached coefficient must refresh.
	p2.Feedback = 1
	zero := make([]float32, n)
	if err := e1.Process(zero, l1, r1); err != nil {
		t.Fatalf("e1 block 2: %v", err)
	}
	if err := e2.Process(zero, l2, r2); err != nil {
		t.Fatalf("e2 block 2: %v", err)
	}

	diverged := false
	for i := range l1 {
		if l1[i] != l2[i] {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Fatal("feedback control change between blocks had no effect")
	}
}
