package symp

import "testing"

func TestBankDelayLengths(t *testing.T) {
	tests := []struct {
		sampleRate int
		tuning     float32
		want       int
	}{
		{48000, 440, 109},
		{48000, 262, 183},
		{44100, 440, 100},
		{48000, 48000, 1},
		{96000, 32.7, 2935},
	}

	for _, tt := range tests {
		b, err := NewBank([]float32{tt.tuning}, tt.sampleRate)
		if err != nil {
			t.Fatalf("NewBank(%g Hz @ %d): %v", tt.tuning, tt.sampleRate, err)
		}
		got := b.DelayLengths()
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("tuning %g @ %d: delay lengths %v, want [%d]", tt.tuning, tt.sampleRate, got, tt.want)
		}
	}
}

func TestBankSkipsInactiveTunings(t *testing.T) {
	tunings := []float32{262, 0, 330, -1, 392, 0, 0, 0, 0, 0, 0}
	b, err := NewBank(tunings, 48000)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	if b.NumStrings() != 3 {
		t.Fatalf("expected 3 active strings, got %d", b.NumStrings())
	}
}

func TestBankRejectsDegenerateTuning(t *testing.T) {
	if _, err := NewBank([]float32{96000}, 48000); err == nil {
		t.Fatal("expected error for tuning above sample rate")
	}
	if _, err := NewBank([]float32{440}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	tooMany := make([]float32, MaxStrings+1)
	for i := range tooMany {
		tooMany[i] = 440
	}
	if _, err := NewBank(tooMany, 48000); err == nil {
		t.Fatal("expected error for too many tunings")
	}
}

func TestBankWithZeroFiltersIsSilent(t *testing.T) {
	b, err := NewBank(nil, 48000)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	if b.NumStrings() != 0 {
		t.Fatalf("expected empty bank, got %d strings", b.NumStrings())
	}
	for i := 0; i < 100; i++ {
		if out := b.advance(1, 0, 1, 0.999); out != 0 {
			t.Fatalf("empty bank produced %g", out)
		}
	}
}

func TestBankSumsInInsertionOrder(t *testing.T) {
	// Two identical strings double a recirculating impulse exactly.
	b, err := NewBank([]float32{440, 440}, 48000)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	const delay = 109
	for i := 0; i < delay*2+1; i++ {
		in := float32(0)
		if i == 0 {
			in = 1
		}
		out := b.advance(in, 0, 1, 1)
		if i > 0 && i%delay == 0 {
			if out != 2 {
				t.Fatalf("sample %d: expected summed impulse 2, got %g", i, out)
			}
		} else if out != 0 {
			t.Fatalf("sample %d: expected 0, got %g", i, out)
		}
	}
}

func TestBankReleaseIsIdempotent(t *testing.T) {
	b, err := NewBank([]float32{262, 330}, 48000)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	b.Release()
	b.Release()
	if b.NumStrings() != 0 {
		t.Fatalf("released bank still reports %d strings", b.NumStrings())
	}
	if out := b.advance(1, 0, 1, 0.999); out != 0 {
		t.Fatalf("released bank produced %g", out)
	}
}
