package symp

import (
	"math"
	"testing"
)

func TestNoteToHz(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440.0},
		{60, 261.63},
		{57, 220.0},
		{81, 880.0},
	}
	for _, tt := range tests {
		got := float64(NoteToHz(tt.note))
		if math.Abs(got-tt.want) > tt.want*0.002 {
			t.Errorf("NoteToHz(%d) = %.3f, want ≈%.2f", tt.note, got, tt.want)
		}
	}
}

func TestCentsToRatio(t *testing.T) {
	if got := float64(CentsToRatio(0)); math.Abs(got-1) > 1e-3 {
		t.Errorf("CentsToRatio(0) = %g, want 1", got)
	}
	if got := float64(CentsToRatio(1200)); math.Abs(got-2) > 0.004 {
		t.Errorf("CentsToRatio(1200) = %g, want 2", got)
	}
	up := CentsToRatio(50)
	down := CentsToRatio(-50)
	if up <= 1 || down >= 1 {
		t.Errorf("cents sign mismatch: +50 → %g, -50 → %g", up, down)
	}
}
