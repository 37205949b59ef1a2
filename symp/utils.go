package symp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

func clampUnit(v float32) float32 {
	return float32(dspcore.Clamp(float64(v), 0, 1))
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}
