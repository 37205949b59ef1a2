// Package analysis measures the ringing behavior of the sympathetic
// string resonator: how strongly each string responds at its tuning
// frequency and how quickly the tail decays.
package analysis

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/spectrum"
)

// Errors returned by tail analysis.
var (
	ErrEmptyTail         = errors.New("analysis: tail is empty")
	ErrInvalidSampleRate = errors.New("analysis: sample rate must be positive")
	ErrNoDecay           = errors.New("analysis: insufficient decay for ring time")
)

// TailMetrics summarizes a resonator tail.
type TailMetrics struct {
	PeakIndex    int     // sample index of absolute maximum
	PeakLevelDB  float64 // envelope peak in dBFS
	DecayDBPerS  float64 // fitted envelope slope after the peak
	RingTime60DB float64 // seconds to fall 60 dB, extrapolated from the slope
}

// StringLevel returns the magnitude of the signal component at the
// given frequency, measured over the whole slice with a single-bin
// Goertzel detector.
func StringLevel(x []float64, freqHz, sampleRate float64) (float64, error) {
	g, err := spectrum.NewGoertzel(freqHz, sampleRate)
	if err != nil {
		return 0, err
	}
	g.ProcessBlock(x)
	return g.Magnitude(), nil
}

// AnalyzeTail fits a decay slope to the RMS envelope of a tail and
// derives the 60 dB ring time.
func AnalyzeTail(x []float64, sampleRate int) (TailMetrics, error) {
	if len(x) == 0 {
		return TailMetrics{}, ErrEmptyTail
	}
	if sampleRate <= 0 {
		return TailMetrics{}, ErrInvalidSampleRate
	}

	var m TailMetrics
	peak := 0.0
	for i, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
			m.PeakIndex = i
		}
	}

	const frame = 256
	const hop = 128
	env := RMSEnvelope(x, frame, hop)
	if len(env) == 0 {
		return TailMetrics{}, ErrNoDecay
	}

	envPeak := 0.0
	for _, v := range env {
		if v > envPeak {
			envPeak = v
		}
	}
	m.PeakLevelDB = linToDB(envPeak)

	hopSec := float64(hop) / float64(sampleRate)
	slope := DecaySlopeDBPerS(env, hopSec)
	if math.IsNaN(slope) {
		return TailMetrics{}, ErrNoDecay
	}
	m.DecayDBPerS = slope
	if slope < 0 {
		m.RingTime60DB = -60.0 / slope
	} else {
		m.RingTime60DB = math.Inf(1)
	}
	return m, nil
}

// RMSEnvelope returns the per-frame RMS level of x.
func RMSEnvelope(x []float64, frame, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms(x[start : start+frame])
	}
	return out
}

// DecaySlopeDBPerS fits a line to the post-peak portion of a level
// envelope and returns its slope in dB per second. Returns NaN when the
// envelope is too short or never decays past the fit window.
func DecaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}

	dbEnv := make([]float64, len(env))
	peakIdx := 0
	for i, v := range env {
		dbEnv[i] = linToDB(v)
		if dbEnv[i] > dbEnv[peakIdx] {
			peakIdx = i
		}
	}

	// Fit from just after the peak until the tail falls 60 dB below it.
	fit := dbEnv[peakIdx+1:]
	floor := dbEnv[peakIdx] - 60.0
	for i, db := range fit {
		if db < floor {
			fit = fit[:i]
			break
		}
	}
	const minFitPoints = 6
	if len(fit) < minFitPoints {
		return math.NaN()
	}

	// Least squares around the mean point keeps the arithmetic stable.
	meanX := hopSec * float64(len(fit)-1) / 2
	var meanY float64
	for _, y := range fit {
		meanY += y
	}
	meanY /= float64(len(fit))

	var num, den float64
	for i, y := range fit {
		dx := float64(i)*hopSec - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den < 1e-12 {
		return math.NaN()
	}
	return num / den
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}
