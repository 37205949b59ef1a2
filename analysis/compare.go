package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Metrics contains distance and similarity measurements between two
// audio signals, used as the fit objective.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE        float64 `json:"time_rmse"`
	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in
// [0,1], lower being a closer match.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	worst := func() Metrics {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		return worst()
	}

	ref := trimLeadingSilence(reference, 1e-6)
	cand := trimLeadingSilence(candidate, 1e-6)
	if len(ref) == 0 || len(cand) == 0 {
		return worst()
	}

	ref = normalizeRMS(ref, 0.1)
	cand = normalizeRMS(cand, 0.1)

	maxLag := sampleRate / 2
	if maxLag > len(ref)-1 {
		maxLag = len(ref) - 1
	}
	if maxLag > len(cand)-1 {
		maxLag = len(cand) - 1
	}
	if maxLag < 1 {
		maxLag = 1
	}
	refA, candA, lag := alignSignals(ref, cand, maxLag)
	m.LagSamples = lag

	n := len(refA)
	if len(candA) < n {
		n = len(candA)
	}
	if n < 256 {
		return worst()
	}
	maxFrames := sampleRate * 12
	if n > maxFrames {
		n = maxFrames
	}
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(refA, candA)

	refEnv := RMSEnvelope(refA, 256, 128)
	candEnv := RMSEnvelope(candA, 256, 128)
	envN := len(refEnv)
	if len(candEnv) < envN {
		envN = len(candEnv)
	}
	if envN > 0 {
		var sum float64
		for i := 0; i < envN; i++ {
			d := linToDB(refEnv[i]) - linToDB(candEnv[i])
			sum += d * d
		}
		m.EnvelopeRMSEDB = math.Sqrt(sum / float64(envN))
	}

	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	hopSec := 128.0 / float64(sampleRate)
	m.RefDecayDBPerS = DecaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = DecaySlopeDBPerS(candEnv, hopSec)
	if isFinite64(m.RefDecayDBPerS) && isFinite64(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}

	timeNorm := clamp01(m.TimeRMSE / 0.25)
	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	decNorm := clamp01(m.DecayDiffDBPerS / 40.0)
	m.Score = clamp01(0.25*timeNorm + 0.25*envNorm + 0.35*specNorm + 0.15*decNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))

	return m
}

// trimLeadingSilence drops samples before the first one that clears
// the threshold.
func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i, v := range x {
		if v > threshold || v < -threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	r := rms(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

// alignSignals removes a constant time offset between the two signals
// by maximizing their cross-correlation over +-maxLag samples, then
// returns the trimmed slices and the winning lag. A positive lag means
// the reference leads. Resonator tails are short, so the correlation
// runs at full resolution up to 100k samples and decimates beyond that.
func alignSignals(ref []float64, cand []float64, maxLag int) ([]float64, []float64, int) {
	longest := len(ref)
	if len(cand) > longest {
		longest = len(cand)
	}
	stride := 1 + longest/100000

	shifted := func(lag int) ([]float64, []float64) {
		if lag >= 0 {
			return ref[lag:], cand
		}
		return ref, cand[-lag:]
	}

	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		r, c := shifted(lag)
		n := len(r)
		if len(c) < n {
			n = len(c)
		}
		var sum float64
		for i := 0; i < n; i += stride {
			sum += r[i] * c[i]
		}
		if sum > best {
			best = sum
			bestLag = lag
		}
	}

	r, c := shifted(bestLag)
	return r, c, bestLag
}

func rmse(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// spectralRMSEDB compares the Hann-windowed log-magnitude spectra of
// the first power-of-two window shared by both signals.
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 512 {
		return 0
	}
	size := 512
	for size*2 <= n && size < 4096 {
		size *= 2
	}

	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return 0
	}
	specA := windowedSpectrum(plan, a[:size])
	specB := windowedSpectrum(plan, b[:size])

	var sum float64
	bins := len(specA)
	for k := 1; k < bins; k++ {
		d := linToDB(cmplx.Abs(specA[k])) - linToDB(cmplx.Abs(specB[k]))
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

func windowedSpectrum(plan *algofft.PlanRealT[float64, complex128], x []float64) []complex128 {
	n := len(x)
	buf := make([]float64, n)
	for i := range x {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = x[i] * w
	}
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, buf)
	return spec
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func isFinite64(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
