// Command symp-fit tunes the sympathetic string resonator against a
// reference recording. A mayfly swarm searches string tunings, tone and
// mix knobs; each candidate is rendered with a shared excitation and
// scored against the reference.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/midigurdy/mg-effects/internal/fitcommon"
	"github.com/midigurdy/mg-effects/preset"
	"github.com/midigurdy/mg-effects/symp"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path (required)")
	inputPath := flag.String("input", "", "Dry excitation WAV path (empty = synthesized pluck)")
	exciteDur := flag.Float64("excite-duration", 0.05, "Length of the synthesized excitation in seconds")
	presetPath := flag.String("preset", "", "Base preset JSON path (empty = built-in defaults)")
	outputPreset := flag.String("output-preset", "fitted.json", "Path to write the best fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	optimize := flag.String("optimize", "strings,tone", "Comma-separated knob groups to optimize: strings, tone, mix")
	tuneCents := flag.Float64("tune-cents", 50, "Search range around each base string tuning in cents")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	blockSize := flag.Int("block", 128, "Render block size for candidate evaluation")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 120.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 10000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in the report")
	workers := flag.String("workers", "1", "Parallel optimization workers running independent mayfly rounds (number or 'auto')")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per mayfly round")
	flag.Parse()

	if *referencePath == "" {
		die("--reference is required")
	}
	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	groups, err := parseOptimizeGroups(*optimize)
	if err != nil {
		die("invalid --optimize: %v", err)
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *tuneCents <= 0 {
		die("tune-cents must be > 0")
	}
	if *blockSize < 16 {
		*blockSize = 16
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}
	parsedWorkers, err := fitcommon.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}

	baseParams := symp.NewDefaultParams()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		baseParams = loaded
	}

	refRaw, refSR, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	reference, err := fitcommon.ResampleIfNeeded(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	excitation, err := loadExcitation(*inputPath, *exciteDur, len(reference), *sampleRate, *seed)
	if err != nil {
		die("failed to prepare excitation: %v", err)
	}

	defs, initCand := initCandidate(baseParams, *tuneCents, groups)
	if len(defs) == 0 {
		die("no knobs to optimize (all string slots disabled?)")
	}
	fmt.Printf("Fitting %d knobs against %s (%d frames at %d Hz)...\n", len(defs), *referencePath, len(reference), *sampleRate)

	cfg := &optimizationConfig{
		reference:        reference,
		excitation:       excitation,
		baseParams:       baseParams,
		defs:             defs,
		initCandidate:    initCand,
		sampleRate:       *sampleRate,
		blockSize:        *blockSize,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		workers:          parsedWorkers,
		topK:             *topK,
		mayflyVariant:    *mayflyVariant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
	}

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	if err := writeOutputs(
		*outputPreset,
		*reportPath,
		*referencePath,
		*presetPath,
		"fitted",
		*sampleRate,
		result.elapsed,
		result.evals,
		strings.ToLower(*mayflyVariant),
		defs,
		result.best,
		result.bestMetrics,
		result.bestParams,
		result.top,
	); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n", result.evals, result.elapsed, result.bestMetrics.Score, result.bestMetrics.Similarity*100.0, strings.ToLower(*mayflyVariant))
}

// loadExcitation reads the dry input or synthesizes a pluck matching
// the reference length so the candidate renders cover the same span.
func loadExcitation(path string, exciteDur float64, refFrames, sampleRate int, seed int64) ([]float32, error) {
	if path != "" {
		mono, rate, err := fitcommon.ReadWAVMono(path)
		if err != nil {
			return nil, err
		}
		mono, err = fitcommon.ResampleIfNeeded(mono, rate, sampleRate)
		if err != nil {
			return nil, err
		}
		out := make([]float32, len(mono))
		for i, v := range mono {
			out[i] = float32(v)
		}
		if len(out) < refFrames {
			out = append(out, make([]float32, refFrames-len(out))...)
		}
		return out, nil
	}

	n := int(float64(sampleRate) * exciteDur)
	if n < 1 {
		n = 1
	}
	if refFrames < n {
		refFrames = n
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]float32, refFrames)
	decay := math.Log(1000) / float64(n)
	for i := 0; i < n; i++ {
		env := math.Exp(-decay * float64(i))
		out[i] = float32((2*rng.Float64() - 1) * env)
	}
	return out, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
