// Command symp-render runs the sympathetic string resonator offline:
// it excites the effect with a WAV file or a synthesized pluck and
// writes the stereo result to disk.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/midigurdy/mg-effects/dsp"
	"github.com/midigurdy/mg-effects/internal/fitcommon"
	"github.com/midigurdy/mg-effects/preset"
	"github.com/midigurdy/mg-effects/symp"
)

func main() {
	input := flag.String("input", "", "Mono/stereo WAV input (resampled to -sample-rate). Empty = synthesized excitation")
	excite := flag.String("excite", "pluck", "Synthesized excitation when no -input: impulse, pluck or noise")
	exciteDur := flag.Float64("excite-duration", 0.05, "Length of the synthesized excitation in seconds")
	tail := flag.Float64("tail", 3.0, "Extra seconds of silence fed through the effect after the input ends")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (empty = built-in defaults)")
	feedback := flag.Float64("feedback", -1, "Feedback override in [0,1] (-1 = keep preset value)")
	damping := flag.Float64("damping", -1, "Damping override in [0,1] (-1 = keep preset value)")
	bandpassHz := flag.Float64("bandpass-hz", 0, "Center of a bandpass pre-filter applied to the input (0 = off)")
	bandpassQ := flag.Float64("bandpass-q", 1.0, "Q of the bandpass pre-filter")
	dry := flag.Float64("dry", 0, "Dry input gain mixed onto both output channels")
	blockSize := flag.Int("block", 128, "Processing block size in frames")
	seed := flag.Int64("seed", 1, "Random seed for synthesized excitations")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	if *blockSize < 1 {
		fmt.Fprintf(os.Stderr, "Error: block size must be >= 1, got %d\n", *blockSize)
		os.Exit(1)
	}

	params := symp.NewDefaultParams()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		params = loaded
	}
	if *feedback >= 0 {
		params.Feedback = float32(fitcommon.Clamp(*feedback, 0, 1))
	}
	if *damping >= 0 {
		params.Damping = float32(fitcommon.Clamp(*damping, 0, 1))
	}

	in, err := loadInput(*input, *excite, *exciteDur, *sampleRate, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing input: %v\n", err)
		os.Exit(1)
	}

	tailFrames := int(float64(*sampleRate) * (*tail))
	if tailFrames > 0 {
		in = append(in, make([]float32, tailFrames)...)
	}
	if len(in) == 0 {
		fmt.Fprintln(os.Stderr, "Error: nothing to render (empty input and no tail)")
		os.Exit(1)
	}

	if *bandpassHz > 0 {
		bp := dsp.NewBandpass(float32(*bandpassHz), float32(*sampleRate), float32(*bandpassQ))
		bp.ProcessBlock(in)
	}

	eff, err := symp.New(*sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating effect: %v\n", err)
		os.Exit(1)
	}
	eff.BindControls(symp.ControlsFromParams(params))
	if err := eff.Activate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error activating effect: %v\n", err)
		os.Exit(1)
	}
	defer eff.Deactivate()

	fmt.Printf("Rendering %d frames at %d Hz through %d strings...\n", len(in), *sampleRate, eff.NumStrings())

	outL := make([]float32, len(in))
	outR := make([]float32, len(in))
	for pos := 0; pos < len(in); pos += *blockSize {
		end := fitcommon.MinInt(pos+*blockSize, len(in))
		if err := eff.Process(in[pos:end], outL[pos:end], outR[pos:end]); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing block at frame %d: %v\n", pos, err)
			os.Exit(1)
		}
	}

	if *dry > 0 {
		g := float32(*dry)
		for i, v := range in {
			outL[i] += g * v
			outR[i] += g * v
		}
	}

	if err := fitcommon.WriteStereoWAVLR(*output, outL, outR, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, len(in))
}

func loadInput(path, excite string, exciteDur float64, sampleRate int, seed int64) ([]float32, error) {
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
		return out, nil
	}
	return synthesizeExcitation(excite, exciteDur, sampleRate, seed)
}

func synthesizeExcitation(kind string, duration float64, sampleRate int, seed int64) ([]float32, error) {
	n := int(float64(sampleRate) * duration)
	if n < 1 {
		n = 1
	}
	rng := rand.New(rand.NewSource(seed))

	out := make([]float32, n)
	switch kind {
	case "impulse":
		out[0] = 1
	case "noise":
		for i := range out {
			out[i] = float32(2*rng.Float64() - 1)
		}
	case "pluck":
		// Noise burst with an exponential decay, roughly -60 dB at the end.
		decay := math.Log(1000) / float64(n)
		for i := range out {
			env := math.Exp(-decay * float64(i))
			out[i] = float32((2*rng.Float64() - 1) * env)
		}
	default:
		return nil, fmt.Errorf("unknown excitation %q (use impulse, pluck or noise)", kind)
	}
	return out, nil
}
