package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/midigurdy/mg-effects/analysis"
	"github.com/midigurdy/mg-effects/preset"
	"github.com/midigurdy/mg-effects/symp"
)

type runReport struct {
	ReferencePath  string             `json:"reference_path"`
	PresetPath     string             `json:"preset_path,omitempty"`
	OutputPreset   string             `json:"output_preset"`
	SampleRate     int                `json:"sample_rate"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
	TopCandidates  []topCandidate     `json:"top_candidates,omitempty"`
}

func writeOutputs(
	outputPreset string,
	reportPath string,
	referencePath string,
	presetPath string,
	presetName string,
	sampleRate int,
	elapsed float64,
	evals int,
	variant string,
	defs []knobDef,
	best candidate,
	bestM analysis.Metrics,
	bestParams *symp.Params,
	top []topCandidate,
) error {
	if err := preset.SaveJSON(outputPreset, bestParams, presetName); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(defs))
	for i, d := range defs {
		knobs[d.Name] = best.Vals[i]
	}

	rep := runReport{
		ReferencePath:  referencePath,
		PresetPath:     presetPath,
		OutputPreset:   outputPreset,
		SampleRate:     sampleRate,
		DurationSec:    elapsed,
		Evaluations:    evals,
		MayflyVariant:  variant,
		BestScore:      bestM.Score,
		BestSimilarity: bestM.Similarity,
		BestMetrics:    bestM,
		BestKnobs:      knobs,
		TopCandidates:  top,
	}

	if reportPath == "" {
		reportPath = outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
