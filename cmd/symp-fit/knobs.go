package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/midigurdy/mg-effects/symp"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

// parseOptimizeGroups parses a comma-separated string of group names.
// Valid groups: strings, tone, mix.
func parseOptimizeGroups(raw string) (map[string]bool, error) {
	valid := map[string]bool{"strings": true, "tone": true, "mix": true}
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown optimize group %q (valid: strings, tone, mix)", s)
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no optimize groups specified")
	}
	return groups, nil
}

// initCandidate builds the knob table for the active groups. String
// tunings move within +-tuneCents around the base preset; zero slots
// stay disabled and get no knob.
func initCandidate(base *symp.Params, tuneCents float64, groups map[string]bool) ([]knobDef, candidate) {
	defs := make([]knobDef, 0, symp.MaxStrings+5)
	vals := make([]float64, 0, symp.MaxStrings+5)
	addKnob := func(def knobDef, val float64) {
		defs = append(defs, def)
		vals = append(vals, val)
	}

	if groups["strings"] {
		lo := float64(symp.CentsToRatio(float32(-tuneCents)))
		hi := float64(symp.CentsToRatio(float32(tuneCents)))
		for i, hz := range base.Tunings {
			if hz <= 0 {
				continue
			}
			addKnob(knobDef{
				Name: fmt.Sprintf("string.%d.tuning", i),
				Min:  float64(hz) * lo,
				Max:  float64(hz) * hi,
			}, float64(hz))
		}
	}

	if groups["tone"] {
		addKnob(knobDef{Name: "feedback", Min: 0, Max: 1}, float64(base.Feedback))
		addKnob(knobDef{Name: "damping", Min: 0, Max: 1}, float64(base.Damping))
	}

	if groups["mix"] {
		addKnob(knobDef{Name: "input_gain", Min: 0.001, Max: 0.2}, float64(base.InputGain))
		addKnob(knobDef{Name: "wet_left", Min: 0, Max: 1}, float64(base.WetLeft))
		addKnob(knobDef{Name: "wet_right", Min: 0, Max: 1}, float64(base.WetRight))
	}

	for i := range vals {
		vals[i] = clamp(vals[i], defs[i].Min, defs[i].Max)
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate maps knob values onto a copy of the base parameters.
func applyCandidate(base *symp.Params, defs []knobDef, c candidate) *symp.Params {
	params := *base

	for i, def := range defs {
		v := c.Vals[i]
		if slot, ok := stringKnobSlot(def.Name); ok {
			params.Tunings[slot] = float32(v)
			continue
		}
		switch def.Name {
		case "feedback":
			params.Feedback = float32(v)
		case "damping":
			params.Damping = float32(v)
		case "input_gain":
			params.InputGain = float32(v)
		case "wet_left":
			params.WetLeft = float32(v)
		case "wet_right":
			params.WetRight = float32(v)
		}
	}
	return &params
}

func stringKnobSlot(name string) (int, bool) {
	var slot int
	if _, err := fmt.Sscanf(name, "string.%d.tuning", &slot); err != nil {
		return 0, false
	}
	if slot < 0 || slot >= symp.MaxStrings {
		return 0, false
	}
	return slot, true
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
