// Package preset loads and saves sympathetic string tunings as JSON.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/midigurdy/mg-effects/symp"
)

// File is the JSON schema for effect presets. Unset pointer fields keep
// their defaults. String tunings are given either directly in Hz or as
// MIDI note numbers; a non-positive entry disables that string slot.
type File struct {
	Name string `json:"name,omitempty"`

	TuningsHz []float32 `json:"tunings_hz,omitempty"`
	Notes     []int     `json:"notes,omitempty"`

	// DetuneCents shifts every active string by the given amount.
	DetuneCents *float32 `json:"detune_cents,omitempty"`

	Feedback  *float32 `json:"feedback,omitempty"`
	Damping   *float32 `json:"damping,omitempty"`
	InputGain *float32 `json:"input_gain,omitempty"`
	WetLeft   *float32 `json:"wet_left,omitempty"`
	WetRight  *float32 `json:"wet_right,omitempty"`
}

// LoadJSON loads a preset file and applies it on top of default params.
func LoadJSON(path string) (*symp.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := symp.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset onto an existing params object.
func ApplyFile(dst *symp.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if len(f.TuningsHz) > 0 && len(f.Notes) > 0 {
		return fmt.Errorf("preset sets both tunings_hz and notes")
	}
	if len(f.TuningsHz) > symp.MaxStrings {
		return fmt.Errorf("too many tunings: %d (max %d)", len(f.TuningsHz), symp.MaxStrings)
	}
	if len(f.Notes) > symp.MaxStrings {
		return fmt.Errorf("too many notes: %d (max %d)", len(f.Notes), symp.MaxStrings)
	}

	if len(f.TuningsHz) > 0 {
		dst.Tunings = [symp.MaxStrings]float32{}
		copy(dst.Tunings[:], f.TuningsHz)
	}
	if len(f.Notes) > 0 {
		dst.Tunings = [symp.MaxStrings]float32{}
		for i, note := range f.Notes {
			if note <= 0 {
				continue
			}
			if note > 127 {
				return fmt.Errorf("note %d out of MIDI range", note)
			}
			dst.Tunings[i] = symp.NoteToHz(note)
		}
	}

	if f.DetuneCents != nil {
		ratio := symp.CentsToRatio(*f.DetuneCents)
		for i, t := range dst.Tunings {
			if t > 0 {
				dst.Tunings[i] = t * ratio
			}
		}
	}

	if f.Feedback != nil {
		if *f.Feedback < 0 || *f.Feedback > 1 {
			return fmt.Errorf("feedback must be in [0,1]: %g", *f.Feedback)
		}
		dst.Feedback = *f.Feedback
	}
	if f.Damping != nil {
		if *f.Damping < 0 || *f.Damping > 1 {
			return fmt.Errorf("damping must be in [0,1]: %g", *f.Damping)
		}
		dst.Damping = *f.Damping
	}
	if f.InputGain != nil {
		if *f.InputGain < 0 {
			return fmt.Errorf("input_gain must be >= 0: %g", *f.InputGain)
		}
		dst.InputGain = *f.InputGain
	}
	if f.WetLeft != nil {
		if *f.WetLeft < 0 || *f.WetLeft > 1 {
			return fmt.Errorf("wet_left must be in [0,1]: %g", *f.WetLeft)
		}
		dst.WetLeft = *f.WetLeft
	}
	if f.WetRight != nil {
		if *f.WetRight < 0 || *f.WetRight > 1 {
			return fmt.Errorf("wet_right must be in [0,1]: %g", *f.WetRight)
		}
		dst.WetRight = *f.WetRight
	}
	return nil
}

// FromParams captures params into a saveable preset file.
func FromParams(p *symp.Params, name string) *File {
	f := &File{Name: name}
	f.TuningsHz = append(f.TuningsHz, p.Tunings[:]...)
	f.Feedback = ptr(p.Feedback)
	f.Damping = ptr(p.Damping)
	f.InputGain = ptr(p.InputGain)
	f.WetLeft = ptr(p.WetLeft)
	f.WetRight = ptr(p.WetRight)
	return f
}

// SaveJSON writes params as an indented preset file.
func SaveJSON(path string, p *symp.Params, name string) error {
	if p == nil {
		return fmt.Errorf("nil params")
	}
	b, err := json.MarshalIndent(FromParams(p, name), "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func ptr(v float32) *float32 { return &v }
