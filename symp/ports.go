package symp

import "fmt"

// Port indices: eleven string tuning controls, five scalar controls,
// then the audio ports.
const (
	PortString1Tuning = iota
	PortString2Tuning
	PortString3Tuning
	PortString4Tuning
	PortString5Tuning
	PortString6Tuning
	PortString7Tuning
	PortString8Tuning
	PortString9Tuning
	PortString10Tuning
	PortString11Tuning

	PortFeedback
	PortDamping
	PortGainInput
	PortWetLeft
	PortWetRight

	PortInput
	PortOutputLeft
	PortOutputRight

	PortCount
)

// PortRole distinguishes scalar controls from audio streams.
type PortRole int

const (
	PortControl PortRole = iota
	PortAudioIn
	PortAudioOut
)

// PortInfo describes one port of the effect: display name, role and the
// numeric hints a host needs to build a sensible control.
type PortInfo struct {
	Name    string
	Role    PortRole
	Default float32
	Lower   float32
	Upper   float32
	Bounded bool // true if [Lower, Upper] is a hard range
}

// PortLayout returns the full port table in port-index order.
func PortLayout() [PortCount]PortInfo {
	var layout [PortCount]PortInfo
	defaults := NewDefaultParams()

	for i := 0; i < MaxStrings; i++ {
		layout[PortString1Tuning+i] = PortInfo{
			Name:    fmt.Sprintf("String%d Tuning", i+1),
			Role:    PortControl,
			Default: defaults.Tunings[i],
		}
	}

	layout[PortFeedback] = PortInfo{Name: "Feedback", Role: PortControl, Default: defaults.Feedback, Lower: 0, Upper: 1, Bounded: true}
	layout[PortDamping] = PortInfo{Name: "Damping", Role: PortControl, Default: defaults.Damping, Lower: 0, Upper: 1, Bounded: true}
	layout[PortGainInput] = PortInfo{Name: "Gain Input", Role: PortControl, Default: defaults.InputGain, Lower: 0.015}
	layout[PortWetLeft] = PortInfo{Name: "Wet Left", Role: PortControl, Default: defaults.WetLeft, Lower: 0, Upper: 1, Bounded: true}
	layout[PortWetRight] = PortInfo{Name: "Wet Right", Role: PortControl, Default: defaults.WetRight, Lower: 0, Upper: 1, Bounded: true}

	layout[PortInput] = PortInfo{Name: "Input Mono", Role: PortAudioIn}
	layout[PortOutputLeft] = PortInfo{Name: "Output Left", Role: PortAudioOut}
	layout[PortOutputRight] = PortInfo{Name: "Output Right", Role: PortAudioOut}

	return layout
}

// Controls holds pointers to host-owned control storage. The effect
// dereferences them once per block, so a host may retune controls
// between blocks without further calls into the effect. The host must
// not mutate them concurrently with Process.
type Controls struct {
	Tunings   [MaxStrings]*float32
	Feedback  *float32
	Damping   *float32
	InputGain *float32
	WetLeft   *float32
	WetRight  *float32
}

// ControlsFromParams binds every control to the corresponding field of p.
func ControlsFromParams(p *Params) Controls {
	var c Controls
	for i := range p.Tunings {
		c.Tunings[i] = &p.Tunings[i]
	}
	c.Feedback = &p.Feedback
	c.Damping = &p.Damping
	c.InputGain = &p.InputGain
	c.WetLeft = &p.WetLeft
	c.WetRight = &p.WetRight
	return c
}

func (c *Controls) complete() bool {
	for _, t := range c.Tunings {
		if t == nil {
			return false
		}
	}
	return c.Feedback != nil && c.Damping != nil &&
		c.InputGain != nil && c.WetLeft != nil && c.WetRight != nil
}

// connect attaches a single control port. Audio ports carry sample
// slices and are passed to Process directly, so they are rejected here.
func (c *Controls) connect(port int, value *float32) error {
	switch {
	case port >= PortString1Tuning && port <= PortString11Tuning:
		c.Tunings[port-PortString1Tuning] = value
	case port == PortFeedback:
		c.Feedback = value
	case port == PortDamping:
		c.Damping = value
	case port == PortGainInput:
		c.InputGain = value
	case port == PortWetLeft:
		c.WetLeft = value
	case port == PortWetRight:
		c.WetRight = value
	case port == PortInput || port == PortOutputLeft || port == PortOutputRight:
		return fmt.Errorf("port %d is an audio port, pass buffers to Process", port)
	default:
		return fmt.Errorf("unknown port index %d", port)
	}
	return nil
}
