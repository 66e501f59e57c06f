package voice

// Preset is a two-operator FM parameter set.
type Preset struct {
	Name  string
	Ratio float64 // modulator:carrier frequency ratio
	Index float64 // modulation index
	Amp   float64
	Decay float64 // envelope decay rate (1/s)
}

// Mid-voice FM presets, selected by (aux-3) % 4.
var (
	Bells   = Preset{Name: "bells", Ratio: 3.5, Index: 2.0, Amp: 0.25, Decay: 3.0}
	Calm    = Preset{Name: "calm", Ratio: 1.0, Index: 0.8, Amp: 0.20, Decay: 2.0}
	Quantum = Preset{Name: "quantum", Ratio: 2.41, Index: 4.5, Amp: 0.18, Decay: 5.0}
	Pluck   = Preset{Name: "pluck", Ratio: 2.0, Index: 3.0, Amp: 0.30, Decay: 9.0}
)

// Bass FM presets, selected by a 3-way draw.
var (
	BassDefault = Preset{Name: "bass_default", Ratio: 1.0, Index: 1.5, Amp: 0.50, Decay: 1.5}
	BassQuantum = Preset{Name: "bass_quantum", Ratio: 0.5, Index: 3.2, Amp: 0.45, Decay: 2.5}
	BassPlucky  = Preset{Name: "bass_plucky", Ratio: 2.0, Index: 2.2, Amp: 0.55, Decay: 6.0}
)

// MidPresets is indexed by (aux-3) % len(MidPresets).
var MidPresets = [...]Preset{Bells, Calm, Quantum, Pluck}

// BassPresets is indexed by the bass preset draw.
var BassPresets = [...]Preset{BassDefault, BassQuantum, BassPlucky}
