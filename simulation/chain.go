package simulation

import (
	"math"
	"math/rand"
)

// biquad is a second-order recursive filter, Direct Form I. Coefficients
// follow the RBJ cookbook designs at the fixed chain Q.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

// configure derives normalized coefficients for the given kind and cutoff
// (or center) frequency in GHz, mapped into the simulation sample rate.
// Filter history is preserved so a live cutoff change does not click.
func (f *biquad) configure(kind ComponentKind, freqGHz float64) {
	// Keep the design frequency inside (0, Nyquist).
	if freqGHz <= 0 {
		freqGHz = 1e-3
	}
	if freqGHz >= SampleRateGHz/2 {
		freqGHz = SampleRateGHz/2 - 1e-3
	}

	omega := 2 * math.Pi * freqGHz / SampleRateGHz
	sinW := math.Sin(omega)
	cosW := math.Cos(omega)
	alpha := sinW / (2 * FilterQ)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case KindLowPass:
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
	case KindHighPass:
		b0 = (1 + cosW) / 2
		b1 = -(1 + cosW)
		b2 = (1 + cosW) / 2
	case KindNotch:
		b0 = 1
		b1 = -2 * cosW
		b2 = 1
	default:
		// Unity pass-through for non-filter kinds.
		f.b0, f.b1, f.b2, f.a1, f.a2 = 1, 0, 0, 0, 0
		return
	}
	a0 = 1 + alpha
	a1 = -2 * cosW
	a2 = 1 - alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

// process runs one sample through the recursion and shifts the two-sample
// history.
func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *biquad) reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// componentState is the per-component runtime slot in the chain's state
// arena: the configuration it was designed for plus its filter memory.
type componentState struct {
	kind    ComponentKind
	value   float64
	gainLin float64 // cached linear voltage gain for attenuator/amplifier
	filter  biquad
}

// ChainProcessor applies an ordered transmission-line component list to a
// scalar signal, one sample at a time. It exclusively owns the persistent
// filter memory, keyed by component identity: removed identities are
// pruned, new identities start from zero state.
type ChainProcessor struct {
	rng    *rand.Rand
	states map[string]*componentState
	// active is the synced, ordered view used by the per-sample hot path.
	active []*componentState
}

// NewChainProcessor creates an empty chain processor drawing amplifier
// perturbations from rng.
func NewChainProcessor(rng *rand.Rand) *ChainProcessor {
	return &ChainProcessor{
		rng:    rng,
		states: make(map[string]*componentState),
	}
}

// Sync reconciles the state arena with the configured component list.
// Called once per simulation call, before the sample loop.
func (cp *ChainProcessor) Sync(components []ChainComponent) {
	seen := make(map[string]bool, len(components))
	cp.active = cp.active[:0]

	for _, c := range components {
		seen[c.ID] = true
		st, ok := cp.states[c.ID]
		if !ok {
			st = &componentState{}
			cp.states[c.ID] = st
		}
		if !ok || st.kind != c.Kind || st.value != c.Value {
			st.kind = c.Kind
			st.value = c.Value
			switch c.Kind {
			case KindAttenuator:
				st.gainLin = math.Pow(10, -c.Value/20)
			case KindAmplifier:
				st.gainLin = math.Pow(10, c.Value/20)
			case KindLowPass, KindHighPass, KindNotch:
				st.filter.configure(c.Kind, c.Value)
			default:
				st.gainLin = 1
			}
		}
		cp.active = append(cp.active, st)
	}

	for id := range cp.states {
		if !seen[id] {
			delete(cp.states, id)
		}
	}
}

// Process pushes one sample through the synced chain in order.
func (cp *ChainProcessor) Process(s float64) float64 {
	for _, st := range cp.active {
		switch st.kind {
		case KindAttenuator:
			s *= st.gainLin
		case KindAmplifier:
			s *= st.gainLin
			// Amplifier-added noise, proportional to gain.
			s += (cp.rng.Float64() - 0.5) * AmplifierNoiseCoeff * st.gainLin
		case KindLowPass, KindHighPass, KindNotch:
			s = st.filter.process(s)
		default:
			// Unknown kind: pass through.
		}
	}
	return s
}

// Reset zeroes every retained filter memory without dropping identities.
func (cp *ChainProcessor) Reset() {
	for _, st := range cp.states {
		st.filter.reset()
	}
}

// ChainGainDb sums the static gain of a component list in dB. Filters are
// neutral in this accounting: only attenuators and amplifiers contribute.
func ChainGainDb(components []ChainComponent) float64 {
	db := 0.0
	for _, c := range components {
		switch c.Kind {
		case KindAttenuator:
			db -= c.Value
		case KindAmplifier:
			db += c.Value
		}
	}
	return db
}

// ChainVoltageGain converts the cumulative dB of a component list to a
// linear voltage ratio. A 20 dB attenuator-only chain yields exactly 0.1.
func ChainVoltageGain(components []ChainComponent) float64 {
	return math.Pow(10, ChainGainDb(components)/20)
}
