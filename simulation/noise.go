package simulation

import (
	"math"
	"math/rand"
)

// WhiteNoise produces standard-normal samples via the Box-Muller
// transform. Each call draws two fresh uniforms; no spare is cached.
type WhiteNoise struct {
	rng *rand.Rand
}

// NewWhiteNoise creates a white generator drawing from rng.
func NewWhiteNoise(rng *rand.Rand) *WhiteNoise {
	return &WhiteNoise{rng: rng}
}

// Sample returns one standard-normal deviate.
func (w *WhiteNoise) Sample() float64 {
	// 1-Float64() maps [0,1) to (0,1], keeping ln() in domain.
	u1 := 1 - w.rng.Float64()
	u2 := w.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// PinkNoise approximates a 1/f spectral density with a bank of seven
// first-order recursive taps (Kellet's filter), all updated from a single
// uniform draw per call. Tap state persists across simulation calls for
// the lifetime of the generator; Reset is the only way to clear it.
type PinkNoise struct {
	rng  *rand.Rand
	taps [7]float64
}

// NewPinkNoise creates a pink generator drawing from rng.
func NewPinkNoise(rng *rand.Rand) *PinkNoise {
	return &PinkNoise{rng: rng}
}

// Sample returns the next pink sample, roughly unit range.
func (p *PinkNoise) Sample() float64 {
	w := p.rng.Float64()*2 - 1

	p.taps[0] = 0.99886*p.taps[0] + w*0.0555179
	p.taps[1] = 0.99332*p.taps[1] + w*0.0750759
	p.taps[2] = 0.96900*p.taps[2] + w*0.1538520
	p.taps[3] = 0.86650*p.taps[3] + w*0.3104856
	p.taps[4] = 0.55000*p.taps[4] + w*0.5329522
	p.taps[5] = -0.7616*p.taps[5] - w*0.0168980

	out := p.taps[0] + p.taps[1] + p.taps[2] + p.taps[3] + p.taps[4] +
		p.taps[5] + p.taps[6] + w*0.5362
	p.taps[6] = w * 0.115926

	return out * 0.11
}

// Reset clears all tap state. Deliberate and explicit; Sample never resets
// implicitly.
func (p *PinkNoise) Reset() {
	p.taps = [7]float64{}
}

// interferenceSample models mains-style pickup on the room-temperature
// stage: a fixed-frequency hum plus a low-probability amplitude spike.
func interferenceSample(rng *rand.Rand, level, tNs float64) float64 {
	s := level * math.Sin(2*math.Pi*HumFrequencyGHz*tNs)
	if rng.Float64() < SpikeProbability {
		s += (rng.Float64()*2 - 1) * level * SpikeScale
	}
	return s
}

// interferenceVariance is the analytic variance of interferenceSample,
// used by the coherence estimator.
func interferenceVariance(level float64) float64 {
	if level <= 0 {
		return 0
	}
	hum := level * level / 2
	spike := SpikeProbability * (level * SpikeScale) * (level * SpikeScale) / 3
	return hum + spike
}
