package simulation

import (
	"math"
	"math/rand"
)

// ncoSample computes the in-phase and quadrature baseband samples for a
// given envelope at time tNs. Phase jitter is drawn fresh per sample.
func ncoSample(rng *rand.Rand, cfg SynthConfig, amplitude, env, tNs float64) (i, q float64) {
	jitter := 0.0
	if cfg.PhaseNoise > 0 {
		jitter = (rng.Float64() - 0.5) * cfg.PhaseNoise
	}
	phase := 2*math.Pi*cfg.FrequencyGHz*tNs + cfg.PhaseRad + jitter
	a := amplitude * env
	return a * math.Cos(phase), a * math.Sin(phase)
}

// Quantize rounds v to a 2^bits grid, modeling DAC resolution. Bits below
// one are clamped so the step never degenerates to a division by zero.
func Quantize(v float64, bits int) float64 {
	if bits < 1 {
		bits = 1
	}
	levels := math.Pow(2, float64(bits))
	return math.Round(v*levels) / levels
}

// QuantizationStep returns the LSB size for the given resolution.
func QuantizationStep(bits int) float64 {
	if bits < 1 {
		bits = 1
	}
	return math.Pow(2, -float64(bits))
}

// Upconvert mixes the I/Q pair with the local oscillator:
//
//	V = (I*gamma)*cos(w*t) - Q*sin(w*t + theta) + leak*cos(w*t)
//
// With gamma=1, theta=0 and leak=0 this is the ideal image-reject mixer.
func Upconvert(cfg MixerConfig, i, q, tNs float64) float64 {
	w := 2 * math.Pi * cfg.LOFrequencyGHz * tNs
	return i*cfg.AmpImbalance*math.Cos(w) -
		q*math.Sin(w+cfg.PhaseImbalanceRad) +
		cfg.LOLeakage*math.Cos(w)
}
